package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/siherrmann/cataloger/helper"
	"github.com/siherrmann/cataloger/model"
	loadSql "github.com/siherrmann/cataloger/sql"
)

// StatesDBHandlerFunctions defines the interface for processing state database operations.
type StatesDBHandlerFunctions interface {
	UpsertState(ctx context.Context, entityRef string, state model.ProcessingState) (*model.StoredState, error)
	SelectState(ctx context.Context, entityRef string) (*model.StoredState, error)
	SelectAllStates(ctx context.Context, lastCreatedAt *time.Time, limit int) ([]*model.StoredState, error)
	DeleteState(ctx context.Context, entityRef string) error
}

// StatesDBHandler persists the processing state of each entity
type StatesDBHandler struct {
	db *helper.Database
}

// NewStatesDBHandler creates a new states database handler.
// It loads the state SQL functions and creates the table.
// If force is true, it will reload the SQL functions even if they already exist.
func NewStatesDBHandler(db *helper.Database, force bool) (*StatesDBHandler, error) {
	if db == nil {
		return nil, helper.NewError("database connection validation", fmt.Errorf("database connection is nil"))
	}

	statesDbHandler := &StatesDBHandler{
		db: db,
	}

	err := loadSql.LoadStatesSql(statesDbHandler.db.Instance, force)
	if err != nil {
		return nil, helper.NewError("load states sql", err)
	}

	err = statesDbHandler.CreateTable()
	if err != nil {
		return nil, helper.NewError("create table", err)
	}

	db.Logger.Info("Initialized StatesDBHandler")

	return statesDbHandler, nil
}

// CreateTable creates the 'processing_states' table in the database.
// If the table already exists, it does not create it again.
func (h *StatesDBHandler) CreateTable() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := h.db.Instance.ExecContext(ctx, `SELECT init_states();`)
	if err != nil {
		log.Panicf("error initializing processing_states table: %#v", err)
	}

	h.db.Logger.Info("Checked/created table processing_states")

	return nil
}

// UpsertState stores the state of an entity, replacing any earlier state
func (h *StatesDBHandler) UpsertState(ctx context.Context, entityRef string, state model.ProcessingState) (*model.StoredState, error) {
	data, err := state.Marshal()
	if err != nil {
		return nil, helper.NewError("marshal state", err)
	}

	row := h.db.Instance.QueryRowContext(
		ctx,
		`SELECT * FROM upsert_state($1, $2)`,
		entityRef,
		string(data),
	)

	stored, err := scanState(row)
	if err != nil {
		return nil, helper.NewError("scan", err)
	}

	return stored, nil
}

// SelectState retrieves the state of an entity.
// It returns nil without error if no state is stored.
func (h *StatesDBHandler) SelectState(ctx context.Context, entityRef string) (*model.StoredState, error) {
	row := h.db.Instance.QueryRowContext(
		ctx,
		`SELECT * FROM select_state($1)`,
		entityRef,
	)

	stored, err := scanState(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, helper.NewError("scan", err)
	}

	return stored, nil
}

// SelectAllStates retrieves stored states with pagination, newest first
func (h *StatesDBHandler) SelectAllStates(ctx context.Context, lastCreatedAt *time.Time, limit int) ([]*model.StoredState, error) {
	rows, err := h.db.Instance.QueryContext(
		ctx,
		`SELECT * FROM select_all_states($1, $2)`,
		lastCreatedAt,
		limit,
	)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	defer rows.Close()

	var states []*model.StoredState
	for rows.Next() {
		stored, err := scanState(rows)
		if err != nil {
			return nil, helper.NewError("scan", err)
		}
		states = append(states, stored)
	}

	if err = rows.Err(); err != nil {
		return nil, helper.NewError("rows error", err)
	}

	return states, nil
}

// DeleteState deletes the state of an entity
func (h *StatesDBHandler) DeleteState(ctx context.Context, entityRef string) error {
	var deleted int
	err := h.db.Instance.QueryRowContext(
		ctx,
		`SELECT delete_state($1)`,
		entityRef,
	).Scan(&deleted)
	if err != nil {
		return helper.NewError("delete", err)
	}
	if deleted == 0 {
		return helper.NewError("delete", fmt.Errorf("no state stored for %s", entityRef))
	}

	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanState(row scanner) (*model.StoredState, error) {
	stored := &model.StoredState{}
	err := row.Scan(
		&stored.ID,
		&stored.RID,
		&stored.EntityRef,
		&stored.State,
		&stored.CreatedAt,
		&stored.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return stored, nil
}
