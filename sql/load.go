package sql

import (
	"database/sql"
	_ "embed"
	"fmt"
	"log"
)

//go:embed init.sql
var initSQL string

//go:embed states.sql
var statesSQL string

// Function lists for verification
var StatesFunctions = []string{
	"init_states",
	"upsert_state",
	"select_state",
	"select_all_states",
	"delete_state",
}

// Init intializes db extensions
func Init(db *sql.DB) error {
	_, err := db.Exec(initSQL)
	if err != nil {
		return fmt.Errorf("error executing schema SQL: %w", err)
	}

	log.Println("Database extensions initialized successfully")
	return nil
}

// LoadStatesSql loads processing state SQL functions.
// Without force the functions are only loaded if one is missing.
func LoadStatesSql(db *sql.DB, force bool) error {
	if !force {
		exist, err := checkFunctions(db, StatesFunctions)
		if err != nil {
			return fmt.Errorf("error checking existing states functions: %w", err)
		}
		if exist {
			return nil
		}
	}

	_, err := db.Exec(statesSQL)
	if err != nil {
		return fmt.Errorf("error executing states SQL: %w", err)
	}

	exist, err := checkFunctions(db, StatesFunctions)
	if err != nil {
		return fmt.Errorf("error checking existing functions: %w", err)
	}
	if !exist {
		return fmt.Errorf("not all required SQL functions were created")
	}

	log.Println("SQL states functions loaded successfully")
	return nil
}

func checkFunctions(db *sql.DB, sqlFunctions []string) (bool, error) {
	var allExist bool
	for _, f := range sqlFunctions {
		err := db.QueryRow(
			`SELECT EXISTS(SELECT 1 FROM pg_proc WHERE proname = $1);`,
			f,
		).Scan(&allExist)
		if err != nil {
			return false, fmt.Errorf("error checking existence of function %s: %w", f, err)
		}
		if !allExist {
			log.Printf("Function %s does not exist", f)
			break
		}
	}
	return allExist, nil
}
