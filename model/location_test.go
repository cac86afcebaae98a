package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocationSpec(t *testing.T) {
	t.Run("String joins type and target", func(t *testing.T) {
		location := LocationSpec{Type: "url", Target: "./new-place"}
		assert.Equal(t, "url:./new-place", location.String())
	})

	t.Run("Parse splits at the first colon", func(t *testing.T) {
		location, err := ParseLocationRef("url:https://github.com/org/repo/blob/main/catalog-info.yaml")
		require.NoError(t, err)
		assert.Equal(t, "url", location.Type)
		assert.Equal(t, "https://github.com/org/repo/blob/main/catalog-info.yaml", location.Target)
	})

	t.Run("Parse rejects malformed references", func(t *testing.T) {
		for _, ref := range []string{"", "url", ":target", "url:"} {
			_, err := ParseLocationRef(ref)
			assert.Error(t, err, "Expected %q to be rejected", ref)
		}
	})
}
