package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCollectivesFile(t *testing.T, content string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "collectives.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	t.Setenv("COLLECTIVES_FILE", path)
}

func TestLoadCollectives(t *testing.T) {
	writeCollectivesFile(t, `{
		"gardening": {
			"display_name": "Gardening Club",
			"currency": "eur",
			"billing_secret_key": "sk_live_x",
			"billing_publishable_key": "pk_live_x"
		},
		"woodwork": {
			"display_name": "Woodwork"
		}
	}`)

	cs, err := LoadCollectives()
	require.NoError(t, err)

	assert.Equal(t, []string{"gardening", "woodwork"}, cs.Names())
	assert.Equal(t, "eur", cs["gardening"].Currency)
	assert.Equal(t, "usd", cs["woodwork"].Currency, "currency defaults to usd")
	assert.True(t, cs.Has("gardening"))
	assert.False(t, cs.Has("astronomy"))
}

func TestLoadCollectivesMissingDisplayName(t *testing.T) {
	writeCollectivesFile(t, `{"gardening": {"currency": "usd"}}`)

	_, err := LoadCollectives()
	assert.ErrorContains(t, err, "display_name")
}

func TestLoadCollectivesMissingFile(t *testing.T) {
	t.Setenv("COLLECTIVES_FILE", filepath.Join(t.TempDir(), "nope.json"))

	_, err := LoadCollectives()
	assert.Error(t, err)
}
