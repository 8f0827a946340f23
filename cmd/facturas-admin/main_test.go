package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"facturas/internal/config"
)

func run(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()
	cfg := &config.Config{
		SQLiteDBPath: filepath.Join(dir, "facturas.db"),
		SettingsPath: filepath.Join(dir, "settings.json"),
	}
	cmd := newRootCommand(cfg)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestMigrateCommands(t *testing.T) {
	dir := t.TempDir()

	out, err := run(t, dir, "migrate", "version")
	require.NoError(t, err)
	assert.Contains(t, out, "schema version: none")

	out, err = run(t, dir, "migrate", "up")
	require.NoError(t, err)
	assert.Contains(t, out, "schema version: 2")

	out, err = run(t, dir, "migrate", "down", "--steps", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "schema version: 1")
}

func TestSeedIsIdempotent(t *testing.T) {
	dir := t.TempDir()

	out, err := run(t, dir, "seed")
	require.NoError(t, err)
	assert.Contains(t, out, "Acme Iberia SL")
	assert.Contains(t, out, "Mantenimiento mensual")

	out, err = run(t, dir, "seed")
	require.NoError(t, err)
	assert.Contains(t, out, "already has 3 clients")

	out, err = run(t, dir, "renumber-check")
	require.NoError(t, err)
	assert.Contains(t, out, "all document numbers are unique")
}

func TestImportCommand(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "march.csv")
	require.NoError(t, os.WriteFile(path, []byte("date,description,amount\n2024-03-05,UBER TRIP,-23.40\n2024-03-06,Transferencia FACTURA 7,500\n2024-03-07,,10\n"), 0o644))

	out, err := run(t, dir, "import", path)
	require.NoError(t, err)
	assert.Contains(t, out, "2 imported (1 expenses, 1 incomes), 1 skipped, 0 failed")

	out, err = run(t, dir, "import", path)
	require.NoError(t, err)
	assert.Contains(t, out, "possible duplicate")
	assert.Contains(t, out, "0 imported")

	_, err = run(t, dir, "import", filepath.Join(dir, "march.pdf"))
	assert.Error(t, err)

	_, err = run(t, dir, "import", "--sheets")
	assert.ErrorContains(t, err, "GOOGLE_CREDENTIALS_FILE")
}

func TestAuditCommandOnEmptyDatabase(t *testing.T) {
	out, err := run(t, t.TempDir(), "audit", "--limit", "5")
	require.NoError(t, err)
	assert.Empty(t, out)
}
