package app

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/case-dashboard/internal/config"
	"github.com/case-dashboard/internal/domain"
)

func writeConfig(t *testing.T, body string) *config.Manager {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(body), 0644))
	m, err := config.NewManagerWithPaths(dir)
	require.NoError(t, err)
	require.NoError(t, m.Validate())
	return m
}

func TestBootstrapWith_FileSource(t *testing.T) {
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "casos.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte(
		"tipo_tx,diagnostico,estado_tx,medico_ref\n"+
			"Quimioterapia,Linfoma,En curso,dr.perez\n"+
			"Cirugía,Melanoma,Finalizado,dra.gomez\n"), 0644))

	m := writeConfig(t, "source:\n  kind: file\n  path: "+csvPath+"\nlogging:\n  level: error\n")

	rt, err := BootstrapWith(context.Background(), m, Options{})
	require.NoError(t, err)
	defer rt.Close()

	assert.Equal(t, 2, rt.Session.Dataset().Len())
	assert.Equal(t, []string{"ALL", "dr.perez", "dra.gomez"}, rt.Session.Roster().Entries())
}

func TestBootstrapWith_MissingFile(t *testing.T) {
	m := writeConfig(t, "source:\n  kind: file\n  path: "+filepath.Join(t.TempDir(), "none.csv")+"\nlogging:\n  level: error\n")

	_, err := BootstrapWith(context.Background(), m, Options{})
	var unavailable *domain.DataUnavailableError
	assert.True(t, errors.As(err, &unavailable))
}
