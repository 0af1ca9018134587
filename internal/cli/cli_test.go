package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupFilesBackend(t *testing.T) {
	t.Helper()
	dir, err := filepath.Abs(filepath.Join("..", "sheets", "jsondoc", "testdata"))
	require.NoError(t, err)
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("AMQP_URL", "")
	t.Setenv("DATA_BACKEND", "files")
	t.Setenv("DATA_DIR", dir)
	t.Setenv("LOG_LEVEL", "error")
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := NewRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestSummaryCommand(t *testing.T) {
	setupFilesBackend(t)

	out, err := execute(t, "summary")
	require.NoError(t, err)
	assert.Contains(t, out, "Total geral")
	assert.Contains(t, out, "R$ 10.300,50")
	assert.Contains(t, out, "Contas em Atraso")
}

func TestSummaryCommandJSON(t *testing.T) {
	setupFilesBackend(t)

	out, err := execute(t, "summary", "--json")
	require.NoError(t, err)

	var doc map[string]json.RawMessage
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Contains(t, doc, "metricas_gerais")
	assert.Contains(t, doc, "totais_por_categoria")
}

func TestSummaryCommandInvalidConfig(t *testing.T) {
	setupFilesBackend(t)
	t.Setenv("DATA_DIR", filepath.Join(t.TempDir(), "missing"))

	_, err := execute(t, "summary")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "data directory does not exist")
}

func TestExportCommand(t *testing.T) {
	setupFilesBackend(t)
	dest := filepath.Join(t.TempDir(), "atraso.csv")

	_, err := execute(t, "export", "atraso", "-o", dest)
	require.NoError(t, err)

	b, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(b), "Linha Original,Descrição,Valor,Data,Observações"))
	assert.Contains(t, string(b), "ENERGIA ELETRICA")
}

func TestExportCommandToStdout(t *testing.T) {
	setupFilesBackend(t)

	out, err := execute(t, "export", "contas_atraso", "--raw", "-q", "agua", "-o", "-")
	require.NoError(t, err)
	assert.Contains(t, out, `"AGUA"`)
	assert.NotContains(t, out, "ENERGIA")
}

func TestExportCommandXLSX(t *testing.T) {
	setupFilesBackend(t)
	dest := filepath.Join(t.TempDir(), "julho.xlsx")

	_, err := execute(t, "export", "julho", "-f", "xlsx", "-o", dest)
	require.NoError(t, err)

	b, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(b, []byte("PK")))
}

func TestExportCommandErrors(t *testing.T) {
	setupFilesBackend(t)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"unknown key", []string{"export", "nope", "-o", "-"}, "unknown table or category"},
		{"bad format", []string{"export", "atraso", "-f", "pdf", "-o", "-"}, "unsupported format"},
		{"bad charset", []string{"export", "atraso", "--charset", "ebcdic", "-o", "-"}, "unsupported charset"},
		{"nothing matches", []string{"export", "atraso", "-q", "inexistente", "-o", "-"}, "nothing to export"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
