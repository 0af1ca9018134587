package workbook

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"painel/internal/core"
)

func writeWorkbook(t *testing.T) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	const acordos = "PLANILHA ACORDO "
	require.NoError(t, f.SetSheetName("Sheet1", acordos))
	require.NoError(t, f.SetSheetRow(acordos, "A1", &[]any{"Fornecedor", "Valor", "Vencimento", "Código"}))
	require.NoError(t, f.SetSheetRow(acordos, "A2", &[]any{"ACORDO FORNECEDOR X", 1500, "10/2025", "0042"}))
	require.NoError(t, f.SetSheetRow(acordos, "A4", &[]any{"Energia", 89.9}))

	_, err := f.NewSheet("PLANILHA PAGTOS JULHO 2025")
	require.NoError(t, err)
	require.NoError(t, f.SetCellValue("PLANILHA PAGTOS JULHO 2025", "A2", "ENTRADA"))

	path := filepath.Join(t.TempDir(), "painel.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestReadSnapshot(t *testing.T) {
	snap, err := New(writeWorkbook(t)).ReadSnapshot(context.Background())
	require.NoError(t, err)

	require.Len(t, snap.Sheets, 2)
	acordos := snap.Sheets[0]
	assert.Equal(t, "PLANILHA ACORDO ", acordos.Name)
	require.Len(t, acordos.Records, 2)

	first := acordos.Records[0]
	assert.Equal(t, 2, first.Line)
	v, _ := first.Fields.Get("col_1")
	assert.Equal(t, core.KindNumber, v.Kind)
	assert.Equal(t, "1500", v.String())
	code, _ := first.Fields.Get("col_3")
	assert.Equal(t, core.KindString, code.Kind)
	assert.Equal(t, "0042", code.Str)

	assert.Equal(t, 4, acordos.Records[1].Line)
	assert.Len(t, snap.Sheets[1].Records, 1)
	assert.Equal(t, "1589.9", snap.Summary.GrandTotal().String())
}

func TestReadSnapshotMissingFile(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "nope.xlsx")).ReadSnapshot(context.Background())
	assert.Error(t, err)
}
