package cleaner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/David-Botos/datahub/pkg/model"
)

func sampleTable(t *testing.T, columns ...string) *model.Table {
	t.Helper()
	tbl, err := model.NewTable(columns)
	require.NoError(t, err)
	cells := make([]model.Cell, len(columns))
	for i := range cells {
		cells[i] = model.TextCell(columns[i])
	}
	require.NoError(t, tbl.AppendRow(cells))
	return tbl
}

func TestNormalizeName(t *testing.T) {
	assert.Equal(t, "Codice Fiscale", NormalizeName("  Codice Fiscale ", model.NormalizeDisplay))
	assert.Equal(t, "codice_fiscale", NormalizeName("  Codice Fiscale ", model.NormalizeMerge))
	assert.Equal(t, "a__b", NormalizeName("A  B", model.NormalizeMerge))
}

func TestNormalize_Idempotent(t *testing.T) {
	c := New(nil)
	for _, mode := range []model.NormalizeMode{model.NormalizeDisplay, model.NormalizeMerge} {
		tbl := sampleTable(t, " Nome ", "Codice Fiscale", "data")

		once, _, err := c.Normalize("f.csv", tbl, mode)
		require.NoError(t, err)
		twice, ops, err := c.Normalize("f.csv", once.Table, mode)
		require.NoError(t, err)

		assert.Equal(t, once.Table.Columns(), twice.Table.Columns(), mode.String())
		assert.Empty(t, ops, mode.String())
	}
}

func TestNormalize_RecordsOperationsAndLeavesInputAlone(t *testing.T) {
	c := New(nil)
	tbl := sampleTable(t, "Nome", "data")

	out, ops, err := c.Normalize("f.csv", tbl, model.NormalizeMerge)
	require.NoError(t, err)

	assert.Equal(t, []string{"nome", "data"}, out.Table.Columns())
	assert.Equal(t, []string{"Nome", "data"}, tbl.Columns())
	require.Len(t, ops, 1)
	assert.Equal(t, "rename", ops[0].Operation)
	assert.Equal(t, "nome", ops[0].NewName)
	assert.Equal(t, model.NormalizeMerge, out.Mode)
	assert.Equal(t, "f.csv", out.Source)
}

func TestNormalize_CollapsesCollidingNames(t *testing.T) {
	c := New(nil)
	tbl := sampleTable(t, "Nome", "nome ")

	out, ops, err := c.Normalize("f.csv", tbl, model.NormalizeMerge)
	require.NoError(t, err)

	assert.Equal(t, []string{"nome"}, out.Table.Columns())
	cell, _ := out.Table.Cell(0, "nome")
	assert.Equal(t, "Nome", cell.String())
	require.Len(t, ops, 2)
	assert.Equal(t, "drop_duplicate", ops[1].Operation)
}
