package session

import (
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/David-Botos/datahub/pkg/model"
)

func oneRow(t *testing.T, value string) *model.Table {
	t.Helper()
	tbl, err := model.NewTable([]string{"cf"})
	require.NoError(t, err)
	require.NoError(t, tbl.AppendRow([]model.Cell{model.TextCell(value)}))
	return tbl
}

func TestNewWorkspace(t *testing.T) {
	w := NewWorkspace(nil)
	_, err := uuid.Parse(w.ID)
	assert.NoError(t, err)
	assert.NotEqual(t, w.ID, NewWorkspace(nil).ID)
	assert.Zero(t, w.Len())
}

func TestWorkspace_AddSkipsKnownNames(t *testing.T) {
	w := NewWorkspace(nil)
	require.NoError(t, w.Add("a.csv", oneRow(t, "first")))
	assert.ErrorIs(t, w.Add("a.csv", oneRow(t, "second")), ErrAlreadyLoaded)

	got, ok := w.Table("a.csv")
	require.True(t, ok)
	c, _ := got.Cell(0, "cf")
	assert.Equal(t, "first", c.String())
	assert.Equal(t, 1, w.Len())
}

func TestWorkspace_RejectsEmptyTables(t *testing.T) {
	w := NewWorkspace(nil)
	empty, err := model.NewTable([]string{"cf"})
	require.NoError(t, err)

	assert.ErrorIs(t, w.Add("empty.csv", empty), ErrNoTabularData)
	assert.ErrorIs(t, w.Add("nil.csv", nil), ErrNoTabularData)
	_, ok := w.Table("empty.csv")
	assert.False(t, ok)
	assert.Zero(t, w.Len())
}

func TestWorkspace_ReturnsCopies(t *testing.T) {
	w := NewWorkspace(nil)
	src := oneRow(t, "orig")
	require.NoError(t, w.Add("a.csv", src))

	// Mutating the input or an output does not reach the stored table
	require.NoError(t, src.SetCell(0, "cf", model.TextCell("changed")))
	out, ok := w.Table("a.csv")
	require.True(t, ok)
	require.NoError(t, out.SetCell(0, "cf", model.TextCell("changed")))

	got, _ := w.Table("a.csv")
	c, _ := got.Cell(0, "cf")
	assert.Equal(t, "orig", c.String())
}

func TestWorkspace_KeepsLoadOrder(t *testing.T) {
	w := NewWorkspace(nil)
	for _, n := range []string{"c.csv", "a.csv", "b.csv"} {
		require.NoError(t, w.Add(n, oneRow(t, n)))
	}
	assert.ErrorIs(t, w.Add("a.csv", oneRow(t, "again")), ErrAlreadyLoaded)
	assert.Equal(t, []string{"c.csv", "a.csv", "b.csv"}, w.Names())
	assert.Equal(t, 3, w.Len())
}

func TestWorkspace_ConcurrentAdd(t *testing.T) {
	w := NewWorkspace(nil)
	tbl := oneRow(t, "x")
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = w.Add(fmt.Sprintf("f%d.csv", i%10), tbl)
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 10, w.Len())
}
