package table

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_FitsRowsToColumns(t *testing.T) {
	tbl := New([]string{"a", "b"}, [][]string{{"1"}, {"1", "2", "3"}})

	require.Equal(t, 2, tbl.Len())
	assert.Equal(t, []string{"1", ""}, tbl.Rows[0])
	assert.Equal(t, []string{"1", "2"}, tbl.Rows[1])
}

func TestTable_ValueAndIndex(t *testing.T) {
	tbl := New([]string{"Phone", "Source"}, [][]string{{"555", "FB"}})

	assert.Equal(t, 1, tbl.Index("Source"))
	assert.Equal(t, -1, tbl.Index("Missing"))
	assert.Equal(t, "FB", tbl.Value(0, "Source"))
	assert.Equal(t, "", tbl.Value(0, "Missing"))
}

func TestTable_MapColumnDoesNotMutateInput(t *testing.T) {
	tbl := New([]string{"Agent"}, [][]string{{" Bob "}})

	out := tbl.MapColumn("Agent", Normalize)

	assert.Equal(t, "bob", out.Rows[0][0])
	assert.Equal(t, " Bob ", tbl.Rows[0][0])
}

func TestTable_Filter(t *testing.T) {
	tbl := New([]string{"n"}, [][]string{{"1"}, {"2"}, {"3"}})

	out := tbl.Filter(func(i int) bool { return i != 1 })

	assert.Equal(t, [][]string{{"1"}, {"3"}}, out.Rows)
	assert.Equal(t, 3, tbl.Len())
}

func TestTable_Head(t *testing.T) {
	tbl := New([]string{"n"}, [][]string{{"1"}, {"2"}, {"3"}})

	assert.Equal(t, 2, tbl.Head(2).Len())
	assert.Equal(t, 3, tbl.Head(0).Len())
	assert.Equal(t, 3, tbl.Head(10).Len())
}

func TestIsMissing(t *testing.T) {
	assert.True(t, IsMissing(""))
	assert.True(t, IsMissing("  \t"))
	assert.False(t, IsMissing("0"))
}

func TestNilTable(t *testing.T) {
	var tbl *Table
	assert.Equal(t, 0, tbl.Len())
	assert.Nil(t, tbl.Clone())
	assert.True(t, strings.Contains(tbl.String(), "nil"))
}
