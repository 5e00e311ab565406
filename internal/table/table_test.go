package table

import (
	"bytes"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type product struct {
	Name  string
	SKU   string
	Stock int
}

var columns = []Column[product]{
	{Title: "Name", Value: func(p product) string { return p.Name }},
	{Title: "SKU", Value: func(p product) string { return p.SKU }},
	{Title: "Stock", Value: func(p product) string { return strconv.Itoa(p.Stock) }},
	{Title: "Actions"},
}

func TestBuild(t *testing.T) {
	view := Build("Products", columns, []product{
		{Name: "Gold Plated Nameplate", SKU: "NP-GOLD-001", Stock: 45},
		{Name: "Wooden Nameplate", SKU: "", Stock: 18},
	})

	assert.Equal(t, "Products", view.Title)
	assert.Equal(t, []string{"Name", "SKU", "Stock", "Actions"}, view.Headers)
	require.Len(t, view.Rows, 2)
	assert.Equal(t, []string{"Gold Plated Nameplate", "NP-GOLD-001", "45", "-"}, view.Rows[0])
	assert.Equal(t, []string{"Wooden Nameplate", "-", "18", "-"}, view.Rows[1])
	assert.Empty(t, view.Empty)
}

func TestBuild_Empty(t *testing.T) {
	view := Build[product]("Products", columns, nil)

	assert.Empty(t, view.Rows)
	assert.Equal(t, "No data found", view.Empty)
	assert.Len(t, view.Headers, 4)
}

func TestFilter(t *testing.T) {
	rows := []product{
		{Name: "Gold Plated Nameplate", SKU: "NP-GOLD-001"},
		{Name: "Brass Office Nameplate", SKU: "NP-BRASS-002"},
		{Name: "Wooden Nameplate", SKU: "NP-WOOD-003"},
	}
	fields := func(p product) []string { return []string{p.Name, p.SKU} }

	assert.Len(t, Filter(rows, "", fields), 3)
	assert.Len(t, Filter(rows, "   ", fields), 3)
	assert.Len(t, Filter(rows, "nameplate", fields), 3)

	got := Filter(rows, "BRASS", fields)
	require.Len(t, got, 1)
	assert.Equal(t, "Brass Office Nameplate", got[0].Name)

	got = Filter(rows, "wood-0", fields)
	require.Len(t, got, 1)
	assert.Equal(t, "NP-WOOD-003", got[0].SKU)

	assert.Empty(t, Filter(rows, "marble", fields))
}

func TestWrite(t *testing.T) {
	var buf bytes.Buffer
	view := Build("Products", columns, []product{{Name: "Gold", SKU: "G-1", Stock: 3}})

	require.NoError(t, Write(&buf, view))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "NAME")
	assert.Contains(t, lines[0], "ACTIONS")
	assert.Contains(t, lines[1], "────")
	assert.Contains(t, lines[2], "Gold")
	assert.Contains(t, lines[2], "G-1")
}

func TestWrite_Empty(t *testing.T) {
	var buf bytes.Buffer

	require.NoError(t, Write(&buf, Build[product]("Products", columns, nil)))
	assert.Equal(t, "No data found\n", buf.String())
}
