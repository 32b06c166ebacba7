package spreadsheet

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestReadCSV(t *testing.T) {
	content := "\ufeffAddress,City,Type,Price,Surface\n1 Rue A,Paris,apartment,250000,45\n\n2 Rue B,Lyon,house,410000,120\n"
	rows, err := Read("listings.CSV", strings.NewReader(content))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, 2, rows[0].Line)
	assert.Equal(t, "1 Rue A", rows[0].Fields["address"])
	assert.Equal(t, 4, rows[1].Line)
	assert.Equal(t, "410000", rows[1].Fields["price"])
}

func TestReadCSVSemicolons(t *testing.T) {
	rows, err := Read("l.csv", strings.NewReader("address;city;price\n1 Rue A;Paris;250000,50\n"))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "250000,50", rows[0].Fields["price"])
}

func TestReadXLSX(t *testing.T) {
	book := excelize.NewFile()
	sheet := book.GetSheetName(0)
	require.NoError(t, book.SetSheetRow(sheet, "A1", &[]interface{}{"address", "city", "type", "price", "surface"}))
	require.NoError(t, book.SetSheetRow(sheet, "A2", &[]interface{}{"1 Rue A", "Paris", "apartment", 250000, 45}))
	var buf bytes.Buffer
	require.NoError(t, book.Write(&buf))

	rows, err := Read("l.xlsx", &buf)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Paris", rows[0].Fields["city"])
	assert.Equal(t, "250000", rows[0].Fields["price"])
}

func TestReadRejects(t *testing.T) {
	_, err := Read("l.txt", strings.NewReader("x"))
	assert.True(t, errors.Is(err, ErrUnsupportedFormat))

	_, err = Read("l.csv", strings.NewReader(""))
	assert.True(t, errors.Is(err, ErrNoHeader))
}
