package repository

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/noah-isme/helper-roster/internal/models"
	"github.com/noah-isme/helper-roster/internal/roster"
	appErrors "github.com/noah-isme/helper-roster/pkg/errors"
)

func writeWorkbook(t *testing.T, sheet string, rows [][]interface{}) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	if sheet != "Sheet1" {
		require.NoError(t, f.SetSheetName("Sheet1", sheet))
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		values := row
		require.NoError(t, f.SetSheetRow(sheet, cell, &values))
	}

	path := filepath.Join(t.TempDir(), "responses.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestXLSXSourceRows(t *testing.T) {
	path := writeWorkbook(t, "Form Responses 1", [][]interface{}{
		{"id", "first", "last"},
		{"ab_1", "Ada", "Lovelace", 3},
		{"cd2"},
	})

	source := NewXLSXSource(path, "", true)
	rows, err := source.Rows(context.Background())
	require.NoError(t, err)

	require.Len(t, rows, 2)
	assert.Equal(t, 2, rows[0].Line)
	assert.Equal(t, []string{"ab_1", "Ada", "Lovelace", "3"}, rows[0].Fields)
	assert.Equal(t, 3, rows[1].Line)
	assert.Equal(t, []string{"cd2", "", "", ""}, rows[1].Fields)
	assert.Equal(t, path, source.Name())
}

func TestXLSXSourceNamedSheet(t *testing.T) {
	path := writeWorkbook(t, "Teachers", [][]interface{}{{"t@x.org", "Grace"}})

	rows, err := NewXLSXSource(path, "Teachers", false).Rows(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 1, rows[0].Line)
	assert.Equal(t, []string{"t@x.org", "Grace"}, rows[0].Fields)

	_, err = NewXLSXSource(path, "Missing", false).Rows(context.Background())
	assert.ErrorIs(t, err, appErrors.ErrSourceUnavailable)
}

func TestXLSXSourceMissingFile(t *testing.T) {
	_, err := NewXLSXSource(filepath.Join(t.TempDir(), "none.xlsx"), "", false).Rows(context.Background())
	assert.ErrorIs(t, err, appErrors.ErrSourceUnavailable)
}

func TestXLSXSourcePadsToSchemaWidth(t *testing.T) {
	// No header and nobody is free on Friday, so every row stops at Thursday.
	path := writeWorkbook(t, "Sheet1", [][]interface{}{
		{"ab_1", "Ada", "L", "CS", "3", "555", "Yes", "3", "No", "Oak", "", "", "", "9:00am,9:30am"},
		{"cd2", "Bo", "K", "Art", "1", "556", "No", "0", "Yes", "Elm", "1:00pm,1:30pm"},
	})
	schema, err := roster.New(models.SchemaCurrent, roster.Options{})
	require.NoError(t, err)
	studentColumns, _ := schema.Columns()

	rows, err := NewXLSXSource(path, "", false).WithMinColumns(studentColumns).Rows(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 2)
	for _, row := range rows {
		assert.Len(t, row.Fields, studentColumns)
	}

	first, _, err := schema.Student(rows[0])
	require.NoError(t, err)
	assert.Equal(t, models.NewSlotSet(3*models.SlotsPerDay+18), first.Availability)
	second, _, err := schema.Student(rows[1])
	require.NoError(t, err)
	assert.Equal(t, models.NewSlotSet(26), second.Availability)
}
