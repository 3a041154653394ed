package repository

import "github.com/noah-isme/helper-roster/internal/models"

// tableRows numbers spreadsheet rows from 1 and pads them to the widest row
// and to at least minColumns, since spreadsheet readers drop trailing empty
// cells.
func tableRows(table [][]string, skipHeader bool, minColumns int) []models.Row {
	width := minColumns
	for _, cells := range table {
		if len(cells) > width {
			width = len(cells)
		}
	}

	rows := make([]models.Row, 0, len(table))
	for i, cells := range table {
		if i == 0 && skipHeader {
			continue
		}
		fields := make([]string, width)
		copy(fields, cells)
		rows = append(rows, models.Row{Line: i + 1, Fields: fields})
	}
	return rows
}
