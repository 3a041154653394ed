package repository

import (
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/noah-isme/helper-roster/internal/models"
	appErrors "github.com/noah-isme/helper-roster/pkg/errors"
)

// XLSXSource reads one worksheet of a workbook downloaded from the form.
type XLSXSource struct {
	path       string
	sheet      string
	skipHeader bool
	minColumns int
}

// NewXLSXSource builds a source for path. An empty sheet selects the first
// worksheet.
func NewXLSXSource(path, sheet string, skipHeader bool) *XLSXSource {
	return &XLSXSource{path: path, sheet: sheet, skipHeader: skipHeader}
}

// WithMinColumns pads every row to at least n cells.
func (s *XLSXSource) WithMinColumns(n int) *XLSXSource {
	s.minColumns = n
	return s
}

// Name returns the workbook path, plus the sheet when one is configured.
func (s *XLSXSource) Name() string {
	if s.sheet == "" {
		return s.path
	}
	return fmt.Sprintf("%s[%s]", s.path, s.sheet)
}

// Rows returns the worksheet cells as formatted strings.
func (s *XLSXSource) Rows(ctx context.Context) ([]models.Row, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := excelize.OpenFile(s.path)
	if err != nil {
		return nil, appErrors.WrapAs(appErrors.ErrSourceUnavailable, err, fmt.Sprintf("open %s", s.path))
	}
	defer f.Close() //nolint:errcheck

	sheet := s.sheet
	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	table, err := f.GetRows(sheet)
	if err != nil {
		return nil, appErrors.WrapAs(appErrors.ErrSourceUnavailable, err, fmt.Sprintf("read %s", s.Name()))
	}
	return tableRows(table, s.skipHeader, s.minColumns), nil
}
