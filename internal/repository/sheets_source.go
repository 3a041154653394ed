package repository

import (
	"context"
	"fmt"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/noah-isme/helper-roster/internal/models"
	appErrors "github.com/noah-isme/helper-roster/pkg/errors"
)

// SheetsSource reads form responses straight from a Google spreadsheet.
type SheetsSource struct {
	service       *sheets.Service
	spreadsheetID string
	readRange     string
	skipHeader    bool
	minColumns    int
}

// NewSheetsService builds a Sheets client. opts usually carry
// option.WithCredentialsFile.
func NewSheetsService(ctx context.Context, opts ...option.ClientOption) (*sheets.Service, error) {
	opts = append([]option.ClientOption{option.WithScopes(sheets.SpreadsheetsReadonlyScope)}, opts...)
	service, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets client: %w", err)
	}
	return service, nil
}

// NewSheetsSource builds a source for readRange of the spreadsheet.
func NewSheetsSource(service *sheets.Service, spreadsheetID, readRange string, skipHeader bool) *SheetsSource {
	return &SheetsSource{service: service, spreadsheetID: spreadsheetID, readRange: readRange, skipHeader: skipHeader}
}

// WithMinColumns pads every row to at least n cells.
func (s *SheetsSource) WithMinColumns(n int) *SheetsSource {
	s.minColumns = n
	return s
}

// Name identifies the sheet for logs.
func (s *SheetsSource) Name() string {
	return fmt.Sprintf("sheet %s!%s", s.spreadsheetID, s.readRange)
}

// Rows fetches the range as formatted strings. The API drops trailing empty
// cells, so rows are padded to the widest row or the minimum width.
func (s *SheetsSource) Rows(ctx context.Context) ([]models.Row, error) {
	resp, err := s.service.Spreadsheets.Values.Get(s.spreadsheetID, s.readRange).
		ValueRenderOption("FORMATTED_VALUE").
		Context(ctx).
		Do()
	if err != nil {
		return nil, appErrors.WrapAs(appErrors.ErrSourceUnavailable, err, fmt.Sprintf("read %s", s.Name()))
	}

	table := make([][]string, len(resp.Values))
	for i, values := range resp.Values {
		cells := make([]string, len(values))
		for j, cell := range values {
			if str, ok := cell.(string); ok {
				cells[j] = str
				continue
			}
			cells[j] = fmt.Sprintf("%v", cell)
		}
		table[i] = cells
	}
	return tableRows(table, s.skipHeader, s.minColumns), nil
}
