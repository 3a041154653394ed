package repository

import (
	"context"
	"fmt"

	"google.golang.org/api/option"

	"github.com/noah-isme/helper-roster/internal/models"
	"github.com/noah-isme/helper-roster/pkg/config"
	appErrors "github.com/noah-isme/helper-roster/pkg/errors"
)

// RowSource yields the raw rows of one input sheet.
type RowSource interface {
	Name() string
	Rows(ctx context.Context) ([]models.Row, error)
}

// Widths holds the column counts the schema needs. Spreadsheet sources pad
// short rows to them; CSV rows are left as read.
type Widths struct {
	Students int
	Teachers int
}

// NewSources builds the student and teacher sources for the configured kind.
func NewSources(ctx context.Context, cfg config.SourcesConfig, widths Widths, opts ...option.ClientOption) (RowSource, RowSource, error) {
	switch cfg.Kind {
	case "", config.SourceCSV:
		return NewCSVSource(cfg.StudentsPath, cfg.SkipHeader), NewCSVSource(cfg.TeachersPath, cfg.SkipHeader), nil
	case config.SourceSheets:
		if cfg.Sheets.StudentsID == "" || cfg.Sheets.TeachersID == "" {
			return nil, nil, appErrors.Clone(appErrors.ErrValidation, "STUDENTS_SHEET_ID and TEACHERS_SHEET_ID are required for the sheets source")
		}
		if cfg.Sheets.CredentialsFile != "" {
			opts = append(opts, option.WithCredentialsFile(cfg.Sheets.CredentialsFile))
		}
		service, err := NewSheetsService(ctx, opts...)
		if err != nil {
			return nil, nil, appErrors.WrapAs(appErrors.ErrSourceUnavailable, err, "")
		}
		return NewSheetsSource(service, cfg.Sheets.StudentsID, cfg.Sheets.StudentsRange, cfg.SkipHeader).WithMinColumns(widths.Students),
			NewSheetsSource(service, cfg.Sheets.TeachersID, cfg.Sheets.TeachersRange, cfg.SkipHeader).WithMinColumns(widths.Teachers),
			nil
	case config.SourceXLSX:
		return NewXLSXSource(cfg.XLSX.StudentsPath, cfg.XLSX.Sheet, cfg.SkipHeader).WithMinColumns(widths.Students),
			NewXLSXSource(cfg.XLSX.TeachersPath, cfg.XLSX.Sheet, cfg.SkipHeader).WithMinColumns(widths.Teachers),
			nil
	default:
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown roster source %q", cfg.Kind))
	}
}
