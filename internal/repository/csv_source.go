package repository

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/noah-isme/helper-roster/internal/models"
	appErrors "github.com/noah-isme/helper-roster/pkg/errors"
)

// CSVSource reads one form export from disk.
type CSVSource struct {
	path       string
	skipHeader bool
}

// NewCSVSource builds a source for the file at path.
func NewCSVSource(path string, skipHeader bool) *CSVSource {
	return &CSVSource{path: path, skipHeader: skipHeader}
}

// Name returns the file path for logs.
func (s *CSVSource) Name() string {
	return s.path
}

// Rows reads the whole file in order.
func (s *CSVSource) Rows(ctx context.Context) ([]models.Row, error) {
	file, err := os.Open(s.path)
	if err != nil {
		return nil, appErrors.WrapAs(appErrors.ErrSourceUnavailable, err, fmt.Sprintf("open %s", s.path))
	}
	defer file.Close() //nolint:errcheck

	return ReadRows(ctx, file, s.skipHeader)
}

// ReadRows parses CSV from r. Column counts are not enforced here; the
// roster schema decides what a valid row looks like.
func ReadRows(ctx context.Context, r io.Reader, skipHeader bool) ([]models.Row, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	rows := make([]models.Row, 0)
	first := true
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		fields, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, appErrors.WrapAs(appErrors.ErrMalformedRow, err, "parse csv")
		}
		line, _ := reader.FieldPos(0)
		if first {
			first = false
			if skipHeader {
				continue
			}
		}
		rows = append(rows, models.Row{Line: line, Fields: fields})
	}
	return rows, nil
}
