package roster

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/noah-isme/helper-roster/internal/availability"
	"github.com/noah-isme/helper-roster/internal/models"
	appErrors "github.com/noah-isme/helper-roster/pkg/errors"
)

const yesToken = "Yes"

// fieldReader pulls typed values out of a row and keeps the first error.
type fieldReader struct {
	row  models.Row
	kind string
	err  error
}

func newFieldReader(row models.Row, kind string, columns int) *fieldReader {
	r := &fieldReader{row: row, kind: kind}
	if len(row.Fields) < columns {
		r.err = appErrors.Clone(appErrors.ErrMalformedRow,
			fmt.Sprintf("%s row at line %d: expected %d columns, got %d", kind, row.Line, columns, len(row.Fields)))
	}
	return r
}

func (r *fieldReader) text(col int) string {
	if r.err != nil {
		return ""
	}
	return strings.TrimSpace(r.row.Fields[col])
}

func (r *fieldReader) integer(col int, name string) int {
	if r.err != nil {
		return 0
	}
	value, err := strconv.Atoi(strings.TrimSpace(r.row.Fields[col]))
	if err != nil {
		r.err = appErrors.WrapAs(appErrors.ErrMalformedRow, err,
			fmt.Sprintf("%s row at line %d: column %d (%s) is not an integer", r.kind, r.row.Line, col, name))
		return 0
	}
	return value
}

func (r *fieldReader) yes(col int) bool {
	return r.text(col) == yesToken
}

func (r *fieldReader) week(first int) availability.Week {
	var week availability.Week
	if r.err != nil {
		return week
	}
	for day := range week {
		week[day] = r.row.Fields[first+day]
	}
	return week
}
