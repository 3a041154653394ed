package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrapAsKeepsCodeAndCause(t *testing.T) {
	cause := fmt.Errorf("strconv: bad digit")
	err := WrapAs(ErrMalformedRow, cause, "line 3: seats is not an integer")

	assert.Equal(t, "MALFORMED_ROW", err.Code)
	assert.Equal(t, http.StatusUnprocessableEntity, err.Status)
	assert.ErrorIs(t, err, cause)
	assert.ErrorIs(t, err, ErrMalformedRow)
	assert.Contains(t, err.Error(), "line 3")
}

func TestFromErrorNormalisesPlainErrors(t *testing.T) {
	err := FromError(stderrors.New("boom"))
	assert.Equal(t, ErrInternal.Code, err.Code)

	wrapped := fmt.Errorf("load: %w", Clone(ErrNotLoaded, ""))
	assert.Equal(t, ErrNotLoaded.Code, FromError(wrapped).Code)
	assert.Nil(t, FromError(nil))
}

func TestIsComparesCodes(t *testing.T) {
	assert.False(t, stderrors.Is(Clone(ErrNotFound, "student not found"), ErrValidation))
	assert.True(t, stderrors.Is(Clone(ErrNotFound, "student not found"), ErrNotFound))
}
