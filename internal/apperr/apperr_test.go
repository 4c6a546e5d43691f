package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrapAndIs(t *testing.T) {
	cause := errors.New("conn reset")
	err := fmt.Errorf("create: %w", Persistence(cause, "could not store transaction"))

	assert.True(t, Is(err, CodePersistence))
	assert.False(t, Is(err, CodeValidation))
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "could not store transaction", As(err).Message())
	assert.Nil(t, As(cause))
}

func TestMetadataFor(t *testing.T) {
	assert.Equal(t, http.StatusConflict, MetadataFor(CodeInvalidState).HTTPStatus)
	assert.Equal(t, http.StatusForbidden, MetadataFor(CodePermissionDenied).HTTPStatus)
	assert.Equal(t, http.StatusServiceUnavailable, MetadataFor(CodePersistence).HTTPStatus)
	assert.Equal(t, http.StatusInternalServerError, MetadataFor("BOGUS").HTTPStatus)
}

func TestNilError(t *testing.T) {
	var e *Error
	assert.Equal(t, CodeInternal, e.Code())
	assert.Empty(t, e.Message())
	assert.Nil(t, e.WithDetails("x"))
}
