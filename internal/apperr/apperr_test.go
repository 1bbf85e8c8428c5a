package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindStatus(t *testing.T) {
	cases := map[Kind]int{
		KindValidation:        http.StatusBadRequest,
		KindUnauthenticated:   http.StatusUnauthorized,
		KindForbidden:         http.StatusForbidden,
		KindSelfDelete:        http.StatusForbidden,
		KindNotFound:          http.StatusNotFound,
		KindConflict:          http.StatusConflict,
		KindInvalidTransition: http.StatusConflict,
		KindInternal:          http.StatusInternalServerError,
	}
	for kind, status := range cases {
		assert.Equal(t, status, kind.Status(), string(kind))
	}
}

func TestKindOf(t *testing.T) {
	wrapped := fmt.Errorf("update order: %w", Forbidden())
	assert.Equal(t, KindForbidden, KindOf(wrapped))
	assert.Equal(t, KindInternal, KindOf(errors.New("boom")))
	assert.True(t, errors.Is(wrapped, Forbidden()))
	assert.False(t, errors.Is(wrapped, SelfDelete()))
}

func TestInternalUnwraps(t *testing.T) {
	cause := errors.New("connection refused")
	err := Internal(cause)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "connection refused")
}
