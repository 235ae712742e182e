package apperr

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus_NoConflictStatus(t *testing.T) {
	cases := map[Kind]int{
		KindValidation:   http.StatusBadRequest,
		KindInvalidState: http.StatusBadRequest,
		KindConflict:     http.StatusBadRequest,
		KindUnauthorized: http.StatusUnauthorized,
		KindForbidden:    http.StatusForbidden,
		KindNotFound:     http.StatusNotFound,
		KindInternal:     http.StatusInternalServerError,
	}
	for k, want := range cases {
		assert.Equal(t, want, HTTPStatus(k), k.String())
		assert.NotEqual(t, http.StatusConflict, HTTPStatus(k), k.String())
	}
}

func TestKindOf_Wrapped(t *testing.T) {
	err := fmt.Errorf("submit: %w", Conflict("already applied"))
	assert.Equal(t, KindConflict, KindOf(err))
	assert.ErrorIs(t, err, Conflict("already applied"))
	assert.Equal(t, KindInternal, KindOf(fmt.Errorf("boom")))
}
