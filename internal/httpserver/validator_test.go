package httpserver

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Skotchmaster/restaurant_pos/internal/service"
	"github.com/Skotchmaster/restaurant_pos/internal/transport"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		err  error
		code int
		msg  string
	}{
		{fmt.Errorf("%w: price must be >= 0", service.ErrValidation), http.StatusBadRequest, "price must be >= 0"},
		{fmt.Errorf("%w: code DESC10", service.ErrConflict), http.StatusConflict, "duplicate: code DESC10"},
		{fmt.Errorf("%w: product 9", service.ErrNotFound), http.StatusNotFound, "not found: product 9"},
		{service.ErrNoSession, http.StatusUnauthorized, "no active session"},
		{service.ErrInvalidCredentials, http.StatusUnauthorized, "invalid username or password"},
		{errors.New("pq: connection refused"), http.StatusInternalServerError, "internal error"},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			code, msg := classify(tt.err)
			assert.Equal(t, tt.code, code)
			assert.Equal(t, tt.msg, msg)
		})
	}
}

func TestRequestValidator(t *testing.T) {
	v := NewRequestValidator()

	assert.NoError(t, v.Validate(&transport.LoginRequest{Username: "a", Password: "b"}))

	err := v.Validate(&transport.UserRequest{Username: "a", Password: "123", Name: "A", Role: "chef"})
	assert.ErrorIs(t, err, service.ErrValidation)
	assert.Contains(t, err.Error(), "Password must be min 6")
	assert.Contains(t, err.Error(), "Role must be oneof admin server")
}
