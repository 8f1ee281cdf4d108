package handler

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/userauth/userauth-go/internal/model"
)

func TestValidateRegister(t *testing.T) {
	tests := []struct {
		name   string
		req    model.RegisterRequest
		fields map[string]string
	}{
		{
			name: "valid",
			req:  model.RegisterRequest{Email: "a@b.com", Password: "secret1"},
		},
		{
			name: "exactly six characters",
			req:  model.RegisterRequest{Email: "a@b.com", Password: "123456"},
		},
		{
			name:   "missing everything",
			req:    model.RegisterRequest{},
			fields: map[string]string{"email": "Email is required", "password": "Password is required"},
		},
		{
			name:   "bad email",
			req:    model.RegisterRequest{Email: "not-an-email", Password: "secret1"},
			fields: map[string]string{"email": "Please provide a valid email address"},
		},
		{
			name:   "short password",
			req:    model.RegisterRequest{Email: "a@b.com", Password: "12345"},
			fields: map[string]string{"password": "Password must be at least 6 characters long"},
		},
		{
			name:   "multibyte password counted in characters",
			req:    model.RegisterRequest{Email: "a@b.com", Password: "ééééé"},
			fields: map[string]string{"password": "Password must be at least 6 characters long"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateRegister(tt.req)
			if tt.fields == nil {
				assert.NoError(t, err)
				return
			}
			var verr *ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, tt.fields, verr.Fields)
		})
	}
}

func TestValidateLoginAcceptsShortPassword(t *testing.T) {
	assert.NoError(t, validateLogin(model.LoginRequest{Email: "a@b.com", Password: "x"}))

	err := validateLogin(model.LoginRequest{Email: "a@b.com"})
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, map[string]string{"password": "Password is required"}, verr.Fields)
}

func TestIsValidEmail(t *testing.T) {
	valid := []string{"a@b.com", "first.last+tag@sub.example.org", "A@B.COM"}
	invalid := []string{"", "a", "a@", "@b.com", "a@b", "a@.com", "a@b.com.", "a@b..com", "Ann <a@b.com>", "<a@b.com>", " a@b.com", "a b@c.com"}

	for _, e := range valid {
		assert.True(t, isValidEmail(e), e)
	}
	for _, e := range invalid {
		assert.False(t, isValidEmail(e), e)
	}
}

func TestValidationErrorMessage(t *testing.T) {
	err := &ValidationError{Fields: map[string]string{
		"password": "Password is required",
		"email":    "Email is required",
	}}
	assert.Equal(t, "Email is required; Password is required", err.Error())
}
