package handler

import (
	"net/mail"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/userauth/userauth-go/internal/model"
)

const minPasswordLength = 6

// ValidationError lists the request fields that failed validation, one
// message per field.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	msgs := make([]string, 0, len(keys))
	for _, k := range keys {
		msgs = append(msgs, e.Fields[k])
	}
	return strings.Join(msgs, "; ")
}

func (e *ValidationError) add(field, msg string) {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	if _, ok := e.Fields[field]; !ok {
		e.Fields[field] = msg
	}
}

func (e *ValidationError) orNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

// validateRegister checks a registration request's shape. It returns nil or
// a *ValidationError.
func validateRegister(req model.RegisterRequest) error {
	var verr ValidationError
	checkEmail(&verr, req.Email)
	switch {
	case req.Password == "":
		verr.add("password", "Password is required")
	case utf8.RuneCountInString(req.Password) < minPasswordLength:
		verr.add("password", "Password must be at least 6 characters long")
	}
	return verr.orNil()
}

// validateLogin checks a login request's shape. The password only has to be
// present; length rules apply at registration.
func validateLogin(req model.LoginRequest) error {
	var verr ValidationError
	checkEmail(&verr, req.Email)
	if req.Password == "" {
		verr.add("password", "Password is required")
	}
	return verr.orNil()
}

func checkEmail(verr *ValidationError, email string) {
	if email == "" {
		verr.add("email", "Email is required")
		return
	}
	if !isValidEmail(email) {
		verr.add("email", "Please provide a valid email address")
	}
}

// isValidEmail accepts a bare addr-spec whose domain has at least one dot.
// Display names ("Ann <a@b.com>") are rejected.
func isValidEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Name != "" || addr.Address != email {
		return false
	}
	at := strings.LastIndexByte(email, '@')
	domain := email[at+1:]
	return strings.Contains(domain, ".") &&
		!strings.HasPrefix(domain, ".") &&
		!strings.HasSuffix(domain, ".") &&
		!strings.Contains(domain, "..")
}
