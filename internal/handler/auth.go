package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/userauth/userauth-go/internal/middleware"
	"github.com/userauth/userauth-go/internal/model"
	"github.com/userauth/userauth-go/internal/service"
)

const (
	maxBodyBytes = 1 << 20 // 1MB

	msgEmailTaken         = "Email already registered"
	msgInvalidCredentials = "Invalid email or password"
	msgRegisterFailed     = "An error occurred during registration. Please try again."
	msgInternal           = "Internal server error"
	msgUnauthorized       = "Unauthorized"
)

// AuthHandler handles HTTP requests for authentication.
type AuthHandler struct {
	service *service.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(svc *service.AuthService) *AuthHandler {
	return &AuthHandler{service: svc}
}

// HandleRegister handles POST /user/register requests.
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req model.RegisterRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := validateRegister(req); err != nil {
		writeValidationError(w, err)
		return
	}

	resp, err := h.service.Register(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrEmailTaken) {
			writeError(w, http.StatusConflict, msgEmailTaken)
			return
		}
		writeError(w, http.StatusInternalServerError, msgRegisterFailed)
		return
	}

	writeJSON(w, http.StatusCreated, resp)
}

// HandleLogin handles POST /user/login requests.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req model.LoginRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := validateLogin(req); err != nil {
		writeValidationError(w, err)
		return
	}

	resp, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			writeError(w, http.StatusUnauthorized, msgInvalidCredentials)
			return
		}
		writeError(w, http.StatusInternalServerError, msgInternal)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// HandleLogout handles POST /user/logout requests. Only a missing
// Authorization header is an error; any token, valid or not, logs out.
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		writeError(w, http.StatusUnauthorized, msgUnauthorized)
		return
	}

	token := strings.TrimPrefix(authHeader, "Bearer ")
	writeJSON(w, http.StatusOK, h.service.Logout(r.Context(), token))
}

// HandleMe handles GET /user/me requests behind the bearer middleware.
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	email, ok := middleware.EmailFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, msgUnauthorized)
		return
	}

	resp, err := h.service.Profile(r.Context(), email)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			writeError(w, http.StatusUnauthorized, msgUnauthorized)
			return
		}
		writeError(w, http.StatusInternalServerError, msgInternal)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// decodeBody reads a JSON body into v, writing the error response itself
// when it fails.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return false
		}
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

func writeValidationError(w http.ResponseWriter, err error) {
	resp := errorResponse(http.StatusBadRequest, err.Error())
	var verr *ValidationError
	if errors.As(err, &verr) {
		resp.Fields = verr.Fields
	}
	writeJSON(w, http.StatusBadRequest, resp)
}
