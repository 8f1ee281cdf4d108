package handler

import (
	"encoding/json"
	"net/http"

	"github.com/userauth/userauth-go/internal/model"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse(status, msg))
}

func errorResponse(status int, msg string) model.ErrorResponse {
	return model.ErrorResponse{
		StatusCode: status,
		Message:    msg,
		Error:      http.StatusText(status),
	}
}
