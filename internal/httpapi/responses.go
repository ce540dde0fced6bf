package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"storyshare/internal/domain"
)

// Every endpoint answers with the same envelope:
// success is {"status":"success","data":...}, client errors are
// {"status":"fail","message":...} and server errors are
// {"status":"error","message":...}. Login-ish endpoints add "token".

type successEnvelope struct {
	Status string `json:"status"`
	Token  string `json:"token,omitempty"`
	Data   any    `json:"data,omitempty"`
}

type failEnvelope struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func WriteSuccess(w http.ResponseWriter, status int, data any) {
	WriteJSON(w, status, successEnvelope{Status: "success", Data: data})
}

func WriteSuccessToken(w http.ResponseWriter, status int, token string, data any) {
	WriteJSON(w, status, successEnvelope{Status: "success", Token: token, Data: data})
}

func WriteFail(w http.ResponseWriter, status int, message string) {
	kind := "fail"
	if status >= 500 {
		kind = "error"
	}
	WriteJSON(w, status, failEnvelope{Status: kind, Message: message})
}

// WriteDomainError maps the error taxonomy to HTTP statuses. Validation and
// conflict errors answer with 400, authentication with 401, authorization
// with 403, unknown ids with 404, and everything else with 500 without
// leaking internals.
func WriteDomainError(w http.ResponseWriter, err error) {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		WriteFail(w, http.StatusBadRequest, verr.Error())
	case errors.Is(err, domain.ErrValidation):
		WriteFail(w, http.StatusBadRequest, "invalid request")
	case errors.Is(err, domain.ErrInvalidCredentials):
		WriteFail(w, http.StatusUnauthorized, "incorrect email or password")
	case errors.Is(err, domain.ErrPasswordChanged):
		WriteFail(w, http.StatusUnauthorized, "user has changed the password after the token has been issued")
	case errors.Is(err, domain.ErrUnauthorized):
		WriteFail(w, http.StatusUnauthorized, "you are not logged in")
	case errors.Is(err, domain.ErrUserDisabled):
		WriteFail(w, http.StatusForbidden, "this account is disabled")
	case errors.Is(err, domain.ErrForbidden):
		WriteFail(w, http.StatusForbidden, "you do not have permission to do this")
	case errors.Is(err, domain.ErrNotFound):
		WriteFail(w, http.StatusNotFound, "not found")
	case errors.Is(err, domain.ErrEmailTaken):
		WriteFail(w, http.StatusBadRequest, "a user with that email already exists")
	case errors.Is(err, domain.ErrExternalAccountExists):
		WriteFail(w, http.StatusBadRequest, "that external account is already linked")
	case errors.Is(err, domain.ErrSelfTarget):
		WriteFail(w, http.StatusBadRequest, "you cannot befriend yourself")
	case errors.Is(err, domain.ErrAlreadyFriends):
		WriteFail(w, http.StatusBadRequest, "you are already friends with this user")
	case errors.Is(err, domain.ErrRequestPending):
		WriteFail(w, http.StatusBadRequest, "a friend request between these users is already pending")
	case errors.Is(err, domain.ErrNotFriends):
		WriteFail(w, http.StatusBadRequest, "you are not friends with this user")
	case errors.Is(err, domain.ErrResetTokenInvalid):
		WriteFail(w, http.StatusBadRequest, "invalid token")
	case errors.Is(err, domain.ErrResetTokenExpired):
		WriteFail(w, http.StatusBadRequest, "token has expired")
	default:
		WriteFail(w, http.StatusInternalServerError, "internal server error")
	}
}
