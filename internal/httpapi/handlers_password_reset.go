package httpapi

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"storyshare/internal/domain"
)

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

func (a *api) handleForgotPassword(w http.ResponseWriter, r *http.Request) {
	if a.resetSvc == nil || a.emailSvc == nil || !a.emailSvc.Enabled() {
		WriteFail(w, http.StatusServiceUnavailable, "password reset unavailable")
		return
	}

	var req forgotPasswordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteFail(w, http.StatusBadRequest, "invalid json")
		return
	}

	email := normalizeEmail(req.Email)
	if !validEmail(email) {
		WriteDomainError(w, domain.NewValidationError(map[string]string{"email": "please provide a valid email"}))
		return
	}

	now := time.Now()
	ip := clientIP(r)
	if !a.loginLimiter.Allow("forgot:ip:"+ip, now) || !a.loginLimiter.Allow("forgot:email:"+email, now) {
		WriteFail(w, http.StatusTooManyRequests, "too many attempts")
		return
	}

	user, err := a.authSvc.Users.GetUserByEmail(r.Context(), email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			WriteFail(w, http.StatusNotFound, "there is no user with that email")
			return
		}
		WriteDomainError(w, err)
		return
	}
	if user.Status == domain.LifecycleDisabled {
		WriteFail(w, http.StatusNotFound, "there is no user with that email")
		return
	}

	token, err := a.resetSvc.CreateResetToken(r.Context(), user.ID, email)
	if err != nil {
		WriteDomainError(w, err)
		return
	}

	// the issued token must not outlive a failed delivery
	if err := a.emailSvc.SendPasswordReset(r.Context(), email, a.resetLink(r, token)); err != nil {
		a.logger.Error("send reset email failed", "err", err)
		if cancelErr := a.resetSvc.CancelResetToken(r.Context(), token); cancelErr != nil {
			a.logger.Error("roll back reset token failed", "err", cancelErr)
		}
		WriteFail(w, http.StatusInternalServerError, "there was an error sending the email. try again later")
		return
	}

	WriteSuccess(w, http.StatusOK, map[string]any{"message": "token sent to email"})
}

type resetPasswordRequest struct {
	Password        string `json:"password"`
	PasswordConfirm string `json:"passwordConfirm"`
}

func (a *api) handleResetPassword(w http.ResponseWriter, r *http.Request) {
	if a.resetSvc == nil {
		WriteFail(w, http.StatusServiceUnavailable, "password reset unavailable")
		return
	}

	token := strings.TrimSpace(r.PathValue("token"))
	if token == "" {
		WriteDomainError(w, domain.NewValidationError(map[string]string{"token": "required"}))
		return
	}

	var req resetPasswordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteFail(w, http.StatusBadRequest, "invalid json")
		return
	}
	if len(req.Password) < minPasswordLength {
		WriteDomainError(w, domain.NewValidationError(map[string]string{"password": "password must be at least 8 characters"}))
		return
	}
	if req.Password != req.PasswordConfirm {
		WriteDomainError(w, domain.NewValidationError(map[string]string{"passwordConfirm": "please confirm your password correctly"}))
		return
	}

	userID, err := a.resetSvc.ResetPassword(r.Context(), token, req.Password)
	if err != nil {
		WriteDomainError(w, err)
		return
	}

	// log the user straight in with a fresh token
	u, err := a.authSvc.Users.GetUserByID(r.Context(), userID)
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	fresh, err := a.authSvc.Tokens.Sign(userID)
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	a.sendToken(w, http.StatusOK, fresh, u)
}

func (a *api) resetLink(r *http.Request, token string) string {
	if a.publicURL != nil {
		u := *a.publicURL
		u.Path = "/api/v1/users/resetPassword/" + url.PathEscape(token)
		return u.String()
	}
	scheme := "http"
	if forwarded := r.Header.Get("X-Forwarded-Proto"); forwarded != "" {
		scheme = forwarded
	}
	return fmt.Sprintf("%s://%s/api/v1/users/resetPassword/%s", scheme, r.Host, url.PathEscape(token))
}
