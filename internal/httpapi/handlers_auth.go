package httpapi

import (
	"net/http"
	"strings"
	"time"

	"storyshare/internal/auth"
	"storyshare/internal/domain"
)

// sendToken sets the jwt cookie and writes the success envelope with the
// token in the body, the shape browser and API clients both consume.
func (a *api) sendToken(w http.ResponseWriter, status int, token string, u domain.User) {
	auth.SetTokenCookie(w, token, a.tokenTTL, a.cookieSecure)
	WriteSuccessToken(w, status, token, map[string]any{"user": u})
}

type signupRequest struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"passwordConfirm"`
}

func (a *api) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteFail(w, http.StatusBadRequest, "invalid json")
		return
	}

	fields := map[string]string{}
	req.Name = strings.TrimSpace(req.Name)
	req.Email = normalizeEmail(req.Email)
	if req.Name == "" {
		fields["name"] = "name is required"
	}
	if !validEmail(req.Email) {
		fields["email"] = "please provide a valid email"
	}
	if len(req.Password) < minPasswordLength {
		fields["password"] = "password must be at least 8 characters"
	}
	if req.Password != req.PasswordConfirm {
		fields["passwordConfirm"] = "please confirm your password correctly"
	}
	if len(fields) > 0 {
		WriteDomainError(w, domain.NewValidationError(fields))
		return
	}

	u, token, err := a.authSvc.Signup(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		WriteDomainError(w, err)
		return
	}

	// welcome mail is best effort
	if a.emailSvc != nil && a.emailSvc.Enabled() {
		if err := a.emailSvc.SendWelcome(r.Context(), u.Email, u.Name, a.siteURL(r)); err != nil {
			a.logger.Error("send welcome email failed", "err", err)
		}
	}

	a.sendToken(w, http.StatusCreated, token, u)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (a *api) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteFail(w, http.StatusBadRequest, "invalid json")
		return
	}

	req.Email = normalizeEmail(req.Email)
	if req.Email == "" || req.Password == "" {
		WriteDomainError(w, domain.NewValidationError(map[string]string{"email": "required", "password": "required"}))
		return
	}

	now := time.Now()
	ip := clientIP(r)
	if !a.loginLimiter.Allow("ip:"+ip, now) || !a.loginLimiter.Allow("email:"+req.Email, now) {
		WriteFail(w, http.StatusTooManyRequests, "too many attempts")
		return
	}

	u, token, err := a.authSvc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		WriteDomainError(w, err)
		return
	}

	a.sendToken(w, http.StatusOK, token, u)
}

func (a *api) handleLogout(w http.ResponseWriter, _ *http.Request) {
	auth.ClearTokenCookie(w, a.cookieSecure)
	WriteSuccess(w, http.StatusOK, nil)
}

// handleIsLoggedIn answers whether the presented credential still resolves,
// without failing the request when it does not.
func (a *api) handleIsLoggedIn(w http.ResponseWriter, r *http.Request) {
	token, ok := auth.BearerToken(r)
	if !ok {
		WriteSuccess(w, http.StatusOK, map[string]any{"loggedIn": false})
		return
	}

	u, err := a.authSvc.Authenticate(r.Context(), token)
	if err != nil {
		WriteSuccess(w, http.StatusOK, map[string]any{"loggedIn": false})
		return
	}
	WriteSuccess(w, http.StatusOK, map[string]any{"loggedIn": true, "user": u})
}

type updatePasswordRequest struct {
	PasswordCurrent string `json:"passwordCurrent"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"passwordConfirm"`
}

func (a *api) handleUpdatePassword(w http.ResponseWriter, r *http.Request) {
	u, ok := CurrentUser(r.Context())
	if !ok {
		WriteDomainError(w, domain.ErrUnauthorized)
		return
	}

	var req updatePasswordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteFail(w, http.StatusBadRequest, "invalid json")
		return
	}

	fields := map[string]string{}
	if req.PasswordCurrent == "" {
		fields["passwordCurrent"] = "current password is required"
	}
	if len(req.Password) < minPasswordLength {
		fields["password"] = "password must be at least 8 characters"
	}
	if req.Password != req.PasswordConfirm {
		fields["passwordConfirm"] = "please confirm your password correctly"
	}
	if len(fields) > 0 {
		WriteDomainError(w, domain.NewValidationError(fields))
		return
	}

	token, err := a.authSvc.UpdatePassword(r.Context(), u.ID, req.PasswordCurrent, req.Password)
	if err != nil {
		WriteDomainError(w, err)
		return
	}

	a.sendToken(w, http.StatusOK, token, u)
}

type externalLoginRequest struct {
	IDToken string `json:"idToken"`
}

func (a *api) handleGoogleLogin(w http.ResponseWriter, r *http.Request) {
	var req externalLoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteFail(w, http.StatusBadRequest, "invalid json")
		return
	}

	claims, err := auth.VerifyGoogleIDToken(r.Context(), req.IDToken, a.googleClientID)
	if err != nil {
		WriteDomainError(w, domain.ErrUnauthorized)
		return
	}

	u, token, err := a.authSvc.LoginWithExternal(r.Context(), "google", claims)
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	a.sendToken(w, http.StatusOK, token, u)
}

func (a *api) handleAppleLogin(w http.ResponseWriter, r *http.Request) {
	var req externalLoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteFail(w, http.StatusBadRequest, "invalid json")
		return
	}

	claims, err := auth.VerifyAppleIDToken(r.Context(), req.IDToken, a.appleServiceID)
	if err != nil {
		WriteDomainError(w, domain.ErrUnauthorized)
		return
	}

	u, token, err := a.authSvc.LoginWithExternal(r.Context(), "apple", claims)
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	a.sendToken(w, http.StatusOK, token, u)
}

func (a *api) siteURL(r *http.Request) string {
	if a.publicURL != nil {
		return a.publicURL.String()
	}
	scheme := "http"
	if forwarded := r.Header.Get("X-Forwarded-Proto"); forwarded != "" {
		scheme = forwarded
	}
	return scheme + "://" + r.Host
}
