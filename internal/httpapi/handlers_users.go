package httpapi

import (
	"net/http"

	"storyshare/internal/auth"
	"storyshare/internal/domain"
)

func (a *api) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	u, ok := CurrentUser(r.Context())
	if !ok {
		WriteDomainError(w, domain.ErrUnauthorized)
		return
	}

	var req struct {
		Name  string `json:"name"`
		Photo string `json:"photo"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		WriteFail(w, http.StatusBadRequest, "invalid json")
		return
	}

	updated, err := a.usersSvc.UpdateProfile(r.Context(), u, req.Name, req.Photo)
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteSuccess(w, http.StatusOK, map[string]any{"user": updated})
}

func (a *api) handleDisableUser(w http.ResponseWriter, r *http.Request) {
	u, ok := CurrentUser(r.Context())
	if !ok {
		WriteDomainError(w, domain.ErrUnauthorized)
		return
	}

	id, err := pathID(r)
	if err != nil {
		WriteDomainError(w, err)
		return
	}

	if err := a.usersSvc.Disable(r.Context(), u, id); err != nil {
		WriteDomainError(w, err)
		return
	}
	if id == u.ID {
		auth.ClearTokenCookie(w, a.cookieSecure)
	}
	WriteJSON(w, http.StatusNoContent, nil)
}

func (a *api) handleListUsers(w http.ResponseWriter, r *http.Request) {
	u, ok := CurrentUser(r.Context())
	if !ok {
		WriteDomainError(w, domain.ErrUnauthorized)
		return
	}

	users, err := a.usersSvc.ListAll(r.Context(), u)
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteSuccess(w, http.StatusOK, map[string]any{"users": users})
}
