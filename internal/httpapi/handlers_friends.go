package httpapi

import (
	"net/http"
	"strings"

	"storyshare/internal/domain"
)

func pathID(r *http.Request) (string, error) {
	id := strings.TrimSpace(r.PathValue("id"))
	if id == "" {
		return "", domain.NewValidationError(map[string]string{"id": "required"})
	}
	return id, nil
}

func (a *api) handleSendFriendRequest(w http.ResponseWriter, r *http.Request) {
	u, ok := CurrentUser(r.Context())
	if !ok {
		WriteDomainError(w, domain.ErrUnauthorized)
		return
	}

	targetID, err := pathID(r)
	if err != nil {
		WriteDomainError(w, err)
		return
	}

	fr, err := a.friendsSvc.SendRequest(r.Context(), u.ID, targetID)
	if err != nil {
		WriteDomainError(w, err)
		return
	}

	WriteSuccess(w, http.StatusCreated, map[string]any{
		"requestId": fr.ID,
		"to":        fr.AddresseeID,
		"createdAt": fr.CreatedAt,
	})
}

func (a *api) handleCancelFriendRequest(w http.ResponseWriter, r *http.Request) {
	u, ok := CurrentUser(r.Context())
	if !ok {
		WriteDomainError(w, domain.ErrUnauthorized)
		return
	}

	targetID, err := pathID(r)
	if err != nil {
		WriteDomainError(w, err)
		return
	}

	if err := a.friendsSvc.CancelRequest(r.Context(), u.ID, targetID); err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteSuccess(w, http.StatusOK, nil)
}

func (a *api) handleAcceptFriendRequest(w http.ResponseWriter, r *http.Request) {
	u, ok := CurrentUser(r.Context())
	if !ok {
		WriteDomainError(w, domain.ErrUnauthorized)
		return
	}

	requesterID, err := pathID(r)
	if err != nil {
		WriteDomainError(w, err)
		return
	}

	if err := a.friendsSvc.AcceptRequest(r.Context(), u.ID, requesterID); err != nil {
		WriteDomainError(w, err)
		return
	}

	overview, err := a.friendsSvc.Overview(r.Context(), u.ID)
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteSuccess(w, http.StatusOK, overview)
}

func (a *api) handleGetFriends(w http.ResponseWriter, r *http.Request) {
	u, ok := CurrentUser(r.Context())
	if !ok {
		WriteDomainError(w, domain.ErrUnauthorized)
		return
	}

	overview, err := a.friendsSvc.Overview(r.Context(), u.ID)
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteSuccess(w, http.StatusOK, overview)
}

func (a *api) handleRemoveFriend(w http.ResponseWriter, r *http.Request) {
	u, ok := CurrentUser(r.Context())
	if !ok {
		WriteDomainError(w, domain.ErrUnauthorized)
		return
	}

	friendID, err := pathID(r)
	if err != nil {
		WriteDomainError(w, err)
		return
	}

	if err := a.friendsSvc.RemoveFriend(r.Context(), u.ID, friendID); err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteSuccess(w, http.StatusOK, nil)
}
