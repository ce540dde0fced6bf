package httpapi

import (
	"net/http"

	"storyshare/internal/domain"
)

type commentRequest struct {
	Comment string `json:"comment"`
}

func (a *api) handleAddComment(w http.ResponseWriter, r *http.Request) {
	u, ok := CurrentUser(r.Context())
	if !ok {
		WriteDomainError(w, domain.ErrUnauthorized)
		return
	}

	storyID, err := pathID(r)
	if err != nil {
		WriteDomainError(w, err)
		return
	}

	var req commentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteFail(w, http.StatusBadRequest, "invalid json")
		return
	}

	c, err := a.commentSvc.Add(r.Context(), u, storyID, req.Comment)
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteSuccess(w, http.StatusCreated, c)
}

func (a *api) handleGetComments(w http.ResponseWriter, r *http.Request) {
	u, ok := CurrentUser(r.Context())
	if !ok {
		WriteDomainError(w, domain.ErrUnauthorized)
		return
	}

	storyID, err := pathID(r)
	if err != nil {
		WriteDomainError(w, err)
		return
	}

	comments, err := a.commentSvc.ListForStory(r.Context(), u, storyID)
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteSuccess(w, http.StatusOK, comments)
}

func (a *api) handleUpdateComment(w http.ResponseWriter, r *http.Request) {
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

	var req commentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteFail(w, http.StatusBadRequest, "invalid json")
		return
	}

	c, err := a.commentSvc.Update(r.Context(), u, id, req.Comment)
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteSuccess(w, http.StatusOK, c)
}

func (a *api) handleDisableComment(w http.ResponseWriter, r *http.Request) {
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

	c, err := a.commentSvc.Disable(r.Context(), u, id)
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteSuccess(w, http.StatusOK, c)
}

func (a *api) handleRemoveComment(w http.ResponseWriter, r *http.Request) {
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

	if err := a.commentSvc.Remove(r.Context(), u, id); err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusNoContent, nil)
}

func (a *api) handleToggleRateComment(w http.ResponseWriter, r *http.Request) {
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

	vote, err := a.ratingSvc.ToggleComment(r.Context(), u, id)
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteSuccess(w, http.StatusOK, vote)
}
