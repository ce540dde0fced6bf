package httpapi

import (
	"net/http"

	"storyshare/internal/domain"
)

type storyRequest struct {
	Title   string   `json:"title"`
	Text    string   `json:"text"`
	Images  []string `json:"images"`
	Private bool     `json:"private"`
}

func (a *api) handleCreateStory(w http.ResponseWriter, r *http.Request) {
	u, ok := CurrentUser(r.Context())
	if !ok {
		WriteDomainError(w, domain.ErrUnauthorized)
		return
	}

	var req storyRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteFail(w, http.StatusBadRequest, "invalid json")
		return
	}

	st, err := a.storySvc.Create(r.Context(), u, req.Title, req.Text, req.Images, req.Private)
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteSuccess(w, http.StatusCreated, st)
}

func (a *api) handleGetStory(w http.ResponseWriter, r *http.Request) {
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

	view, err := a.storySvc.Get(r.Context(), u, id)
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteSuccess(w, http.StatusOK, view)
}

func (a *api) handleUpdateStory(w http.ResponseWriter, r *http.Request) {
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

	var req storyRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteFail(w, http.StatusBadRequest, "invalid json")
		return
	}

	st, err := a.storySvc.Update(r.Context(), u, id, req.Title, req.Text, req.Images, req.Private)
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteSuccess(w, http.StatusOK, st)
}

func (a *api) handleDisableStory(w http.ResponseWriter, r *http.Request) {
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

	st, err := a.storySvc.Disable(r.Context(), u, id)
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteSuccess(w, http.StatusOK, st)
}

func (a *api) handleRemoveStory(w http.ResponseWriter, r *http.Request) {
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

	if err := a.storySvc.Remove(r.Context(), u, id); err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusNoContent, nil)
}

func (a *api) handleToggleRateStory(w http.ResponseWriter, r *http.Request) {
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

	vote, err := a.ratingSvc.ToggleStory(r.Context(), u, id)
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteSuccess(w, http.StatusOK, vote)
}

func (a *api) handleGetMyStories(w http.ResponseWriter, r *http.Request) {
	u, ok := CurrentUser(r.Context())
	if !ok {
		WriteDomainError(w, domain.ErrUnauthorized)
		return
	}

	stories, err := a.storySvc.ListMine(r.Context(), u)
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteSuccess(w, http.StatusOK, stories)
}

func (a *api) handleGetUserStories(w http.ResponseWriter, r *http.Request) {
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

	stories, err := a.storySvc.ListByUser(r.Context(), u, id)
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteSuccess(w, http.StatusOK, stories)
}

func (a *api) handleGetFriendsStories(w http.ResponseWriter, r *http.Request) {
	u, ok := CurrentUser(r.Context())
	if !ok {
		WriteDomainError(w, domain.ErrUnauthorized)
		return
	}

	stories, err := a.storySvc.ListFriends(r.Context(), u)
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteSuccess(w, http.StatusOK, stories)
}

func (a *api) handleListStories(w http.ResponseWriter, r *http.Request) {
	u, ok := CurrentUser(r.Context())
	if !ok {
		WriteDomainError(w, domain.ErrUnauthorized)
		return
	}

	stories, err := a.storySvc.ListAll(r.Context(), u)
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteSuccess(w, http.StatusOK, stories)
}
