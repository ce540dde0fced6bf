package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"storyshare/internal/domain"
	"storyshare/internal/service"
)

type stubStoriesStore struct {
	t *testing.T

	createStoryFunc          func(context.Context, string, string, string, []string, bool) (domain.Story, error)
	getStoryFunc             func(context.Context, string) (domain.Story, error)
	updateStoryFunc          func(context.Context, string, string, string, []string, bool) (domain.Story, error)
	setStoryStatusFunc       func(context.Context, string, domain.Lifecycle) (domain.Story, error)
	deleteStoryFunc          func(context.Context, string) error
	listStoriesByAuthorFunc  func(context.Context, string) ([]domain.Story, error)
	listStoriesByAuthorsFunc func(context.Context, []string) ([]domain.Story, error)
	listAllStoriesFunc       func(context.Context) ([]domain.Story, error)
}

func (s *stubStoriesStore) CreateStory(ctx context.Context, authorID, title, text string, images []string, private bool) (domain.Story, error) {
	if s.createStoryFunc != nil {
		return s.createStoryFunc(ctx, authorID, title, text, images, private)
	}
	s.t.Fatalf("CreateStory called unexpectedly")
	return domain.Story{}, errors.New("unexpected call")
}

func (s *stubStoriesStore) GetStory(ctx context.Context, id string) (domain.Story, error) {
	if s.getStoryFunc != nil {
		return s.getStoryFunc(ctx, id)
	}
	s.t.Fatalf("GetStory called unexpectedly")
	return domain.Story{}, errors.New("unexpected call")
}

func (s *stubStoriesStore) UpdateStory(ctx context.Context, id, title, text string, images []string, private bool) (domain.Story, error) {
	if s.updateStoryFunc != nil {
		return s.updateStoryFunc(ctx, id, title, text, images, private)
	}
	s.t.Fatalf("UpdateStory called unexpectedly")
	return domain.Story{}, errors.New("unexpected call")
}

func (s *stubStoriesStore) SetStoryStatus(ctx context.Context, id string, status domain.Lifecycle) (domain.Story, error) {
	if s.setStoryStatusFunc != nil {
		return s.setStoryStatusFunc(ctx, id, status)
	}
	s.t.Fatalf("SetStoryStatus called unexpectedly")
	return domain.Story{}, errors.New("unexpected call")
}

func (s *stubStoriesStore) DeleteStory(ctx context.Context, id string) error {
	if s.deleteStoryFunc != nil {
		return s.deleteStoryFunc(ctx, id)
	}
	s.t.Fatalf("DeleteStory called unexpectedly")
	return errors.New("unexpected call")
}

func (s *stubStoriesStore) ListStoriesByAuthor(ctx context.Context, authorID string) ([]domain.Story, error) {
	if s.listStoriesByAuthorFunc != nil {
		return s.listStoriesByAuthorFunc(ctx, authorID)
	}
	s.t.Fatalf("ListStoriesByAuthor called unexpectedly")
	return nil, errors.New("unexpected call")
}

func (s *stubStoriesStore) ListStoriesByAuthors(ctx context.Context, authorIDs []string) ([]domain.Story, error) {
	if s.listStoriesByAuthorsFunc != nil {
		return s.listStoriesByAuthorsFunc(ctx, authorIDs)
	}
	s.t.Fatalf("ListStoriesByAuthors called unexpectedly")
	return nil, errors.New("unexpected call")
}

func (s *stubStoriesStore) ListAllStories(ctx context.Context) ([]domain.Story, error) {
	if s.listAllStoriesFunc != nil {
		return s.listAllStoriesFunc(ctx)
	}
	s.t.Fatalf("ListAllStories called unexpectedly")
	return nil, errors.New("unexpected call")
}

type stubCommentsLister struct {
	t *testing.T

	listCommentsByStoryFunc func(context.Context, string, bool) ([]domain.CommentView, error)
}

func (s *stubCommentsLister) ListCommentsByStory(ctx context.Context, storyID string, includeDisabled bool) ([]domain.CommentView, error) {
	if s.listCommentsByStoryFunc != nil {
		return s.listCommentsByStoryFunc(ctx, storyID, includeDisabled)
	}
	s.t.Fatalf("ListCommentsByStory called unexpectedly")
	return nil, errors.New("unexpected call")
}

type stubFriendChecker struct {
	t *testing.T

	areFriendsFunc func(context.Context, string, string) (bool, error)
	friendIDsFunc  func(context.Context, string) ([]string, error)
}

func (s *stubFriendChecker) AreFriends(ctx context.Context, userA, userB string) (bool, error) {
	if s.areFriendsFunc != nil {
		return s.areFriendsFunc(ctx, userA, userB)
	}
	s.t.Fatalf("AreFriends called unexpectedly")
	return false, errors.New("unexpected call")
}

func (s *stubFriendChecker) FriendIDs(ctx context.Context, userID string) ([]string, error) {
	if s.friendIDsFunc != nil {
		return s.friendIDsFunc(ctx, userID)
	}
	s.t.Fatalf("FriendIDs called unexpectedly")
	return nil, errors.New("unexpected call")
}

func TestCreateStoryValidation(t *testing.T) {
	api := &api{storySvc: &service.StoryService{Stories: &stubStoriesStore{t: t}}}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/createStory", strings.NewReader(`{"title":"","text":""}`))
	req = authedRequest(req, domain.User{ID: "user-1"})

	rr := httptest.NewRecorder()
	api.handleCreateStory(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("unexpected status: %d", rr.Code)
	}

	var got failEnvelope
	if err := json.NewDecoder(rr.Body).Decode(&got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if got.Status != "fail" {
		t.Fatalf("unexpected envelope status: %s", got.Status)
	}
	if !strings.Contains(got.Message, "title") {
		t.Fatalf("expected title in message, got %q", got.Message)
	}
}

func TestCreateStory(t *testing.T) {
	stories := &stubStoriesStore{
		t: t,
		createStoryFunc: func(_ context.Context, authorID, title, text string, _ []string, private bool) (domain.Story, error) {
			if authorID != "user-1" || title != "First snow" || !private {
				t.Fatalf("unexpected create args: %s %s %v", authorID, title, private)
			}
			return domain.Story{ID: "story-1", AuthorID: authorID, Title: title, Text: text, Private: private}, nil
		},
	}
	api := &api{storySvc: &service.StoryService{Stories: stories}}

	body := `{"title":"First snow","text":"It snowed all night.","private":true}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/createStory", strings.NewReader(body))
	req = authedRequest(req, domain.User{ID: "user-1"})

	rr := httptest.NewRecorder()
	api.handleCreateStory(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("unexpected status: %d", rr.Code)
	}

	var got struct {
		Status string       `json:"status"`
		Data   domain.Story `json:"data"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if got.Data.ID != "story-1" || got.Data.AuthorID != "user-1" {
		t.Fatalf("unexpected story: %+v", got.Data)
	}
}

func TestGetStoryPrivateNonFriend(t *testing.T) {
	stories := &stubStoriesStore{
		t: t,
		getStoryFunc: func(_ context.Context, id string) (domain.Story, error) {
			return domain.Story{ID: id, AuthorID: "author-1", Private: true, Status: domain.LifecycleActive}, nil
		},
	}
	friends := &stubFriendChecker{
		t: t,
		areFriendsFunc: func(_ context.Context, _, _ string) (bool, error) {
			return false, nil
		},
	}
	api := &api{storySvc: &service.StoryService{
		Stories:  stories,
		Comments: &stubCommentsLister{t: t},
		Friends:  friends,
	}}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/stories/story-1/getStory", nil)
	req.SetPathValue("id", "story-1")
	req = authedRequest(req, domain.User{ID: "viewer-1"})

	rr := httptest.NewRecorder()
	api.handleGetStory(rr, req)

	if rr.Code != http.StatusForbidden {
		t.Fatalf("unexpected status: %d", rr.Code)
	}

	var got failEnvelope
	if err := json.NewDecoder(rr.Body).Decode(&got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if got.Status != "fail" {
		t.Fatalf("unexpected envelope status: %s", got.Status)
	}
}

func TestToggleRateStory(t *testing.T) {
	stories := &stubStoriesStore{
		t: t,
		getStoryFunc: func(_ context.Context, id string) (domain.Story, error) {
			return domain.Story{ID: id, AuthorID: "author-1", Status: domain.LifecycleActive}, nil
		},
	}
	ratings := &stubRatingsStore{
		t: t,
		toggleStoryVoteFunc: func(_ context.Context, userID, storyID string) (domain.Story, bool, error) {
			if userID != "voter-1" || storyID != "story-1" {
				t.Fatalf("unexpected toggle args: %s %s", userID, storyID)
			}
			return domain.Story{ID: storyID, AuthorID: "author-1", Rating: 1}, true, nil
		},
	}

	storySvc := &service.StoryService{Stories: stories, Friends: &stubFriendChecker{t: t}}
	api := &api{
		storySvc:  storySvc,
		ratingSvc: &service.RatingService{Ratings: ratings, Stories: storySvc},
	}

	req := httptest.NewRequest(http.MethodPatch, "/api/v1/stories/story-1/toggleRateStory", nil)
	req.SetPathValue("id", "story-1")
	req = authedRequest(req, domain.User{ID: "voter-1"})

	rr := httptest.NewRecorder()
	api.handleToggleRateStory(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rr.Code)
	}

	var got struct {
		Status string `json:"status"`
		Data   struct {
			Story domain.Story `json:"story"`
			Voted bool         `json:"voted"`
		} `json:"data"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !got.Data.Voted || got.Data.Story.Rating != 1 {
		t.Fatalf("unexpected vote data: %+v", got.Data)
	}
}

type stubRatingsStore struct {
	t *testing.T

	toggleStoryVoteFunc   func(context.Context, string, string) (domain.Story, bool, error)
	toggleCommentVoteFunc func(context.Context, string, string) (domain.Comment, domain.User, bool, error)
}

func (s *stubRatingsStore) ToggleStoryVote(ctx context.Context, userID, storyID string) (domain.Story, bool, error) {
	if s.toggleStoryVoteFunc != nil {
		return s.toggleStoryVoteFunc(ctx, userID, storyID)
	}
	s.t.Fatalf("ToggleStoryVote called unexpectedly")
	return domain.Story{}, false, errors.New("unexpected call")
}

func (s *stubRatingsStore) ToggleCommentVote(ctx context.Context, userID, commentID string) (domain.Comment, domain.User, bool, error) {
	if s.toggleCommentVoteFunc != nil {
		return s.toggleCommentVoteFunc(ctx, userID, commentID)
	}
	s.t.Fatalf("ToggleCommentVote called unexpectedly")
	return domain.Comment{}, domain.User{}, false, errors.New("unexpected call")
}
