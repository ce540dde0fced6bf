package service

import (
	"context"
	"errors"
	"time"

	"storyshare/internal/domain"
)

type FriendshipsStore interface {
	CreateRequest(ctx context.Context, requesterID, addresseeID string) (domain.Friendship, error)
	Accept(ctx context.Context, requesterID, addresseeID string, when time.Time) error
	Cancel(ctx context.Context, requesterID, addresseeID string) error
	RemoveFriend(ctx context.Context, userID, friendID string) error
	AreFriends(ctx context.Context, userA, userB string) (bool, error)
	FriendIDs(ctx context.Context, userID string) ([]string, error)
	ListOverview(ctx context.Context, userID string) (domain.FriendsOverview, error)
}

type FriendUsersStore interface {
	GetUserByID(ctx context.Context, id string) (domain.User, error)
}

// FriendsService drives the friend-request state machine. States per pair:
// none, pending (one direction), friends. Every transition is a single
// friendships-row write, so partial updates cannot occur.
type FriendsService struct {
	Users       FriendUsersStore
	Friendships FriendshipsStore
	Now         func() time.Time
}

func (s *FriendsService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// SendRequest moves the (actor, target) pair from none to pending.
func (s *FriendsService) SendRequest(ctx context.Context, actorID, targetID string) (domain.Friendship, error) {
	if actorID == targetID {
		return domain.Friendship{}, domain.ErrSelfTarget
	}

	target, err := s.Users.GetUserByID(ctx, targetID)
	if err != nil {
		return domain.Friendship{}, err
	}
	if target.Status == domain.LifecycleDisabled {
		return domain.Friendship{}, domain.ErrNotFound
	}

	return s.Friendships.CreateRequest(ctx, actorID, target.ID)
}

// CancelRequest withdraws the actor's own pending request to targetID.
func (s *FriendsService) CancelRequest(ctx context.Context, actorID, targetID string) error {
	return s.Friendships.Cancel(ctx, actorID, targetID)
}

// AcceptRequest resolves requesterID's pending request to the actor,
// making the pair friends in both directions at once.
func (s *FriendsService) AcceptRequest(ctx context.Context, actorID, requesterID string) error {
	return s.Friendships.Accept(ctx, requesterID, actorID, s.now())
}

// RemoveFriend dissolves an accepted friendship from either side.
func (s *FriendsService) RemoveFriend(ctx context.Context, actorID, friendID string) error {
	err := s.Friendships.RemoveFriend(ctx, actorID, friendID)
	if err != nil && errors.Is(err, domain.ErrNotFound) {
		return domain.ErrNotFriends
	}
	return err
}

func (s *FriendsService) Overview(ctx context.Context, actorID string) (domain.FriendsOverview, error) {
	return s.Friendships.ListOverview(ctx, actorID)
}

func (s *FriendsService) AreFriends(ctx context.Context, userA, userB string) (bool, error) {
	return s.Friendships.AreFriends(ctx, userA, userB)
}

func (s *FriendsService) FriendIDs(ctx context.Context, userID string) ([]string, error) {
	return s.Friendships.FriendIDs(ctx, userID)
}
