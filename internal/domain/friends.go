package domain

import "time"

type FriendshipStatus string

const (
	FriendshipPending  FriendshipStatus = "pending"
	FriendshipAccepted FriendshipStatus = "accepted"
)

// Friendship is one row per unordered user pair. A pending row is a request
// from RequesterID to AddresseeID; an accepted row is a symmetric friendship.
// Because there is exactly one row per pair, a pending request and an
// accepted friendship can never coexist and both sides always agree.
type Friendship struct {
	ID          string
	RequesterID string
	AddresseeID string
	Status      FriendshipStatus
	CreatedAt   time.Time
	RespondedAt *time.Time
}

// FriendsOverview is the derived form of the relationship lists: friends,
// requests sent and requests received, computed from the friendships rows
// touching a user.
type FriendsOverview struct {
	Friends          []UserSummary `json:"friends"`
	RequestsReceived []UserSummary `json:"friendsRequestsReceived"`
	RequestsSent     []UserSummary `json:"friendsRequestsSent"`
}
