package domain

import "time"

type Role string

const (
	RoleUser      Role = "user"
	RoleModerator Role = "moderator"
	RoleAdmin     Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleModerator, RoleAdmin:
		return true
	}
	return false
}

// Lifecycle is the two-state soft-delete lifecycle shared by users, stories
// and comments. Purging removes the row entirely, so only the first two
// states are ever stored.
type Lifecycle string

const (
	LifecycleActive   Lifecycle = "active"
	LifecycleDisabled Lifecycle = "disabled"
)

type User struct {
	ID                string     `json:"id"`
	Name              string     `json:"name"`
	Email             string     `json:"email"`
	Role              Role       `json:"role"`
	Photo             string     `json:"photo"`
	Rating            int        `json:"rating"`
	Status            Lifecycle  `json:"-"`
	PasswordChangedAt *time.Time `json:"-"`
	CreatedAt         time.Time  `json:"createdAt"`
	UpdatedAt         time.Time  `json:"-"`
}

type UserWithPassword struct {
	User
	PasswordHash string
}

// UserSummary is the whitelisted author shape exposed to non-admin viewers.
type UserSummary struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Photo     string    `json:"photo"`
	CreatedAt time.Time `json:"createdAt"`
}

type PasswordResetToken struct {
	ID          string
	UserID      string
	TokenHash   string
	SentToEmail string
	CreatedAt   time.Time
	ExpiresAt   time.Time
	UsedAt      *time.Time
}
