package domain

// Ownable is anything with an owning author. Stories and comments both
// implement it, so ownership checks are polymorphic instead of poking at
// per-type fields.
type Ownable interface {
	OwnerID() string
}

// Owns reports whether the actor is the author of the target.
func Owns(actorID string, target Ownable) bool {
	return actorID != "" && actorID == target.OwnerID()
}

// Visible is a readable resource with a privacy flag. A private resource is
// restricted to its author and the author's friends.
type Visible interface {
	Ownable
	IsPrivate() bool
}

// CanView decides the visibility gate for target. isFriend must report
// whether the actor is an accepted friend of the target's author.
func CanView(actorID string, target Visible, isFriend bool) bool {
	if !target.IsPrivate() {
		return true
	}
	return Owns(actorID, target) || isFriend
}

// RoleAllowed reports whether role is in the allowed set.
func RoleAllowed(role Role, allowed ...Role) bool {
	for _, a := range allowed {
		if role == a {
			return true
		}
	}
	return false
}
