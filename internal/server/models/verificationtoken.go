package models

import "time"

// VerificationToken authorizes exactly one activation or password recovery
// for UserID. ID is the bearer value mailed to the user. Tokens are never
// updated; consuming one deletes it.
type VerificationToken struct {
	ID        string
	UserID    string
	CreatedAt time.Time
}

// OwnedBy reports whether the token belongs to userID.
func (t *VerificationToken) OwnedBy(userID string) bool {
	return t.UserID == userID
}
