package model

// DefaultTrustScore is the score assigned to new users.
const DefaultTrustScore = 100

// User is the slice of the platform user this subsystem touches: only
// the trust score is ever mutated here, and only downward with a floor
// of zero.
type User struct {
	ID         string `json:"id" db:"id"`
	Nickname   string `json:"nickname" db:"nickname"`
	TrustScore int    `json:"trust_score" db:"trust_score"`
}
