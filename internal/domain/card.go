package domain

import "time"

// Card is a photo card posted by a user. Likes holds the ids of users who
// liked it; only Owner may delete the card.
type Card struct {
	ID        string
	Name      string
	Link      string
	Owner     string
	Likes     []string
	CreatedAt time.Time
}

// LikedBy reports whether the given user id is in the like list.
func (c *Card) LikedBy(userID string) bool {
	for _, id := range c.Likes {
		if id == userID {
			return true
		}
	}
	return false
}
