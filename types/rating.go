package types

import "time"

// Rating is one player's score given by a rater after a match. Admin ratings
// share the table and are flagged with IsAdmin.
type Rating struct {
	ID        string    `json:"id"`
	MatchID   string    `json:"matchId"`
	RaterID   string    `json:"raterId"`
	PlayerID  string    `json:"playerId"`
	Score     float64   `json:"score"`
	Comment   string    `json:"comment,omitempty"`
	IsAdmin   bool      `json:"isAdmin"`
	CreatedAt time.Time `json:"createdAt"`
}

// RatingInput travels with a payment request and is written on settlement.
type RatingInput struct {
	PlayerID string  `json:"playerId" binding:"required"`
	Score    float64 `json:"score" binding:"required,min=1,max=10"`
	Comment  string  `json:"comment,omitempty"`
}

type RatingSummary struct {
	PlayerID string  `json:"playerId"`
	Average  float64 `json:"average"`
	Count    int     `json:"count"`
}
