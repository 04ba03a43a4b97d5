package types

import "time"

type MatchStatus string

const (
	MatchStatusScheduled MatchStatus = "SCHEDULED"
	MatchStatusFinished  MatchStatus = "FINISHED"
	MatchStatusCancelled MatchStatus = "CANCELLED"
)

type Match struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Location    string      `json:"location"`
	ScheduledAt time.Time   `json:"scheduledAt"`
	TotalAmount int64       `json:"totalAmount"`
	Status      MatchStatus `json:"status"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}

type MatchCreate struct {
	Title       string    `json:"title" binding:"required"`
	Location    string    `json:"location"`
	ScheduledAt time.Time `json:"scheduledAt" binding:"required"`
}

// Team is one side of a match together with its share of the field cost.
type Team struct {
	ID      string       `json:"id"`
	Name    string       `json:"name"`
	Percent float64      `json:"percent"`
	Members []TeamMember `json:"members"`
}

// TeamMember references a member inside a team. A positive Percent fixes the
// member's cut of the team pocket instead of an equal split.
type TeamMember struct {
	MemberID string  `json:"memberId"`
	Percent  float64 `json:"percent,omitempty"`
	Reason   string  `json:"reason,omitempty"`
}

// Roster is the team configuration a match's shares were computed from.
type Roster struct {
	MatchID     string    `json:"matchId"`
	TotalAmount int64     `json:"totalAmount"`
	Teams       []Team    `json:"teams"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type Attendance struct {
	MatchID   string    `json:"matchId"`
	MemberID  string    `json:"memberId"`
	CreatedAt time.Time `json:"createdAt"`
}

// FinalizeSharesRequest fixes the cost split of a match.
type FinalizeSharesRequest struct {
	TotalAmount int64  `json:"totalAmount" binding:"required"`
	Teams       []Team `json:"teams" binding:"required"`
}

type AttendanceRequest struct {
	MemberID string `json:"memberId" binding:"required"`
}

// AttendanceChange reports whether a mark or unmark changed anything.
type AttendanceChange struct {
	MatchID  string `json:"matchId"`
	MemberID string `json:"memberId"`
	Changed  bool   `json:"changed"`
}
