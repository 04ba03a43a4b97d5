package types

import "time"

type EventType string

const (
	EventTypeGoal    EventType = "goal"
	EventTypeAssist  EventType = "assist"
	EventTypeYellow  EventType = "yellow"
	EventTypeRed     EventType = "red"
	EventTypeFoul    EventType = "foul"
	EventTypeSaveGK  EventType = "save_gk"
	EventTypeTackle  EventType = "tackle"
	EventTypeDribble EventType = "dribble"
	EventTypeNote    EventType = "note"
)

// BuiltInEventTypes lists the fixed actions in display order.
var BuiltInEventTypes = []EventType{
	EventTypeGoal,
	EventTypeAssist,
	EventTypeYellow,
	EventTypeRed,
	EventTypeFoul,
	EventTypeSaveGK,
	EventTypeTackle,
	EventTypeDribble,
	EventTypeNote,
}

func (t EventType) IsBuiltIn() bool {
	for _, b := range BuiltInEventTypes {
		if b == t {
			return true
		}
	}
	return false
}

// IsPenalty reports whether a built-in type subtracts from the score.
func (t EventType) IsPenalty() bool {
	return t == EventTypeYellow || t == EventTypeRed || t == EventTypeFoul
}

// LiveEvent is one action noted during a match. MemberID may be empty for
// team-level notes. Events are append-only; undo deletes them.
type LiveEvent struct {
	ID        string    `json:"id"`
	MatchID   string    `json:"matchId"`
	MemberID  string    `json:"memberId,omitempty"`
	Type      EventType `json:"type"`
	Minute    *int      `json:"minute,omitempty"`
	Second    *int      `json:"second,omitempty"`
	Note      string    `json:"note,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

type LiveEventCreate struct {
	MemberID string    `json:"memberId"`
	Type     EventType `json:"type" binding:"required"`
	Minute   *int      `json:"minute" binding:"omitempty,min=0,max=200"`
	Second   *int      `json:"second" binding:"omitempty,min=0,max=59"`
	Note     string    `json:"note"`
}

// ActionConfig is the persisted form of one scoring action. Built-in rows
// carry the weight of a fixed EventType; the rest are custom extras.
type ActionConfig struct {
	Key        string    `json:"key" yaml:"key"`
	Label      string    `json:"label" yaml:"label"`
	Weight     float64   `json:"weight" yaml:"weight"`
	IsNegative bool      `json:"isNegative" yaml:"isNegative"`
	BuiltIn    bool      `json:"builtIn" yaml:"-"`
	SortOrder  int       `json:"sortOrder" yaml:"sortOrder"`
	UpdatedAt  time.Time `json:"updatedAt" yaml:"-"`
}

type ActionConfigUpdate struct {
	Label      string  `json:"label" binding:"required"`
	Weight     float64 `json:"weight"`
	IsNegative bool    `json:"isNegative"`
	SortOrder  int     `json:"sortOrder"`
}

// ActionExtra is a custom scoring action.
type ActionExtra struct {
	Key        string  `json:"key"`
	Label      string  `json:"label"`
	Weight     float64 `json:"weight"`
	IsNegative bool    `json:"isNegative"`
}

// ActionWeights is the scoring table handed to the aggregation engine.
type ActionWeights struct {
	Weights map[EventType]float64 `json:"weights"`
	Extras  []ActionExtra         `json:"extras"`
}

// FeedMessageType tags messages on the live match feed.
type FeedMessageType string

const (
	FeedEventAdded   FeedMessageType = "LIVE_EVENT_ADDED"
	FeedEventRemoved FeedMessageType = "LIVE_EVENT_REMOVED"
)

// FeedMessage is what spectators receive over the live socket.
type FeedMessage struct {
	ID        string          `json:"id"`
	Type      FeedMessageType `json:"type"`
	MatchID   string          `json:"matchId"`
	Event     *LiveEvent      `json:"event,omitempty"`
	EventID   string          `json:"eventId,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}
