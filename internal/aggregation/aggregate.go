// Package aggregation turns a match's live events into per-player counters and
// a weighted score.
//
// Every event type is either positive (adds count x weight) or a penalty
// (subtracts count x weight). Yellow, red and foul are the built-in penalties;
// custom actions opt in with IsNegative. Events that carry no member, or whose
// type is neither built-in nor configured, are skipped without error.
package aggregation

import (
	"github.com/matchfund/matchfund-backend/types"
)

// Stat is the derived line for one member. It is never persisted.
type Stat struct {
	MemberID string         `json:"memberId"`
	Counts   map[string]int `json:"counts"`
	// Total counts positive events only.
	Total         int     `json:"total"`
	PositiveScore float64 `json:"positiveScore"`
	PenaltyScore  float64 `json:"penaltyScore"`
	PrimaryScore  float64 `json:"primaryScore"`
}

type category struct {
	key      string
	weight   float64
	negative bool
}

// DefaultWeights is the scoring table used until an admin edits it.
func DefaultWeights() types.ActionWeights {
	return types.ActionWeights{
		Weights: map[types.EventType]float64{
			types.EventTypeGoal:    2,
			types.EventTypeAssist:  1,
			types.EventTypeYellow:  0.5,
			types.EventTypeRed:     1,
			types.EventTypeFoul:    0.25,
			types.EventTypeSaveGK:  1,
			types.EventTypeTackle:  0.5,
			types.EventTypeDribble: 0.5,
			types.EventTypeNote:    0,
		},
	}
}

// WeightsFromConfigs builds a scoring table from stored action configs.
// Built-in types missing from configs keep their default weight.
func WeightsFromConfigs(configs []types.ActionConfig) types.ActionWeights {
	w := DefaultWeights()
	for _, c := range configs {
		t := types.EventType(c.Key)
		if t.IsBuiltIn() {
			w.Weights[t] = c.Weight
			continue
		}
		w.Extras = append(w.Extras, types.ActionExtra{
			Key:        c.Key,
			Label:      c.Label,
			Weight:     c.Weight,
			IsNegative: c.IsNegative,
		})
	}
	return w
}

// Aggregate counts events per member and scores them with weights. It does
// not modify its inputs and returns the same result for the same events in
// any order.
func Aggregate(events []types.LiveEvent, weights types.ActionWeights) map[string]*Stat {
	cats := categories(weights)
	index := make(map[string]category, len(cats))
	for _, c := range cats {
		index[c.key] = c
	}

	stats := make(map[string]*Stat)
	for _, ev := range events {
		if ev.MemberID == "" {
			continue
		}
		cat, known := index[string(ev.Type)]
		if !known {
			continue
		}
		s, ok := stats[ev.MemberID]
		if !ok {
			s = &Stat{MemberID: ev.MemberID, Counts: make(map[string]int)}
			stats[ev.MemberID] = s
		}
		s.Counts[cat.key]++
		if !cat.negative {
			s.Total++
		}
	}

	for _, s := range stats {
		score(s, cats)
	}
	return stats
}

// categories lists built-ins first, then extras, so score sums are taken in a
// fixed order. A custom key that shadows a built-in is ignored.
func categories(weights types.ActionWeights) []category {
	cats := make([]category, 0, len(types.BuiltInEventTypes)+len(weights.Extras))
	for _, t := range types.BuiltInEventTypes {
		cats = append(cats, category{
			key:      string(t),
			weight:   weights.Weights[t],
			negative: t.IsPenalty(),
		})
	}
	seen := make(map[string]bool, len(weights.Extras))
	for _, e := range weights.Extras {
		if e.Key == "" || types.EventType(e.Key).IsBuiltIn() || seen[e.Key] {
			continue
		}
		seen[e.Key] = true
		cats = append(cats, category{key: e.Key, weight: e.Weight, negative: e.IsNegative})
	}
	return cats
}

func score(s *Stat, cats []category) {
	var positive, penalty float64
	for _, c := range cats {
		n := s.Counts[c.key]
		if n == 0 {
			continue
		}
		if c.negative {
			penalty += float64(n) * c.weight
		} else {
			positive += float64(n) * c.weight
		}
	}
	s.PositiveScore = positive
	s.PenaltyScore = penalty
	s.PrimaryScore = positive - penalty
}
