package aggregation

import "sort"

type Medal string

const (
	MedalGold   Medal = "gold"
	MedalSilver Medal = "silver"
	MedalBronze Medal = "bronze"
	MedalNone   Medal = ""
)

var medals = []Medal{MedalGold, MedalSilver, MedalBronze}

// Ranked is a Stat placed in the leaderboard.
type Ranked struct {
	Stat
	Position int   `json:"position"`
	Medal    Medal `json:"medal,omitempty"`
}

// Rank orders members by PrimaryScore, then Total, then MemberID. Medals go
// to the three highest distinct scores, so tied members share a medal and the
// next score down takes the next medal.
func Rank(stats map[string]*Stat) []Ranked {
	list := make([]*Stat, 0, len(stats))
	for _, s := range stats {
		list = append(list, s)
	}
	sort.Slice(list, func(i, j int) bool {
		a, b := list[i], list[j]
		if a.PrimaryScore != b.PrimaryScore {
			return a.PrimaryScore > b.PrimaryScore
		}
		if a.Total != b.Total {
			return a.Total > b.Total
		}
		return a.MemberID < b.MemberID
	})

	out := make([]Ranked, len(list))
	tier := -1
	for i, s := range list {
		if i == 0 || s.PrimaryScore != list[i-1].PrimaryScore {
			tier++
		}
		medal := MedalNone
		if tier < len(medals) {
			medal = medals[tier]
		}
		out[i] = Ranked{Stat: *s, Position: i + 1, Medal: medal}
	}
	return out
}
