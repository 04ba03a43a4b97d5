// Package allocation splits a match's field cost between teams and players.
//
// Each team owns a percentage of the total (its pocket). Inside a pocket,
// members with a fixed percentage are paid first, rounded half away from zero.
// Whatever is left of the rounded pocket is shared equally by the regular
// members, with the integer remainder handed out one unit at a time in
// member-list order. Exempt members pay nothing. Rounding each pocket can leave
// the grand total a few units off;
// that difference is charged to the last member processed so the result always
// sums to the input total.
package allocation

import (
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Member is a player inside a team.
type Member struct {
	MemberID string
	// Percent > 0 fixes the member's cut of the team pocket.
	Percent float64
	Reason  string
	Exempt  bool
}

type Team struct {
	ID      string
	Name    string
	Percent float64
	Members []Member
}

// Line is one member's computed amount together with how it was derived.
type Line struct {
	MemberID    string
	TeamID      string
	TeamPercent float64
	Amount      int64
	Fixed       bool
	Percent     float64
	Reason      string
	// Adjustment is the cross-team rounding correction folded into Amount.
	Adjustment int64
}

// Allocate returns the amount owed per member. Amounts sum to totalAmount
// whenever at least one member is payable.
func Allocate(totalAmount int64, teams []Team) map[string]int64 {
	lines := AllocateDetailed(totalAmount, teams)
	out := make(map[string]int64, len(lines))
	for _, l := range lines {
		out[l.MemberID] += l.Amount
	}
	return out
}

// AllocateDetailed is Allocate with the per-member breakdown, in processing
// order: team by team, fixed members first, then regular members.
func AllocateDetailed(totalAmount int64, teams []Team) []Line {
	total := decimal.NewFromInt(totalAmount)
	var lines []Line

	for _, team := range teams {
		if team.Percent == 0 && len(team.Members) == 0 {
			continue
		}
		teamTotal := total.Mul(decimal.NewFromFloat(team.Percent)).Div(hundred)
		lines = append(lines, allocateTeam(team, teamTotal)...)
	}

	if len(lines) == 0 {
		return lines
	}

	var sum int64
	for _, l := range lines {
		sum += l.Amount
	}
	if diff := totalAmount - sum; diff != 0 {
		last := &lines[len(lines)-1]
		last.Amount += diff
		last.Adjustment = diff
	}
	return lines
}

func allocateTeam(team Team, teamTotal decimal.Decimal) []Line {
	lines := make([]Line, 0, len(team.Members))
	regular := make([]Member, 0, len(team.Members))
	fixedSum := decimal.Zero

	for _, m := range team.Members {
		if m.Exempt {
			continue
		}
		if m.Percent <= 0 {
			regular = append(regular, m)
			continue
		}
		amount := teamTotal.Mul(decimal.NewFromFloat(m.Percent)).Div(hundred).Round(0)
		fixedSum = fixedSum.Add(amount)
		lines = append(lines, Line{
			MemberID:    m.MemberID,
			TeamID:      team.ID,
			TeamPercent: team.Percent,
			Amount:      amount.IntPart(),
			Fixed:       true,
			Percent:     m.Percent,
			Reason:      m.Reason,
		})
	}

	if len(regular) == 0 {
		return lines
	}

	// The team owns its pocket rounded half away from zero. Fixed members are
	// paid out of it first; an over-committed pocket leaves nothing to share.
	remaining := teamTotal.Round(0).Sub(fixedSum)
	if remaining.IsNegative() {
		remaining = decimal.Zero
	}
	n := decimal.NewFromInt(int64(len(regular)))
	base := remaining.Div(n).Floor()
	extra := remaining.Sub(base.Mul(n)).IntPart()

	for i, m := range regular {
		amount := base.IntPart()
		if int64(i) < extra {
			amount++
		}
		lines = append(lines, Line{
			MemberID:    m.MemberID,
			TeamID:      team.ID,
			TeamPercent: team.Percent,
			Amount:      amount,
			Reason:      m.Reason,
		})
	}
	return lines
}
