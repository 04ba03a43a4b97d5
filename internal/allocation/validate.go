package allocation

import (
	"fmt"
	"math"

	apperrors "github.com/matchfund/matchfund-backend/errors"
	"github.com/shopspring/decimal"
)

const percentTolerance = 0.01

// Validate checks a cost split before it is handed to Allocate. The engine
// itself accepts anything; callers reject bad input with this. A split that
// passes never produces a negative amount.
func Validate(totalAmount int64, teams []Team) error {
	if totalAmount <= 0 {
		return apperrors.ValidationFailed("Invalid total amount", "total amount must be positive")
	}
	total := decimal.NewFromInt(totalAmount)

	var percentSum float64
	payable := 0
	seen := make(map[string]string)

	for _, team := range teams {
		if team.Percent < 0 || team.Percent > 100 {
			return apperrors.ValidationFailed("Invalid team percent",
				fmt.Sprintf("team %q percent %.2f is outside [0, 100]", team.Name, team.Percent))
		}
		if team.Percent > 0 && len(team.Members) == 0 {
			return apperrors.ValidationFailed("Team has no members",
				fmt.Sprintf("team %q pays %.2f%% but has no members", team.Name, team.Percent))
		}
		percentSum += team.Percent

		var fixed float64
		for _, m := range team.Members {
			if m.MemberID == "" {
				return apperrors.ValidationFailed("Invalid team member", fmt.Sprintf("team %q has a member without id", team.Name))
			}
			if other, dup := seen[m.MemberID]; dup {
				return apperrors.ValidationFailed("Duplicate team member",
					fmt.Sprintf("member %s is in both %q and %q", m.MemberID, other, team.Name))
			}
			seen[m.MemberID] = team.Name

			if m.Percent < 0 || m.Percent > 100 {
				return apperrors.ValidationFailed("Invalid member percent",
					fmt.Sprintf("member %s percent %.2f is outside [0, 100]", m.MemberID, m.Percent))
			}
			if m.Exempt {
				continue
			}
			fixed += m.Percent
			payable++
		}
		if fixed > 100+percentTolerance {
			return apperrors.ValidationFailed("Fixed shares exceed team pocket",
				fmt.Sprintf("fixed percents in team %q add up to %.2f%%", team.Name, fixed))
		}
		if over := roundedFixedOverflow(total, team); over > 0 {
			return apperrors.ValidationFailed("Fixed shares exceed team pocket",
				fmt.Sprintf("rounded fixed amounts in team %q exceed the pocket by %d", team.Name, over))
		}
	}

	if math.Abs(percentSum-100) > percentTolerance {
		return apperrors.ValidationFailed("Team percents must sum to 100",
			fmt.Sprintf("got %.2f", percentSum))
	}
	if payable == 0 {
		return apperrors.ValidationFailed("No payable members", "every member is exempt from payment")
	}

	// The cross-team correction lands on the last member and can still push a
	// tiny share below zero.
	for _, l := range AllocateDetailed(totalAmount, teams) {
		if l.Amount < 0 {
			return apperrors.ValidationFailed("Total too small to split",
				fmt.Sprintf("member %s would owe %d", l.MemberID, l.Amount))
		}
	}
	return nil
}

// roundedFixedOverflow reports by how much the fixed members' rounded amounts
// exceed the team's rounded pocket.
func roundedFixedOverflow(total decimal.Decimal, team Team) int64 {
	teamTotal := total.Mul(decimal.NewFromFloat(team.Percent)).Div(hundred)
	fixedSum := decimal.Zero
	for _, m := range team.Members {
		if m.Exempt || m.Percent <= 0 {
			continue
		}
		fixedSum = fixedSum.Add(teamTotal.Mul(decimal.NewFromFloat(m.Percent)).Div(hundred).Round(0))
	}
	return fixedSum.Sub(teamTotal.Round(0)).IntPart()
}
