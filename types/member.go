package types

import "time"

// Member is a regular player of the group.
type Member struct {
	ID                  string    `json:"id"`
	Name                string    `json:"name"`
	Nickname            string    `json:"nickname,omitempty"`
	Email               string    `json:"email,omitempty"`
	AvatarURL           string    `json:"avatarUrl,omitempty"`
	IsExemptFromPayment bool      `json:"isExemptFromPayment"`
	IsCreditor          bool      `json:"isCreditor"`
	CreatedAt           time.Time `json:"createdAt"`
	UpdatedAt           time.Time `json:"updatedAt"`
}

// DisplayName prefers the nickname the group actually uses on the pitch.
func (m *Member) DisplayName() string {
	if m.Nickname != "" {
		return m.Nickname
	}
	return m.Name
}

type MemberCreate struct {
	Name                string `json:"name" binding:"required"`
	Nickname            string `json:"nickname"`
	Email               string `json:"email" binding:"omitempty,email"`
	IsExemptFromPayment bool   `json:"isExemptFromPayment"`
	IsCreditor          bool   `json:"isCreditor"`
}

// MemberFlagsUpdate toggles payment flags. Nil fields are left untouched.
type MemberFlagsUpdate struct {
	IsExemptFromPayment *bool `json:"isExemptFromPayment"`
	IsCreditor          *bool `json:"isCreditor"`
}
