package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	apperrors "github.com/matchfund/matchfund-backend/errors"
	"github.com/matchfund/matchfund-backend/internal/allocation"
	"github.com/matchfund/matchfund-backend/internal/store"
	"github.com/matchfund/matchfund-backend/logger"
	"github.com/matchfund/matchfund-backend/types"
	"go.uber.org/zap"
)

// LastMatchConfigKey holds the most recent cost split so the admin screen can
// start the next match from it.
const LastMatchConfigKey = "last_match"

type lastMatchConfig struct {
	MatchID     string       `json:"matchId"`
	TotalAmount int64        `json:"totalAmount"`
	Teams       []types.Team `json:"teams"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}

type MatchService struct {
	matches       store.MatchStore
	members       store.MemberStore
	configs       store.ConfigStore
	notifications *NotificationService
	jobs          JobSubmitter
	log           *zap.SugaredLogger
}

// NewMatchService wires the match flow. notifications and jobs may be nil, in
// which case attendance changes are not announced.
func NewMatchService(matches store.MatchStore, members store.MemberStore, configs store.ConfigStore,
	notifications *NotificationService, jobs JobSubmitter) *MatchService {
	return &MatchService{
		matches:       matches,
		members:       members,
		configs:       configs,
		notifications: notifications,
		jobs:          jobs,
		log:           logger.GetLogger().Named("matches"),
	}
}

func (s *MatchService) CreateMatch(ctx context.Context, req types.MatchCreate) (*types.Match, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, apperrors.ValidationFailed("Missing title", "title is required")
	}
	if req.ScheduledAt.IsZero() {
		return nil, apperrors.ValidationFailed("Missing kickoff", "scheduledAt is required")
	}

	match := &types.Match{
		Title:       title,
		Location:    strings.TrimSpace(req.Location),
		ScheduledAt: req.ScheduledAt.UTC(),
		Status:      types.MatchStatusScheduled,
	}
	if err := s.matches.CreateMatch(ctx, match); err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}
	s.log.Infow("Match created", "matchID", match.ID, "scheduledAt", match.ScheduledAt)
	return match, nil
}

func (s *MatchService) GetMatch(ctx context.Context, id string) (*types.Match, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, apperrors.NotFound("Match", id)
	}
	match, err := s.matches.GetMatch(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperrors.NotFound("Match", id)
	}
	if err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}
	return match, nil
}

// FinalizeShares computes every member's share of the field cost and
// replaces the match's shares with them. It refuses once any share is paid.
func (s *MatchService) FinalizeShares(ctx context.Context, matchID string, req types.FinalizeSharesRequest) ([]*types.Share, error) {
	if _, err := s.GetMatch(ctx, matchID); err != nil {
		return nil, err
	}

	teams, err := s.resolveTeams(ctx, req.Teams)
	if err != nil {
		return nil, err
	}
	if err := allocation.Validate(req.TotalAmount, teams); err != nil {
		return nil, err
	}

	lines := allocation.AllocateDetailed(req.TotalAmount, teams)
	shares := make([]*types.Share, 0, len(lines))
	for _, l := range lines {
		breakdown := &types.ShareBreakdown{
			TeamPercent:   l.TeamPercent,
			Reason:        l.Reason,
			Adjustment:    l.Adjustment,
			TotalAmount:   req.TotalAmount,
			IsFixedMember: l.Fixed,
		}
		if l.Fixed {
			breakdown.FixedPercent = l.Percent
		}
		shares = append(shares, &types.Share{
			MatchID:   matchID,
			MemberID:  l.MemberID,
			TeamID:    l.TeamID,
			Amount:    l.Amount,
			Status:    types.ShareStatusPending,
			Breakdown: breakdown,
		})
	}

	roster := &types.Roster{
		MatchID:     matchID,
		TotalAmount: req.TotalAmount,
		Teams:       req.Teams,
	}
	err = s.matches.ReplaceShares(ctx, roster, shares)
	switch {
	case errors.Is(err, store.ErrAlreadyPaid):
		return nil, apperrors.NewConflictError("Shares already paid",
			"at least one share of this match is paid; the split can no longer change")
	case errors.Is(err, store.ErrNotFound):
		return nil, apperrors.NotFound("Match", matchID)
	case err != nil:
		return nil, apperrors.NewDatabaseError(err)
	}

	s.saveLastMatch(ctx, matchID, req)
	s.log.Infow("Shares finalized", "matchID", matchID, "total", req.TotalAmount, "shares", len(shares))
	return shares, nil
}

// resolveTeams assigns team ids, checks member ids and folds in the
// payment exemption stored on each member.
func (s *MatchService) resolveTeams(ctx context.Context, in []types.Team) ([]allocation.Team, error) {
	if len(in) == 0 {
		return nil, apperrors.ValidationFailed("Missing teams", "at least one team is required")
	}

	var ids []string
	for i := range in {
		if in[i].ID == "" {
			in[i].ID = fmt.Sprintf("team-%d", i+1)
		}
		for _, m := range in[i].Members {
			if _, err := uuid.Parse(m.MemberID); err != nil {
				return nil, apperrors.ValidationFailed("Invalid team member", "unknown member id "+m.MemberID)
			}
			ids = append(ids, m.MemberID)
		}
	}

	members, err := s.members.GetMembersByIDs(ctx, ids)
	if err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}

	teams := make([]allocation.Team, 0, len(in))
	for _, t := range in {
		team := allocation.Team{ID: t.ID, Name: t.Name, Percent: t.Percent}
		for _, m := range t.Members {
			member, ok := members[m.MemberID]
			if !ok {
				return nil, apperrors.ValidationFailed("Invalid team member", "unknown member id "+m.MemberID)
			}
			team.Members = append(team.Members, allocation.Member{
				MemberID: m.MemberID,
				Percent:  m.Percent,
				Reason:   m.Reason,
				Exempt:   member.IsExemptFromPayment,
			})
		}
		teams = append(teams, team)
	}
	return teams, nil
}

func (s *MatchService) saveLastMatch(ctx context.Context, matchID string, req types.FinalizeSharesRequest) {
	raw, err := json.Marshal(lastMatchConfig{
		MatchID:     matchID,
		TotalAmount: req.TotalAmount,
		Teams:       req.Teams,
		UpdatedAt:   time.Now().UTC(),
	})
	if err != nil {
		s.log.Warnw("Failed to encode last match config", "error", err)
		return
	}
	if err := s.configs.PutConfig(ctx, LastMatchConfigKey, raw); err != nil {
		s.log.Warnw("Failed to save last match config", "matchID", matchID, "error", err)
	}
}

func (s *MatchService) ListShares(ctx context.Context, matchID string) ([]*types.Share, error) {
	if _, err := s.GetMatch(ctx, matchID); err != nil {
		return nil, err
	}
	shares, err := s.matches.ListShares(ctx, matchID)
	if err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}
	return shares, nil
}

// AddAttendance marks a member as playing. Repeating it is harmless and only
// the first call is announced.
func (s *MatchService) AddAttendance(ctx context.Context, matchID, memberID string) (bool, error) {
	member, err := s.attendanceTarget(ctx, matchID, memberID)
	if err != nil {
		return false, err
	}
	added, err := s.matches.AddAttendance(ctx, matchID, memberID)
	if err != nil {
		return false, apperrors.NewDatabaseError(err)
	}
	if added {
		s.announce(types.NotificationAttendanceCreated, matchID, member)
	}
	return added, nil
}

func (s *MatchService) RemoveAttendance(ctx context.Context, matchID, memberID string) (bool, error) {
	member, err := s.attendanceTarget(ctx, matchID, memberID)
	if err != nil {
		return false, err
	}
	removed, err := s.matches.RemoveAttendance(ctx, matchID, memberID)
	if err != nil {
		return false, apperrors.NewDatabaseError(err)
	}
	if removed {
		s.announce(types.NotificationAttendanceDeleted, matchID, member)
	}
	return removed, nil
}

func (s *MatchService) ListAttendance(ctx context.Context, matchID string) ([]types.Attendance, error) {
	if _, err := s.GetMatch(ctx, matchID); err != nil {
		return nil, err
	}
	list, err := s.matches.ListAttendance(ctx, matchID)
	if err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}
	return list, nil
}

func (s *MatchService) attendanceTarget(ctx context.Context, matchID, memberID string) (*types.Member, error) {
	if _, err := s.GetMatch(ctx, matchID); err != nil {
		return nil, err
	}
	if _, err := uuid.Parse(memberID); err != nil {
		return nil, apperrors.ValidationFailed("Invalid member id", memberID)
	}
	member, err := s.members.GetMember(ctx, memberID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperrors.NotFound("Member", memberID)
	}
	if err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}
	return member, nil
}

func (s *MatchService) announce(kind types.NotificationType, matchID string, member *types.Member) {
	if s.notifications == nil || s.jobs == nil {
		return
	}
	job := s.notifications.AttendanceJob(kind, types.AttendanceNotificationRequest{
		MatchID:    matchID,
		MemberID:   member.ID,
		MemberName: member.DisplayName(),
	})
	if !s.jobs.Submit(job) {
		s.log.Warnw("Attendance notification dropped", "matchID", matchID, "kind", kind)
	}
}
