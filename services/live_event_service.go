package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	apperrors "github.com/matchfund/matchfund-backend/errors"
	"github.com/matchfund/matchfund-backend/internal/aggregation"
	"github.com/matchfund/matchfund-backend/internal/store"
	"github.com/matchfund/matchfund-backend/logger"
	"github.com/matchfund/matchfund-backend/types"
	"go.uber.org/zap"
)

// FeedPublisher fans live event changes out to spectators.
type FeedPublisher interface {
	Publish(ctx context.Context, msg types.FeedMessage) error
}

// PlayerStats is one leaderboard row with the player's average rating.
type PlayerStats struct {
	aggregation.Ranked
	AverageRating *float64 `json:"averageRating,omitempty"`
	RatingCount   int      `json:"ratingCount"`
}

// MatchStats is the derived view of a match; nothing in it is stored.
type MatchStats struct {
	MatchID     string                `json:"matchId"`
	Leaderboard []PlayerStats         `json:"leaderboard"`
	Ratings     []types.RatingSummary `json:"ratings"`
	Weights     types.ActionWeights   `json:"weights"`
}

type LiveEventService struct {
	events  store.LiveEventStore
	matches store.MatchStore
	configs store.ConfigStore
	feed    FeedPublisher
	log     *zap.SugaredLogger
}

func NewLiveEventService(events store.LiveEventStore, matches store.MatchStore, configs store.ConfigStore, feed FeedPublisher) *LiveEventService {
	return &LiveEventService{
		events:  events,
		matches: matches,
		configs: configs,
		feed:    feed,
		log:     logger.GetLogger().Named("live_events"),
	}
}

// AddEvent appends an event to the match log. Any type is stored; types
// without a built-in or configured weight are kept in the log and skipped by
// Stats. A member id that is not a uuid leaves the event unattributed.
func (s *LiveEventService) AddEvent(ctx context.Context, matchID string, req types.LiveEventCreate) (*types.LiveEvent, error) {
	if err := s.requireMatch(ctx, matchID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(string(req.Type)) == "" {
		return nil, apperrors.ValidationFailed("Missing event type", "type is required")
	}
	memberID := req.MemberID
	if memberID != "" {
		if _, err := uuid.Parse(memberID); err != nil {
			s.log.Infow("Storing live event without member", "matchID", matchID, "memberID", memberID)
			memberID = ""
		}
	}

	event := &types.LiveEvent{
		MatchID:  matchID,
		MemberID: memberID,
		Type:     req.Type,
		Minute:   req.Minute,
		Second:   req.Second,
		Note:     strings.TrimSpace(req.Note),
	}
	if err := s.events.CreateLiveEvent(ctx, event); err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}

	s.publish(ctx, types.FeedMessage{
		Type:    types.FeedEventAdded,
		MatchID: matchID,
		Event:   event,
		EventID: event.ID,
	})
	return event, nil
}

// DeleteEvent is the undo of AddEvent.
func (s *LiveEventService) DeleteEvent(ctx context.Context, matchID, eventID string) error {
	if _, err := uuid.Parse(matchID); err != nil {
		return apperrors.NotFound("Match", matchID)
	}
	if _, err := uuid.Parse(eventID); err != nil {
		return apperrors.NotFound("Live event", eventID)
	}
	err := s.events.DeleteLiveEvent(ctx, matchID, eventID)
	if errors.Is(err, store.ErrNotFound) {
		return apperrors.NotFound("Live event", eventID)
	}
	if err != nil {
		return apperrors.NewDatabaseError(err)
	}

	s.publish(ctx, types.FeedMessage{
		Type:    types.FeedEventRemoved,
		MatchID: matchID,
		EventID: eventID,
	})
	return nil
}

func (s *LiveEventService) ListEvents(ctx context.Context, matchID string) ([]types.LiveEvent, error) {
	if err := s.requireMatch(ctx, matchID); err != nil {
		return nil, err
	}
	events, err := s.events.ListLiveEvents(ctx, matchID)
	if err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}
	return events, nil
}

// Stats aggregates the event log with the current scoring table and attaches
// each player's average rating.
func (s *LiveEventService) Stats(ctx context.Context, matchID string) (*MatchStats, error) {
	events, err := s.ListEvents(ctx, matchID)
	if err != nil {
		return nil, err
	}
	configs, err := s.configs.ListActionConfigs(ctx)
	if err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}
	ratings, err := s.matches.ListRatingSummaries(ctx, matchID)
	if err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}

	weights := aggregation.WeightsFromConfigs(configs)
	ranked := aggregation.Rank(aggregation.Aggregate(events, weights))

	byPlayer := make(map[string]types.RatingSummary, len(ratings))
	for _, r := range ratings {
		byPlayer[r.PlayerID] = r
	}

	board := make([]PlayerStats, 0, len(ranked))
	for _, r := range ranked {
		row := PlayerStats{Ranked: r}
		if summary, ok := byPlayer[r.MemberID]; ok {
			avg := summary.Average
			row.AverageRating = &avg
			row.RatingCount = summary.Count
		}
		board = append(board, row)
	}

	if ratings == nil {
		ratings = []types.RatingSummary{}
	}
	return &MatchStats{
		MatchID:     matchID,
		Leaderboard: board,
		Ratings:     ratings,
		Weights:     weights,
	}, nil
}

func (s *LiveEventService) requireMatch(ctx context.Context, matchID string) error {
	if _, err := uuid.Parse(matchID); err != nil {
		return apperrors.NotFound("Match", matchID)
	}
	_, err := s.matches.GetMatch(ctx, matchID)
	if errors.Is(err, store.ErrNotFound) {
		return apperrors.NotFound("Match", matchID)
	}
	if err != nil {
		return apperrors.NewDatabaseError(err)
	}
	return nil
}

// publish is best effort: the event is already stored and clients resync
// from the list endpoint.
func (s *LiveEventService) publish(ctx context.Context, msg types.FeedMessage) {
	if s.feed == nil {
		return
	}
	msg.Timestamp = time.Now().UTC()
	if err := s.feed.Publish(ctx, msg); err != nil {
		s.log.Warnw("Failed to publish live feed message", "matchID", msg.MatchID, "type", msg.Type, "error", err)
	}
}
