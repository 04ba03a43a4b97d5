package services

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/matchfund/matchfund-backend/logger"
	"github.com/matchfund/matchfund-backend/types"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	dbPingAttempts     = 3
	poolUsageThreshold = 0.8
)

// Pinger is the part of the database pool the health check needs.
// *pgxpool.Pool and pgxmock pools both satisfy it.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthService struct {
	dbPool            Pinger
	redisClient       *redis.Client
	version           string
	log               *zap.SugaredLogger
	startTime         time.Time
	retryDelay        time.Duration
	activeConnections func() int
	poolStat          func() *pgxpool.Stat
}

func NewHealthService(dbPool Pinger, redisClient *redis.Client, version string) *HealthService {
	return &HealthService{
		dbPool:      dbPool,
		redisClient: redisClient,
		version:     version,
		log:         logger.GetLogger().Named("health"),
		startTime:   time.Now(),
		retryDelay:  200 * time.Millisecond,
	}
}

// SetActiveConnectionsGetter reports open live feed subscriptions in the
// health payload.
func (h *HealthService) SetActiveConnectionsGetter(getter func() int) {
	h.activeConnections = getter
}

// SetPoolStat enables the pool saturation check.
func (h *HealthService) SetPoolStat(stat func() *pgxpool.Stat) {
	h.poolStat = stat
}

func (h *HealthService) CheckHealth(ctx context.Context) types.HealthCheck {
	components := make(map[string]types.HealthComponent)
	overallStatus := types.HealthStatusUp

	merge := func(name string, c types.HealthComponent) {
		components[name] = c
		switch {
		case c.Status == types.HealthStatusDown:
			overallStatus = types.HealthStatusDown
		case c.Status == types.HealthStatusDegraded && overallStatus != types.HealthStatusDown:
			overallStatus = types.HealthStatusDegraded
		}
	}

	merge("database", h.checkDatabase(ctx))
	merge("redis", h.checkRedis(ctx))

	if h.activeConnections != nil {
		components["live_feed"] = types.HealthComponent{
			Status:  types.HealthStatusUp,
			Details: fmt.Sprintf("%d active subscriptions", h.activeConnections()),
		}
	}

	return types.HealthCheck{
		Service:    "matchfund",
		Status:     overallStatus,
		Components: components,
		Version:    h.version,
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
		Uptime:     time.Since(h.startTime).Round(time.Second).String(),
	}
}

func (h *HealthService) checkDatabase(ctx context.Context) types.HealthComponent {
	if h.dbPool == nil {
		return types.HealthComponent{Status: types.HealthStatusDown, Details: "Database not configured"}
	}

	var (
		err   error
		start time.Time
	)
	for attempt := 1; attempt <= dbPingAttempts; attempt++ {
		start = time.Now()
		if err = h.dbPool.Ping(ctx); err == nil {
			break
		}
		h.log.Warnw("Database ping failed", "attempt", attempt, "error", err)
		if attempt < dbPingAttempts && h.retryDelay > 0 {
			select {
			case <-ctx.Done():
				attempt = dbPingAttempts
			case <-time.After(h.retryDelay):
			}
		}
	}
	if err != nil {
		h.log.Errorw("Database health check failed", "error", err)
		return types.HealthComponent{
			Status:  types.HealthStatusDown,
			Details: "Database connection failed after multiple attempts",
		}
	}
	latency := time.Since(start).Milliseconds()

	if h.poolStat != nil {
		stat := h.poolStat()
		if stat != nil && stat.MaxConns() > 0 &&
			float64(stat.AcquiredConns())/float64(stat.MaxConns()) > poolUsageThreshold {
			return types.HealthComponent{
				Status:    types.HealthStatusDegraded,
				Details:   "Connection pool near capacity",
				LatencyMs: latency,
			}
		}
	}

	return types.HealthComponent{Status: types.HealthStatusUp, LatencyMs: latency}
}

func (h *HealthService) checkRedis(ctx context.Context) types.HealthComponent {
	if h.redisClient == nil {
		return types.HealthComponent{Status: types.HealthStatusDown, Details: "Redis not configured"}
	}
	start := time.Now()
	if err := h.redisClient.Ping(ctx).Err(); err != nil {
		h.log.Errorw("Redis health check failed", "error", err)
		return types.HealthComponent{
			Status:  types.HealthStatusDown,
			Details: "Redis connection failed",
		}
	}
	return types.HealthComponent{Status: types.HealthStatusUp, LatencyMs: time.Since(start).Milliseconds()}
}
