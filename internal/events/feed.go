// Package events carries live match feed messages between API instances and
// spectator sockets over redis pub/sub.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/matchfund/matchfund-backend/logger"
	"github.com/matchfund/matchfund-backend/types"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Config holds configuration for Feed.
type Config struct {
	PublishTimeout   time.Duration
	SubscribeTimeout time.Duration
	EventBufferSize  int
}

func DefaultConfig() Config {
	return Config{
		PublishTimeout:   5 * time.Second,
		SubscribeTimeout: 10 * time.Second,
		EventBufferSize:  100,
	}
}

// Channel is the redis channel a match's feed is published on.
func Channel(matchID string) string {
	return "match:" + matchID
}

type metrics struct {
	publishLatency    prometheus.Histogram
	errorCount        *prometheus.CounterVec
	messageCount      *prometheus.CounterVec
	activeSubscribers prometheus.Gauge
}

var (
	metricsInstance *metrics
	metricsOnce     sync.Once
	defaultRegistry = prometheus.DefaultRegisterer
)

func newMetrics() *metrics {
	metricsOnce.Do(func() {
		metricsInstance = &metrics{
			publishLatency: promauto.With(defaultRegistry).NewHistogram(prometheus.HistogramOpts{
				Name:    "live_feed_publish_duration_seconds",
				Help:    "Time taken to publish live feed messages",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
			}),
			errorCount: promauto.With(defaultRegistry).NewCounterVec(prometheus.CounterOpts{
				Name: "live_feed_errors_total",
				Help: "Total number of live feed errors",
			}, []string{"operation", "type"}),
			messageCount: promauto.With(defaultRegistry).NewCounterVec(prometheus.CounterOpts{
				Name: "live_feed_messages_total",
				Help: "Live feed messages by operation and type",
			}, []string{"operation", "type"}),
			activeSubscribers: promauto.With(defaultRegistry).NewGauge(prometheus.GaugeOpts{
				Name: "live_feed_active_subscribers",
				Help: "Current number of live feed subscribers",
			}),
		}
	})
	return metricsInstance
}

func resetMetricsForTesting() {
	defaultRegistry = prometheus.NewRegistry()
	metricsInstance = nil
	metricsOnce = sync.Once{}
}

// Feed publishes and fans out live match messages.
type Feed struct {
	rdb     *redis.Client
	log     *zap.SugaredLogger
	metrics *metrics
	config  Config
	mu      sync.RWMutex
	subs    map[string]*subscription
	wg      sync.WaitGroup
}

type subscription struct {
	pubsub    *redis.PubSub
	cancelCtx context.CancelFunc
	closeOnce sync.Once
}

func NewFeed(rdb *redis.Client, cfg ...Config) *Feed {
	config := DefaultConfig()
	if len(cfg) > 0 {
		config = cfg[0]
	}
	if config.EventBufferSize <= 0 {
		config.EventBufferSize = DefaultConfig().EventBufferSize
	}

	return &Feed{
		rdb:     rdb,
		log:     logger.GetLogger().Named("live_feed"),
		metrics: newMetrics(),
		config:  config,
		subs:    make(map[string]*subscription),
	}
}

// Publish sends msg to every subscriber of its match.
func (f *Feed) Publish(ctx context.Context, msg types.FeedMessage) error {
	start := time.Now()
	defer func() {
		f.metrics.publishLatency.Observe(time.Since(start).Seconds())
	}()

	if msg.MatchID == "" {
		f.metrics.errorCount.WithLabelValues("publish", "validation").Inc()
		return fmt.Errorf("feed message has no match id")
	}
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now().UTC()
	}

	data, err := json.Marshal(msg)
	if err != nil {
		f.metrics.errorCount.WithLabelValues("publish", "marshal").Inc()
		return fmt.Errorf("marshal feed message: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, f.config.PublishTimeout)
	defer cancel()

	if err := f.rdb.Publish(ctx, Channel(msg.MatchID), data).Err(); err != nil {
		f.metrics.errorCount.WithLabelValues("publish", "redis").Inc()
		return fmt.Errorf("redis publish: %w", err)
	}

	f.metrics.messageCount.WithLabelValues("publish", string(msg.Type)).Inc()
	return nil
}

func subKey(matchID, subscriberID string) string {
	return matchID + ":" + subscriberID
}

// Subscribe opens a buffered stream of a match's messages. The channel is
// closed on Unsubscribe, Shutdown or when redis drops the subscription.
func (f *Feed) Subscribe(ctx context.Context, matchID, subscriberID string) (<-chan types.FeedMessage, error) {
	key := subKey(matchID, subscriberID)

	f.mu.Lock()
	if _, exists := f.subs[key]; exists {
		f.mu.Unlock()
		f.metrics.errorCount.WithLabelValues("subscribe", "duplicate").Inc()
		return nil, fmt.Errorf("subscription already exists for match %s and subscriber %s", matchID, subscriberID)
	}

	pubsub := f.rdb.Subscribe(ctx, Channel(matchID))
	subCtx, cancel := context.WithCancel(context.Background())
	sub := &subscription{pubsub: pubsub, cancelCtx: cancel}
	f.subs[key] = sub
	f.mu.Unlock()

	// Receive confirms the SUBSCRIBE round trip before handing out the channel.
	recvCtx, recvCancel := context.WithTimeout(ctx, f.config.SubscribeTimeout)
	defer recvCancel()
	if _, err := pubsub.Receive(recvCtx); err != nil {
		f.dropSubscription(key, sub)
		f.metrics.errorCount.WithLabelValues("subscribe", "redis").Inc()
		return nil, fmt.Errorf("redis subscribe: %w", err)
	}

	f.metrics.activeSubscribers.Inc()
	out := make(chan types.FeedMessage, f.config.EventBufferSize)

	f.wg.Add(1)
	go f.processMessages(subCtx, sub, out, key)

	return out, nil
}

func (f *Feed) processMessages(ctx context.Context, sub *subscription, out chan<- types.FeedMessage, key string) {
	defer f.wg.Done()
	defer func() {
		sub.closeOnce.Do(func() {
			if err := sub.pubsub.Close(); err != nil {
				f.log.Errorw("Error closing pubsub", "error", err, "subKey", key)
			}
		})
		close(out)
		f.metrics.activeSubscribers.Dec()
		f.log.Debugw("Subscription closed", "subKey", key)
	}()

	ch := sub.pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}

			var fm types.FeedMessage
			if err := json.Unmarshal([]byte(msg.Payload), &fm); err != nil {
				f.metrics.errorCount.WithLabelValues("process", "unmarshal").Inc()
				f.log.Errorw("Failed to unmarshal feed message", "error", err, "subKey", key)
				continue
			}

			select {
			case out <- fm:
				f.metrics.messageCount.WithLabelValues("receive", string(fm.Type)).Inc()
			default:
				f.metrics.errorCount.WithLabelValues("process", "channel_full").Inc()
				f.log.Warnw("Dropped feed message due to full channel", "subKey", key, "type", fm.Type)
			}
		}
	}
}

func (f *Feed) dropSubscription(key string, sub *subscription) {
	f.mu.Lock()
	delete(f.subs, key)
	f.mu.Unlock()

	sub.cancelCtx()
	sub.closeOnce.Do(func() {
		if err := sub.pubsub.Close(); err != nil {
			f.log.Errorw("Error closing pubsub", "error", err, "subKey", key)
		}
	})
}

func (f *Feed) Unsubscribe(matchID, subscriberID string) error {
	key := subKey(matchID, subscriberID)

	f.mu.RLock()
	sub, exists := f.subs[key]
	f.mu.RUnlock()
	if !exists {
		return fmt.Errorf("no subscription found for match %s and subscriber %s", matchID, subscriberID)
	}

	f.dropSubscription(key, sub)
	return nil
}

// ActiveSubscriptions is the number of open spectator subscriptions.
func (f *Feed) ActiveSubscriptions() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.subs)
}

// Shutdown cancels every subscription and waits for their goroutines.
func (f *Feed) Shutdown(ctx context.Context) error {
	f.mu.Lock()
	local := f.subs
	f.subs = make(map[string]*subscription)
	f.mu.Unlock()

	f.log.Infow("Shutting down live feed", "subscriptions", len(local))
	for _, sub := range local {
		sub.cancelCtx()
	}

	done := make(chan struct{})
	go func() {
		f.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		f.log.Info("Live feed shutdown complete")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
