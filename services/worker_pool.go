// Package services holds the application's business logic.
package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/matchfund/matchfund-backend/config"
	"github.com/matchfund/matchfund-backend/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

const defaultJobTimeout = 30 * time.Second

// Job is one unit of background work: a push fan-out or a receipt email.
type Job struct {
	// Kind labels the job in metrics, e.g. "notification" or "receipt".
	Kind    string
	Name    string
	Timeout time.Duration
	Execute func(ctx context.Context) error
}

// JobSubmitter is what services need from the pool.
type JobSubmitter interface {
	Submit(job Job) bool
}

// WorkerPool runs jobs on a bounded set of goroutines. Submit never blocks;
// a full queue drops the job.
type WorkerPool struct {
	jobQueue chan Job
	wg       sync.WaitGroup
	ctx      context.Context
	cancel   context.CancelFunc
	log      *zap.SugaredLogger
	metrics  *workerPoolMetrics
	config   config.WorkerPoolConfig
	mu       sync.RWMutex
	running  bool
	closed   bool
}

type workerPoolMetrics struct {
	queueDepth    prometheus.Gauge
	activeWorkers prometheus.Gauge
	completedJobs *prometheus.CounterVec
	droppedJobs   *prometheus.CounterVec
	errorCount    *prometheus.CounterVec
	jobDuration   *prometheus.HistogramVec
}

var (
	wpMetricsInstance *workerPoolMetrics
	wpMetricsOnce     sync.Once
	wpDefaultRegistry = prometheus.DefaultRegisterer
)

func newWorkerPoolMetrics() *workerPoolMetrics {
	wpMetricsOnce.Do(func() {
		factory := promauto.With(wpDefaultRegistry)
		wpMetricsInstance = &workerPoolMetrics{
			queueDepth: factory.NewGauge(prometheus.GaugeOpts{
				Name: "background_worker_pool_queue_depth",
				Help: "Current number of jobs waiting in queue",
			}),
			activeWorkers: factory.NewGauge(prometheus.GaugeOpts{
				Name: "background_worker_pool_active_workers",
				Help: "Current number of workers processing jobs",
			}),
			completedJobs: factory.NewCounterVec(prometheus.CounterOpts{
				Name: "background_worker_pool_completed_jobs_total",
				Help: "Total number of finished jobs",
			}, []string{"kind"}),
			droppedJobs: factory.NewCounterVec(prometheus.CounterOpts{
				Name: "background_worker_pool_dropped_jobs_total",
				Help: "Total number of jobs dropped because the queue was full or closed",
			}, []string{"kind"}),
			errorCount: factory.NewCounterVec(prometheus.CounterOpts{
				Name: "background_worker_pool_errors_total",
				Help: "Total number of failed or panicking jobs",
			}, []string{"kind"}),
			jobDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
				Name:    "background_worker_pool_job_duration_seconds",
				Help:    "Time taken to execute jobs",
				Buckets: []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10},
			}, []string{"kind"}),
		}
	})
	return wpMetricsInstance
}

// resetWorkerPoolMetricsForTesting swaps in a fresh registry. Tests only.
func resetWorkerPoolMetricsForTesting() {
	wpDefaultRegistry = prometheus.NewRegistry()
	wpMetricsInstance = nil
	wpMetricsOnce = sync.Once{}
}

func NewWorkerPool(cfg config.WorkerPoolConfig) *WorkerPool {
	if cfg.MaxWorkers <= 0 {
		cfg.MaxWorkers = 1
	}
	if cfg.QueueSize < 0 {
		cfg.QueueSize = 0
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &WorkerPool{
		jobQueue: make(chan Job, cfg.QueueSize),
		ctx:      ctx,
		cancel:   cancel,
		log:      logger.GetLogger().Named("worker_pool"),
		metrics:  newWorkerPoolMetrics(),
		config:   cfg,
	}
}

// Start launches the workers. Extra calls are ignored.
func (wp *WorkerPool) Start() {
	wp.mu.Lock()
	defer wp.mu.Unlock()

	if wp.running || wp.closed {
		wp.log.Warn("Worker pool already started")
		return
	}
	wp.running = true

	wp.log.Infow("Starting worker pool",
		"maxWorkers", wp.config.MaxWorkers,
		"queueSize", wp.config.QueueSize)

	for i := 0; i < wp.config.MaxWorkers; i++ {
		wp.wg.Add(1)
		go wp.worker(i)
	}
}

// worker drains the queue until it is closed. Jobs still queued at shutdown
// run with the pool context, which is cancelled if shutdown times out.
func (wp *WorkerPool) worker(id int) {
	defer wp.wg.Done()
	for job := range wp.jobQueue {
		wp.executeJob(id, job)
	}
	wp.log.Debugw("Worker stopped", "workerId", id)
}

func (wp *WorkerPool) executeJob(workerID int, job Job) {
	wp.metrics.activeWorkers.Inc()
	wp.metrics.queueDepth.Dec()
	defer wp.metrics.activeWorkers.Dec()

	timeout := job.Timeout
	if timeout <= 0 {
		timeout = defaultJobTimeout
	}
	jobCtx, cancel := context.WithTimeout(wp.ctx, timeout)
	defer cancel()

	start := time.Now()
	err := runJob(jobCtx, job)
	duration := time.Since(start)

	if err != nil {
		wp.log.Errorw("Job execution failed",
			"job", job.Name,
			"kind", job.Kind,
			"workerId", workerID,
			"error", err,
			"duration", duration)
		wp.metrics.errorCount.WithLabelValues(job.Kind).Inc()
	} else {
		wp.log.Debugw("Job completed",
			"job", job.Name,
			"kind", job.Kind,
			"workerId", workerID,
			"duration", duration)
	}

	wp.metrics.jobDuration.WithLabelValues(job.Kind).Observe(duration.Seconds())
	wp.metrics.completedJobs.WithLabelValues(job.Kind).Inc()
}

func runJob(ctx context.Context, job Job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("job panicked: %v", r)
		}
	}()
	return job.Execute(ctx)
}

// Submit queues job and reports whether it was accepted. It is safe for
// concurrent use and after Shutdown, where it always returns false.
func (wp *WorkerPool) Submit(job Job) bool {
	wp.mu.RLock()
	defer wp.mu.RUnlock()

	if wp.closed {
		wp.metrics.droppedJobs.WithLabelValues(job.Kind).Inc()
		wp.log.Warnw("Job dropped - pool shut down", "job", job.Name)
		return false
	}

	select {
	case wp.jobQueue <- job:
		wp.metrics.queueDepth.Inc()
		return true
	default:
		wp.metrics.droppedJobs.WithLabelValues(job.Kind).Inc()
		wp.log.Warnw("Job dropped - queue full",
			"job", job.Name,
			"kind", job.Kind,
			"queueSize", wp.config.QueueSize)
		return false
	}
}

// Shutdown stops accepting jobs and waits for queued and in-flight ones.
// When ctx expires first, running jobs are cancelled and ctx.Err() returned.
func (wp *WorkerPool) Shutdown(ctx context.Context) error {
	wp.mu.Lock()
	if wp.closed {
		wp.mu.Unlock()
		return nil
	}
	wp.closed = true
	wasRunning := wp.running
	wp.running = false
	close(wp.jobQueue)
	wp.mu.Unlock()

	if !wasRunning {
		wp.cancel()
		return nil
	}

	wp.log.Info("Initiating worker pool shutdown...")

	done := make(chan struct{})
	go func() {
		wp.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		wp.cancel()
		wp.log.Info("Worker pool shutdown complete")
		return nil
	case <-ctx.Done():
		wp.cancel()
		wp.log.Warn("Worker pool shutdown timed out - cancelling running jobs")
		return ctx.Err()
	}
}

func (wp *WorkerPool) QueueDepth() int {
	return len(wp.jobQueue)
}

func (wp *WorkerPool) IsRunning() bool {
	wp.mu.RLock()
	defer wp.mu.RUnlock()
	return wp.running
}
