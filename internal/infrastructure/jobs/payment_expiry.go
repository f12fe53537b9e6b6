package jobs

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"midatopay.backend/internal/infrastructure/metrics"
	"midatopay.backend/pkg/logger"
)

const expiryBatchSize = 100

// ExpiryRepository finds and fails stale pending transactions
type ExpiryRepository interface {
	GetExpiredPendingIDs(ctx context.Context, cutoff time.Time, limit int) ([]string, error)
	MarkFailed(ctx context.Context, id string) (bool, error)
}

// PaymentExpiryJob fails PENDING transactions whose request expired more than grace ago
type PaymentExpiryJob struct {
	repo     ExpiryRepository
	grace    time.Duration
	interval time.Duration
	metrics  metrics.Recorder
	now      func() time.Time
	stop     chan struct{}
	stopOnce sync.Once
}

func NewPaymentExpiryJob(repo ExpiryRepository, grace time.Duration, recorder metrics.Recorder) *PaymentExpiryJob {
	if recorder == nil {
		recorder = metrics.NoopRecorder{}
	}
	return &PaymentExpiryJob{
		repo:     repo,
		grace:    grace,
		interval: 30 * time.Second,
		metrics:  recorder,
		now:      time.Now,
		stop:     make(chan struct{}),
	}
}

func (j *PaymentExpiryJob) Start(ctx context.Context) {
	ctx = logger.WithComponent(ctx, "expiry")
	logger.Info(ctx, "Starting payment expiry job", zap.Duration("grace", j.grace))

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info(ctx, "Payment expiry job stopped (context cancelled)")
			return
		case <-j.stop:
			logger.Info(ctx, "Payment expiry job stopped")
			return
		case <-ticker.C:
			j.processExpired(ctx)
		}
	}
}

func (j *PaymentExpiryJob) Stop() {
	j.stopOnce.Do(func() { close(j.stop) })
}

func (j *PaymentExpiryJob) processExpired(ctx context.Context) {
	j.metrics.IncCounter(metrics.ExpirySweeps, map[string]string{"component": "expiry"})

	cutoff := j.now().Add(-j.grace)
	ids, err := j.repo.GetExpiredPendingIDs(ctx, cutoff, expiryBatchSize)
	if err != nil {
		logger.Error(ctx, "Error fetching expired payments", zap.Error(err))
		return
	}
	if len(ids) == 0 {
		return
	}

	failed := 0
	for _, id := range ids {
		changed, err := j.repo.MarkFailed(ctx, id)
		if err != nil {
			logger.Error(logger.WithPaymentID(ctx, id), "Error failing expired payment", zap.Error(err))
			continue
		}
		if changed {
			failed++
			j.metrics.IncCounter(metrics.PaymentsExpired, map[string]string{"component": "expiry"})
		}
	}
	logger.Info(ctx, "Expired pending payments", zap.Int("candidates", len(ids)), zap.Int("failed", failed))
}
