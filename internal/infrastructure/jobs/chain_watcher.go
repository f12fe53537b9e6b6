package jobs

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
	"midatopay.backend/internal/domain/entities"
	domainerrors "midatopay.backend/internal/domain/errors"
	"midatopay.backend/internal/domain/repositories"
	"midatopay.backend/internal/infrastructure/metrics"
	"midatopay.backend/pkg/logger"
)

// maxSeenEvents bounds the in-memory seen set; the durable ledger still dedups after a reset.
const maxSeenEvents = 10000

// ChainReader is the node access the watcher needs
type ChainReader interface {
	BlockNumber(ctx context.Context) (uint64, error)
	FilterLogs(ctx context.Context, contract string, topic0 common.Hash, from, to uint64) ([]entities.ChainEvent, error)
	TransactionReceipt(ctx context.Context, txHash string) (*entities.ChainReceipt, error)
}

// EventProcessor applies one gateway event
type EventProcessor interface {
	ProcessPaymentEvent(ctx context.Context, event entities.ChainEvent, receipt *entities.ChainReceipt) (*entities.Transaction, error)
}

// ChainWatcherConfig tunes the polling window
type ChainWatcherConfig struct {
	GatewayAddress string
	Topic          common.Hash
	Interval       time.Duration
	LookbackBlocks uint64
	MaxBlockRange  uint64
}

// ChainWatcherJob polls the gateway contract for payment events
type ChainWatcherJob struct {
	chain       ChainReader
	processor   EventProcessor
	ledger      repositories.ProcessedEventRepository
	checkpoints repositories.CheckpointRepository
	metrics     metrics.Recorder
	cfg         ChainWatcherConfig

	pollMu sync.Mutex
	seen   map[string]struct{}

	stop     chan struct{}
	stopOnce sync.Once
	cancelMu sync.Mutex
	cancel   context.CancelFunc
}

func NewChainWatcherJob(
	chain ChainReader,
	processor EventProcessor,
	ledger repositories.ProcessedEventRepository,
	checkpoints repositories.CheckpointRepository,
	recorder metrics.Recorder,
	cfg ChainWatcherConfig,
) *ChainWatcherJob {
	if cfg.Interval <= 0 {
		cfg.Interval = 10 * time.Second
	}
	if recorder == nil {
		recorder = metrics.NoopRecorder{}
	}
	return &ChainWatcherJob{
		chain:       chain,
		processor:   processor,
		ledger:      ledger,
		checkpoints: checkpoints,
		metrics:     recorder,
		cfg:         cfg,
		seen:        make(map[string]struct{}),
		stop:        make(chan struct{}),
	}
}

// Start polls immediately and then on every tick until ctx is done or Stop is called.
// Poll errors are logged and the loop carries on with the next tick.
func (j *ChainWatcherJob) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(logger.WithComponent(ctx, "watcher"))
	defer cancel()
	j.cancelMu.Lock()
	j.cancel = cancel
	j.cancelMu.Unlock()

	logger.Info(ctx, "Starting chain watcher",
		zap.String("gateway", j.cfg.GatewayAddress),
		zap.Duration("interval", j.cfg.Interval),
	)

	ticker := time.NewTicker(j.cfg.Interval)
	defer ticker.Stop()

	j.tick(ctx)
	for {
		select {
		case <-ctx.Done():
			logger.Info(ctx, "Chain watcher stopped")
			return
		case <-j.stop:
			logger.Info(ctx, "Chain watcher stopped")
			return
		case <-ticker.C:
			j.tick(ctx)
		}
	}
}

// Stop ends the loop and cancels in-flight node calls
func (j *ChainWatcherJob) Stop() {
	j.stopOnce.Do(func() { close(j.stop) })
	j.cancelMu.Lock()
	if j.cancel != nil {
		j.cancel()
	}
	j.cancelMu.Unlock()
}

func (j *ChainWatcherJob) tick(ctx context.Context) {
	started := time.Now()
	err := j.PollForNewEvents(ctx)
	j.metrics.ObserveLatency(metrics.WatcherPollLatency, time.Since(started), map[string]string{"component": "watcher"})
	if err != nil && ctx.Err() == nil {
		logger.Warn(ctx, "Chain watcher poll failed", zap.Error(err))
	}
}

// PollForNewEvents scans the blocks after the checkpoint and hands unseen
// events to the processor. The checkpoint only advances past blocks whose
// events were all handled.
func (j *ChainWatcherJob) PollForNewEvents(ctx context.Context) error {
	j.pollMu.Lock()
	defer j.pollMu.Unlock()

	latest, err := j.chain.BlockNumber(ctx)
	if err != nil {
		j.count(metrics.WatcherRPCErrors, "block_number")
		return err
	}
	j.count(metrics.WatcherPolls, "ok")

	from, err := j.startBlock(ctx, latest)
	if err != nil {
		j.count(metrics.WatcherStorageErrors, "checkpoint")
		return err
	}
	if from > latest {
		return nil
	}
	to := latest
	if j.cfg.MaxBlockRange > 0 && to-from+1 > j.cfg.MaxBlockRange {
		to = from + j.cfg.MaxBlockRange - 1
	}

	events, err := j.chain.FilterLogs(ctx, j.cfg.GatewayAddress, j.cfg.Topic, from, to)
	if err != nil {
		j.count(metrics.WatcherRPCErrors, "filter_logs")
		return err
	}

	for _, ev := range events {
		if err := j.handle(ctx, ev); err != nil {
			j.saveBefore(ctx, ev.BlockNumber, from)
			return fmt.Errorf("event %s: %w", ev.ID(), err)
		}
	}

	if err := j.checkpoints.Save(ctx, j.cfg.GatewayAddress, to); err != nil {
		j.count(metrics.WatcherStorageErrors, "checkpoint")
		return err
	}
	if len(events) > 0 {
		logger.Debug(ctx, "Chain watcher window processed",
			zap.Uint64("from", from),
			zap.Uint64("to", to),
			zap.Int("events", len(events)),
		)
	}
	return nil
}

func (j *ChainWatcherJob) startBlock(ctx context.Context, latest uint64) (uint64, error) {
	cp, err := j.checkpoints.Get(ctx, j.cfg.GatewayAddress)
	if errors.Is(err, domainerrors.ErrNotFound) {
		if latest < j.cfg.LookbackBlocks {
			return 0, nil
		}
		return latest - j.cfg.LookbackBlocks, nil
	}
	if err != nil {
		return 0, err
	}
	return cp.LastProcessedBlock + 1, nil
}

func (j *ChainWatcherJob) handle(ctx context.Context, ev entities.ChainEvent) error {
	id := ev.ID()
	if _, ok := j.seen[id]; ok {
		return nil
	}
	j.count(metrics.WatcherEventsSeen, "")

	done, err := j.ledger.Exists(ctx, ev.TransactionHash, ev.EventIndex)
	if err != nil {
		j.count(metrics.WatcherStorageErrors, "ledger")
		return err
	}
	if done {
		j.markSeen(id)
		return nil
	}

	receipt, err := j.chain.TransactionReceipt(ctx, ev.TransactionHash)
	if err != nil {
		j.count(metrics.WatcherRPCErrors, "receipt")
		return err
	}

	_, err = j.processor.ProcessPaymentEvent(ctx, ev, receipt)
	switch {
	case err == nil:
		j.count(metrics.WatcherEventsApplied, "ok")
	case errors.Is(err, domainerrors.ErrEventDecode),
		errors.Is(err, domainerrors.ErrEventSourceMismatch),
		errors.Is(err, domainerrors.ErrTransactionFailed):
		// not retryable
		logger.Warn(ctx, "Skipping payment event", zap.String("event", id), zap.Error(err))
		j.count(metrics.WatcherEventsSkipped, "invalid")
	default:
		j.count(metrics.WatcherStorageErrors, "reconcile")
		return err
	}
	j.markSeen(id)
	return nil
}

func (j *ChainWatcherJob) markSeen(id string) {
	if len(j.seen) >= maxSeenEvents {
		j.seen = make(map[string]struct{})
	}
	j.seen[id] = struct{}{}
}

// saveBefore keeps the progress made on blocks preceding a failing one.
func (j *ChainWatcherJob) saveBefore(ctx context.Context, failedBlock, from uint64) {
	if failedBlock <= from {
		return
	}
	if err := j.checkpoints.Save(ctx, j.cfg.GatewayAddress, failedBlock-1); err != nil {
		logger.Warn(ctx, "Failed to save partial checkpoint", zap.Error(err))
	}
}

func (j *ChainWatcherJob) count(name, status string) {
	j.metrics.IncCounter(name, map[string]string{"component": "watcher", "status": status})
}
