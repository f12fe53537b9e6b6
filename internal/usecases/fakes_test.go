package usecases_test

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"midatopay.backend/internal/domain/entities"
	domainerrors "midatopay.backend/internal/domain/errors"
)

// serialUoW runs units of work one at a time, like row locks would.
type serialUoW struct {
	mu sync.Mutex
}

func (u *serialUoW) Do(ctx context.Context, fn func(context.Context) error) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	return fn(ctx)
}

func (u *serialUoW) WithLock(ctx context.Context) context.Context { return ctx }

type memoryRequests struct {
	mu   sync.Mutex
	rows map[string]*entities.PaymentRequest
}

func newMemoryRequests(reqs ...*entities.PaymentRequest) *memoryRequests {
	m := &memoryRequests{rows: map[string]*entities.PaymentRequest{}}
	for _, r := range reqs {
		m.rows[r.PaymentID] = r
	}
	return m
}

func (m *memoryRequests) Create(_ context.Context, r *entities.PaymentRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[r.PaymentID] = r
	return nil
}

func (m *memoryRequests) GetByPaymentID(_ context.Context, id string) (*entities.PaymentRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rows[id]
	if !ok {
		return nil, domainerrors.ErrNotFound
	}
	return r, nil
}

func (m *memoryRequests) ListByMerchant(context.Context, uuid.UUID, int, int) ([]*entities.PaymentWithStatus, int64, error) {
	return nil, 0, nil
}

type memoryTransactions struct {
	mu   sync.Mutex
	rows map[string]entities.Transaction
}

func newMemoryTransactions(txs ...*entities.Transaction) *memoryTransactions {
	m := &memoryTransactions{rows: map[string]entities.Transaction{}}
	for _, tx := range txs {
		m.rows[tx.ID] = *tx
	}
	return m
}

func (m *memoryTransactions) Create(_ context.Context, tx *entities.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[tx.ID]; ok {
		return domainerrors.ErrAlreadyExists
	}
	m.rows[tx.ID] = *tx
	return nil
}

func (m *memoryTransactions) GetByID(_ context.Context, id string) (*entities.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	tx, ok := m.rows[id]
	if !ok {
		return nil, domainerrors.ErrNotFound
	}
	return &tx, nil
}

func (m *memoryTransactions) MarkConfirmed(_ context.Context, id, txHash string, confirmedAt time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	tx, ok := m.rows[id]
	if !ok || tx.Status != entities.TransactionStatusPending {
		return false, nil
	}
	tx.Status = entities.TransactionStatusConfirmed
	tx.BlockchainTxHash.SetValid(txHash)
	tx.ConfirmationCount = 1
	tx.ConfirmedAt.SetValid(confirmedAt)
	m.rows[id] = tx
	return true, nil
}

func (m *memoryTransactions) MarkFailed(_ context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	tx, ok := m.rows[id]
	if !ok || tx.Status != entities.TransactionStatusPending {
		return false, nil
	}
	tx.Status = entities.TransactionStatusFailed
	m.rows[id] = tx
	return true, nil
}

func (m *memoryTransactions) GetExpiredPendingIDs(context.Context, time.Time, int) ([]string, error) {
	return nil, nil
}

type memoryLedger struct {
	mu   sync.Mutex
	rows map[string]entities.ProcessedEvent
}

func newMemoryLedger() *memoryLedger {
	return &memoryLedger{rows: map[string]entities.ProcessedEvent{}}
}

func (m *memoryLedger) Record(_ context.Context, ev *entities.ProcessedEvent) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := entities.EventID(ev.TransactionHash, ev.EventIndex)
	if _, ok := m.rows[id]; ok {
		return false, nil
	}
	m.rows[id] = *ev
	return true, nil
}

func (m *memoryLedger) Exists(_ context.Context, txHash string, idx uint) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.rows[entities.EventID(txHash, idx)]
	return ok, nil
}

func (m *memoryLedger) ListByPaymentID(_ context.Context, paymentID string) ([]*entities.ProcessedEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*entities.ProcessedEvent
	for _, ev := range m.rows {
		if ev.PaymentID == paymentID {
			ev := ev
			out = append(out, &ev)
		}
	}
	return out, nil
}

func (m *memoryLedger) outcome(txHash string, idx uint) entities.ProcessedEventOutcome {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rows[entities.EventID(txHash, idx)].Outcome
}
