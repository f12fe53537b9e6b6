package usecases_test

import (
	"context"
	"math/big"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"midatopay.backend/internal/domain/entities"
)

// Mock UnitOfWork
type MockUnitOfWork struct {
	mock.Mock
}

func (m *MockUnitOfWork) Do(ctx context.Context, f func(context.Context) error) error {
	m.Called(ctx, f)
	return f(ctx)
}

func (m *MockUnitOfWork) WithLock(ctx context.Context) context.Context {
	m.Called(ctx)
	return ctx
}

// Mock PaymentRequestRepository
type MockPaymentRequestRepository struct {
	mock.Mock
}

func (m *MockPaymentRequestRepository) Create(ctx context.Context, request *entities.PaymentRequest) error {
	return m.Called(ctx, request).Error(0)
}

func (m *MockPaymentRequestRepository) GetByPaymentID(ctx context.Context, paymentID string) (*entities.PaymentRequest, error) {
	args := m.Called(ctx, paymentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.PaymentRequest), args.Error(1)
}

func (m *MockPaymentRequestRepository) ListByMerchant(ctx context.Context, merchantID uuid.UUID, limit, offset int) ([]*entities.PaymentWithStatus, int64, error) {
	args := m.Called(ctx, merchantID, limit, offset)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*entities.PaymentWithStatus), args.Get(1).(int64), args.Error(2)
}

// Mock TransactionRepository
type MockTransactionRepository struct {
	mock.Mock
}

func (m *MockTransactionRepository) Create(ctx context.Context, tx *entities.Transaction) error {
	return m.Called(ctx, tx).Error(0)
}

func (m *MockTransactionRepository) GetByID(ctx context.Context, id string) (*entities.Transaction, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) MarkConfirmed(ctx context.Context, id, txHash string, confirmedAt time.Time) (bool, error) {
	args := m.Called(ctx, id, txHash, confirmedAt)
	return args.Bool(0), args.Error(1)
}

func (m *MockTransactionRepository) MarkFailed(ctx context.Context, id string) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockTransactionRepository) GetExpiredPendingIDs(ctx context.Context, cutoff time.Time, limit int) ([]string, error) {
	args := m.Called(ctx, cutoff, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

// Mock ProcessedEventRepository
type MockProcessedEventRepository struct {
	mock.Mock
}

func (m *MockProcessedEventRepository) Record(ctx context.Context, event *entities.ProcessedEvent) (bool, error) {
	args := m.Called(ctx, event)
	return args.Bool(0), args.Error(1)
}

func (m *MockProcessedEventRepository) Exists(ctx context.Context, txHash string, eventIndex uint) (bool, error) {
	args := m.Called(ctx, txHash, eventIndex)
	return args.Bool(0), args.Error(1)
}

func (m *MockProcessedEventRepository) ListByPaymentID(ctx context.Context, paymentID string) ([]*entities.ProcessedEvent, error) {
	args := m.Called(ctx, paymentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.ProcessedEvent), args.Error(1)
}

// Mock WalletRepository
type MockWalletRepository struct {
	mock.Mock
}

func (m *MockWalletRepository) Upsert(ctx context.Context, wallet *entities.MerchantWallet) error {
	return m.Called(ctx, wallet).Error(0)
}

func (m *MockWalletRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*entities.MerchantWallet, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.MerchantWallet), args.Error(1)
}

func (m *MockWalletRepository) GetByEmail(ctx context.Context, email string) (*entities.MerchantWallet, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.MerchantWallet), args.Error(1)
}

func (m *MockWalletRepository) DeleteByEmail(ctx context.Context, email string) error {
	return m.Called(ctx, email).Error(0)
}

// Mock ReceiptWaiter
type MockReceiptWaiter struct {
	mock.Mock
}

func (m *MockReceiptWaiter) WaitForReceipt(ctx context.Context, txHash string) (*entities.ChainReceipt, error) {
	args := m.Called(ctx, txHash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.ChainReceipt), args.Error(1)
}

// Mock PaymentNotifier
type MockPaymentNotifier struct {
	mock.Mock
}

func (m *MockPaymentNotifier) NotifyPaymentConfirmed(ctx context.Context, payload entities.PaymentConfirmedPayload) {
	m.Called(ctx, payload)
}

// Mock Broadcaster
type MockBroadcaster struct {
	mock.Mock
}

func (m *MockBroadcaster) Broadcast(message []byte) int {
	return m.Called(message).Int(0)
}

// Mock Publisher
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, channel string, message interface{}) error {
	return m.Called(ctx, channel, message).Error(0)
}

// Mock MerchantAlerter
type MockMerchantAlerter struct {
	mock.Mock
}

func (m *MockMerchantAlerter) AlertPaymentConfirmed(ctx context.Context, payload entities.PaymentConfirmedPayload) error {
	return m.Called(ctx, payload).Error(0)
}

// Mock PriceReader
type MockPriceReader struct {
	mock.Mock
}

func (m *MockPriceReader) GetPrice(ctx context.Context, token string) (*big.Int, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*big.Int), args.Error(1)
}

// Mock MerchantWallets
type MockMerchantWallets struct {
	mock.Mock
}

func (m *MockMerchantWallets) GenerateWallet(ctx context.Context, email, password string) (*entities.MerchantWallet, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.MerchantWallet), args.Error(1)
}

func (m *MockMerchantWallets) SaveWallet(ctx context.Context, wallet *entities.MerchantWallet) error {
	return m.Called(ctx, wallet).Error(0)
}

func (m *MockMerchantWallets) LoadWallet(ctx context.Context, email string) (*entities.MerchantWallet, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.MerchantWallet), args.Error(1)
}

func (m *MockMerchantWallets) VerifyCredentials(ctx context.Context, email, password string) bool {
	return m.Called(ctx, email, password).Bool(0)
}
