package usecases

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
	"go.uber.org/zap"
	"midatopay.backend/internal/domain/entities"
	domainerrors "midatopay.backend/internal/domain/errors"
	"midatopay.backend/internal/domain/repositories"
	"midatopay.backend/pkg/crypto"
	"midatopay.backend/pkg/logger"
	"midatopay.backend/pkg/utils"
)

var generatePaymentID = crypto.GeneratePaymentID

// PaymentSettings are the deployment values stamped on every request
type PaymentSettings struct {
	Network         string
	ContractAddress string
	FiatCurrency    string
	Expiry          time.Duration
}

// PaymentUsecase builds payment requests and serves their state
type PaymentUsecase struct {
	requestRepo repositories.PaymentRequestRepository
	txRepo      repositories.TransactionRepository
	uow         repositories.UnitOfWork
	rates       *RateTable
	settings    PaymentSettings
	now         func() time.Time
}

// NewPaymentUsecase creates a new payment usecase
func NewPaymentUsecase(
	requestRepo repositories.PaymentRequestRepository,
	txRepo repositories.TransactionRepository,
	uow repositories.UnitOfWork,
	rates *RateTable,
	settings PaymentSettings,
) *PaymentUsecase {
	if settings.Expiry <= 0 {
		settings.Expiry = PaymentRequestExpiry
	}
	if settings.FiatCurrency == "" {
		settings.FiatCurrency = DefaultFiatCurrency
	}
	return &PaymentUsecase{
		requestRepo: requestRepo,
		txRepo:      txRepo,
		uow:         uow,
		rates:       rates,
		settings:    settings,
		now:         time.Now,
	}
}

// SetClock replaces the time source
func (u *PaymentUsecase) SetClock(now func() time.Time) {
	u.now = now
}

// CreatePayment sizes fiat in the requested token and returns an unsaved request.
func (u *PaymentUsecase) CreatePayment(merchantID uuid.UUID, merchantAddress string, input *entities.CreatePaymentInput) (*entities.PaymentRequest, error) {
	token, err := u.rates.Lookup(input.Currency)
	if err != nil {
		return nil, err
	}
	amount, err := token.TokenAmount(input.Amount)
	if err != nil {
		return nil, err
	}
	paymentID, err := generatePaymentID()
	if err != nil {
		return nil, err
	}

	now := u.now().UTC()
	req := &entities.PaymentRequest{
		PaymentID:       paymentID,
		MerchantID:      merchantID,
		MerchantAddress: merchantAddress,
		TokenSymbol:     token.Symbol,
		TokenAddress:    token.Address,
		TokenAmount:     amount,
		FiatAmount:      input.Amount,
		FiatCurrency:    u.settings.FiatCurrency,
		Concept:         strings.TrimSpace(input.Concept),
		ExpiresAt:       now.Add(u.settings.Expiry),
		CreatedAt:       now,
	}
	if orderID := strings.TrimSpace(input.OrderID); orderID != "" {
		req.OrderID = null.StringFrom(orderID)
	}
	return req, nil
}

// BuildQRPayload renders the document payer wallets scan.
func (u *PaymentUsecase) BuildQRPayload(req *entities.PaymentRequest) entities.QRPayload {
	return entities.QRPayload{
		Type:            entities.QRPayloadType,
		PaymentID:       req.PaymentID,
		MerchantAddress: req.MerchantAddress,
		TokenAddress:    req.TokenAddress,
		Amount:          req.TokenAmount,
		AmountARS:       req.FiatAmount.String(),
		Currency:        req.TokenSymbol,
		Concept:         req.Concept,
		OrderID:         req.OrderID.String,
		Network:         u.settings.Network,
		ContractAddress: u.settings.ContractAddress,
	}
}

// IssuePayment creates a request and persists it with its PENDING transaction atomically.
func (u *PaymentUsecase) IssuePayment(ctx context.Context, merchantID uuid.UUID, merchantAddress string, input *entities.CreatePaymentInput) (*entities.CreatePaymentResponse, error) {
	req, err := u.CreatePayment(merchantID, merchantAddress, input)
	if err != nil {
		return nil, err
	}
	tx := entities.NewPendingTransaction(req, req.CreatedAt)

	err = u.uow.Do(ctx, func(txCtx context.Context) error {
		if err := u.requestRepo.Create(txCtx, req); err != nil {
			return err
		}
		return u.txRepo.Create(txCtx, tx)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to persist payment request: %w", err)
	}

	qr := u.BuildQRPayload(req)
	qrData, err := json.Marshal(qr)
	if err != nil {
		return nil, err
	}

	logger.Info(logger.WithPaymentID(ctx, req.PaymentID), "Payment request issued",
		zap.String("token", req.TokenSymbol),
		zap.String("tokenAmount", req.TokenAmount),
		zap.String("fiatAmount", req.FiatAmount.String()),
	)

	return &entities.CreatePaymentResponse{
		Payment:     req,
		Transaction: tx,
		QR:          qr,
		QRData:      string(qrData),
	}, nil
}

// GetPayment resolves a scanned payment id to its request and settlement state
func (u *PaymentUsecase) GetPayment(ctx context.Context, paymentID string) (*entities.PaymentWithStatus, error) {
	req, err := u.requestRepo.GetByPaymentID(ctx, paymentID)
	if err != nil {
		return nil, err
	}

	out := &entities.PaymentWithStatus{PaymentRequest: *req, Status: entities.TransactionStatusPending}
	tx, err := u.txRepo.GetByID(ctx, paymentID)
	switch {
	case err == nil:
		out.Status = tx.Status
		out.BlockchainTxHash = tx.BlockchainTxHash
		out.ConfirmedAt = tx.ConfirmedAt
	case errors.Is(err, domainerrors.ErrNotFound):
	default:
		return nil, err
	}
	return out, nil
}

// ListPayments returns a merchant's requests, newest first
func (u *PaymentUsecase) ListPayments(ctx context.Context, merchantID uuid.UUID, page, limit int) ([]*entities.PaymentWithStatus, utils.PaginationMeta, error) {
	p := utils.NewPage(page, limit)
	items, total, err := u.requestRepo.ListByMerchant(ctx, merchantID, p.Limit, p.Offset())
	if err != nil {
		return nil, utils.PaginationMeta{}, err
	}
	return items, p.Meta(total), nil
}

// EnsureTransaction returns the transaction of paymentID, creating the PENDING row when missing.
func (u *PaymentUsecase) EnsureTransaction(ctx context.Context, paymentID string) (*entities.Transaction, error) {
	var out *entities.Transaction
	err := u.uow.Do(ctx, func(txCtx context.Context) error {
		tx, err := u.txRepo.GetByID(u.uow.WithLock(txCtx), paymentID)
		if err == nil {
			out = tx
			return nil
		}
		if !errors.Is(err, domainerrors.ErrNotFound) {
			return err
		}

		req, err := u.requestRepo.GetByPaymentID(txCtx, paymentID)
		if err != nil {
			return err
		}
		out = entities.NewPendingTransaction(req, u.now().UTC())
		return u.txRepo.Create(txCtx, out)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// GetTransaction returns the settlement state of paymentID
func (u *PaymentUsecase) GetTransaction(ctx context.Context, paymentID string) (*entities.Transaction, error) {
	return u.txRepo.GetByID(ctx, paymentID)
}
