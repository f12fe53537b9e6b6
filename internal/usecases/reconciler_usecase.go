package usecases

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"go.uber.org/zap"
	"midatopay.backend/internal/domain/entities"
	domainerrors "midatopay.backend/internal/domain/errors"
	"midatopay.backend/internal/domain/repositories"
	"midatopay.backend/pkg/logger"
)

// ReceiptWaiter blocks until a transaction is mined
type ReceiptWaiter interface {
	WaitForReceipt(ctx context.Context, txHash string) (*entities.ChainReceipt, error)
}

// PaymentEventSchema decodes the gateway's payment event
type PaymentEventSchema interface {
	Matches(ev entities.ChainEvent) bool
	HasPaymentID(ev entities.ChainEvent, paymentID string) bool
	Decode(ev entities.ChainEvent) (*entities.PaymentCompleted, error)
}

// PaymentNotifier pushes confirmations to connected clients
type PaymentNotifier interface {
	NotifyPaymentConfirmed(ctx context.Context, payload entities.PaymentConfirmedPayload)
}

// ReconcilerUsecase confirms stored transactions from gateway events
type ReconcilerUsecase struct {
	requestRepo    repositories.PaymentRequestRepository
	txRepo         repositories.TransactionRepository
	eventRepo      repositories.ProcessedEventRepository
	uow            repositories.UnitOfWork
	receipts       ReceiptWaiter
	schema         PaymentEventSchema
	notifier       PaymentNotifier
	gatewayAddress string
	waitTimeout    time.Duration
	now            func() time.Time
}

// NewReconcilerUsecase creates a new reconciler
func NewReconcilerUsecase(
	requestRepo repositories.PaymentRequestRepository,
	txRepo repositories.TransactionRepository,
	eventRepo repositories.ProcessedEventRepository,
	uow repositories.UnitOfWork,
	receipts ReceiptWaiter,
	schema PaymentEventSchema,
	notifier PaymentNotifier,
	gatewayAddress string,
	waitTimeout time.Duration,
) *ReconcilerUsecase {
	return &ReconcilerUsecase{
		requestRepo:    requestRepo,
		txRepo:         txRepo,
		eventRepo:      eventRepo,
		uow:            uow,
		receipts:       receipts,
		schema:         schema,
		notifier:       notifier,
		gatewayAddress: gatewayAddress,
		waitTimeout:    waitTimeout,
		now:            time.Now,
	}
}

// SetClock replaces the time source
func (u *ReconcilerUsecase) SetClock(now func() time.Time) {
	u.now = now
}

// ProcessPaymentEvent applies a gateway event observed by the watcher.
// Unknown payment ids are recorded and ignored; the returned transaction is nil for them.
func (u *ReconcilerUsecase) ProcessPaymentEvent(ctx context.Context, event entities.ChainEvent, receipt *entities.ChainReceipt) (*entities.Transaction, error) {
	tx, err := u.process(ctx, event, receipt)
	if errors.Is(err, domainerrors.ErrNotFound) {
		return nil, nil
	}
	return tx, err
}

// ProcessPayment waits for txHash to be mined and confirms paymentID from its receipt.
func (u *ReconcilerUsecase) ProcessPayment(ctx context.Context, txHash, paymentID string) (*entities.Transaction, error) {
	ctx = logger.WithPaymentID(ctx, paymentID)

	waitCtx := ctx
	if u.waitTimeout > 0 {
		var cancel context.CancelFunc
		waitCtx, cancel = context.WithTimeout(ctx, u.waitTimeout)
		defer cancel()
	}
	receipt, err := u.receipts.WaitForReceipt(waitCtx, txHash)
	if err != nil {
		return nil, err
	}
	if !receipt.Succeeded() {
		return nil, &domainerrors.TransactionFailedError{TxHash: txHash, Status: receipt.Status}
	}

	for _, ev := range receipt.Events {
		if !u.fromGateway(ev) || !u.schema.Matches(ev) || !u.schema.HasPaymentID(ev, paymentID) {
			continue
		}
		return u.process(ctx, ev, receipt)
	}
	return nil, fmt.Errorf("%w: %s in %s", domainerrors.ErrPaymentEventNotFound, paymentID, txHash)
}

func (u *ReconcilerUsecase) fromGateway(ev entities.ChainEvent) bool {
	return strings.EqualFold(ev.FromAddress, u.gatewayAddress)
}

func (u *ReconcilerUsecase) process(ctx context.Context, event entities.ChainEvent, receipt *entities.ChainReceipt) (*entities.Transaction, error) {
	ctx = logger.WithComponent(ctx, "reconciler")
	if !u.fromGateway(event) {
		return nil, fmt.Errorf("%w: %s", domainerrors.ErrEventSourceMismatch, event.FromAddress)
	}
	if receipt != nil && !receipt.Succeeded() {
		return nil, &domainerrors.TransactionFailedError{TxHash: event.TransactionHash, Status: receipt.Status}
	}

	payment, err := u.schema.Decode(event)
	if err != nil {
		u.recordUndecodable(ctx, event)
		return nil, err
	}
	ctx = logger.WithPaymentID(ctx, payment.PaymentID)

	confirmedAt := u.now().UTC()
	var (
		changed bool
		unknown bool
		request *entities.PaymentRequest
	)
	err = u.uow.Do(ctx, func(txCtx context.Context) error {
		ledger := &entities.ProcessedEvent{
			TransactionHash: event.TransactionHash,
			EventIndex:      event.EventIndex,
			PaymentID:       payment.PaymentID,
			BlockNumber:     event.BlockNumber,
			ProcessedAt:     confirmedAt,
		}

		req, err := u.requestRepo.GetByPaymentID(txCtx, payment.PaymentID)
		if errors.Is(err, domainerrors.ErrNotFound) {
			unknown = true
			ledger.Outcome = entities.OutcomeUnknownPayment
			_, err = u.eventRepo.Record(txCtx, ledger)
			return err
		}
		if err != nil {
			return err
		}
		request = req

		current, err := u.txRepo.GetByID(u.uow.WithLock(txCtx), payment.PaymentID)
		if errors.Is(err, domainerrors.ErrNotFound) {
			current = entities.NewPendingTransaction(req, confirmedAt)
			if err := u.txRepo.Create(txCtx, current); err != nil {
				return err
			}
		} else if err != nil {
			return err
		}

		ledger.Outcome = entities.OutcomeConfirmed
		if current.Status.IsFinal() {
			ledger.Outcome = entities.OutcomeAlreadyFinal
		}
		recorded, err := u.eventRepo.Record(txCtx, ledger)
		if err != nil {
			return err
		}
		if !recorded || current.Status.IsFinal() {
			return nil
		}

		changed, err = u.txRepo.MarkConfirmed(txCtx, payment.PaymentID, event.TransactionHash, confirmedAt)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to reconcile %s: %w", event.ID(), err)
	}
	if unknown {
		logger.Warn(ctx, "Ignoring event for unknown payment", zap.String("event", event.ID()))
		return nil, fmt.Errorf("payment %s: %w", payment.PaymentID, domainerrors.ErrNotFound)
	}

	if changed {
		u.checkSettlement(ctx, request, payment)
		logger.Info(ctx, "Payment confirmed", zap.String("txHash", event.TransactionHash))
		u.notifier.NotifyPaymentConfirmed(ctx, entities.PaymentConfirmedPayload{
			PaymentID:       payment.PaymentID,
			TransactionHash: event.TransactionHash,
			Amount:          payment.Amount.String(),
			MerchantAddress: payment.MerchantAddress,
			Timestamp:       int64(payment.Timestamp),
		})
	} else {
		logger.Debug(ctx, "Event already applied", zap.String("event", event.ID()))
	}

	return u.txRepo.GetByID(ctx, payment.PaymentID)
}

// recordUndecodable keeps a ledger entry so the event is not retried after restarts.
func (u *ReconcilerUsecase) recordUndecodable(ctx context.Context, event entities.ChainEvent) {
	_, err := u.eventRepo.Record(ctx, &entities.ProcessedEvent{
		TransactionHash: event.TransactionHash,
		EventIndex:      event.EventIndex,
		BlockNumber:     event.BlockNumber,
		Outcome:         entities.OutcomeDecodeError,
		ProcessedAt:     u.now().UTC(),
	})
	if err != nil {
		logger.Warn(ctx, "Failed to record undecodable event", zap.String("event", event.ID()), zap.Error(err))
	}
}

// checkSettlement warns when the on-chain payment does not match the request.
func (u *ReconcilerUsecase) checkSettlement(ctx context.Context, req *entities.PaymentRequest, paid *entities.PaymentCompleted) {
	if !strings.EqualFold(req.MerchantAddress, paid.MerchantAddress) {
		logger.Warn(ctx, "Payment settled to a different merchant address",
			zap.String("expected", req.MerchantAddress),
			zap.String("actual", paid.MerchantAddress),
		)
	}
	if !strings.EqualFold(req.TokenAddress, paid.TokenAddress) {
		logger.Warn(ctx, "Payment settled in a different token",
			zap.String("expected", req.TokenAddress),
			zap.String("actual", paid.TokenAddress),
		)
	}
	requested, ok := new(big.Int).SetString(req.TokenAmount, 10)
	if ok && paid.Amount != nil && paid.Amount.Cmp(requested) < 0 {
		logger.Warn(ctx, "Payment underpaid",
			zap.String("requested", req.TokenAmount),
			zap.String("paid", paid.Amount.String()),
		)
	}
}
