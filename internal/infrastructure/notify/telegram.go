package notify

import (
	"context"
	"fmt"
	"html"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"midatopay.backend/internal/domain/entities"
)

// MessageSender is the part of the Telegram bot API the alerter uses
type MessageSender interface {
	SendMessage(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error)
}

// TelegramAlerter posts payment confirmations to a merchant chat
type TelegramAlerter struct {
	sender MessageSender
	chatID int64
}

// NewTelegramAlerter connects a bot with token and targets chatID.
func NewTelegramAlerter(token string, chatID int64) (*TelegramAlerter, error) {
	b, err := bot.New(token)
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}
	return NewTelegramAlerterWithSender(b, chatID), nil
}

func NewTelegramAlerterWithSender(sender MessageSender, chatID int64) *TelegramAlerter {
	return &TelegramAlerter{sender: sender, chatID: chatID}
}

func (a *TelegramAlerter) AlertPaymentConfirmed(ctx context.Context, payload entities.PaymentConfirmedPayload) error {
	disablePreview := true
	_, err := a.sender.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:    a.chatID,
		Text:      formatConfirmation(payload),
		ParseMode: models.ParseModeHTML,
		LinkPreviewOptions: &models.LinkPreviewOptions{
			IsDisabled: &disablePreview,
		},
	})
	if err != nil {
		return fmt.Errorf("send telegram alert: %w", err)
	}
	return nil
}

func formatConfirmation(p entities.PaymentConfirmedPayload) string {
	return fmt.Sprintf(
		"<b>Payment confirmed</b>\nPayment: <code>%s</code>\nAmount: <code>%s</code>\nMerchant: <code>%s</code>\nTx: <code>%s</code>",
		html.EscapeString(p.PaymentID),
		html.EscapeString(p.Amount),
		html.EscapeString(p.MerchantAddress),
		html.EscapeString(p.TransactionHash),
	)
}
