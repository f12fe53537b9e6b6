package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"midatopay.backend/internal/domain/entities"
	domainerrors "midatopay.backend/internal/domain/errors"
	"midatopay.backend/internal/interfaces/http/middleware"
	"midatopay.backend/internal/interfaces/http/response"
	"midatopay.backend/pkg/utils"
)

// PaymentService issues and looks up payment requests
type PaymentService interface {
	IssuePayment(ctx context.Context, merchantID uuid.UUID, merchantAddress string, input *entities.CreatePaymentInput) (*entities.CreatePaymentResponse, error)
	GetPayment(ctx context.Context, paymentID string) (*entities.PaymentWithStatus, error)
	ListPayments(ctx context.Context, merchantID uuid.UUID, page, limit int) ([]*entities.PaymentWithStatus, utils.PaginationMeta, error)
}

type PaymentHandler struct {
	paymentService PaymentService
}

func NewPaymentHandler(paymentService PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService}
}

// CreatePayment issues a payment request with its QR payload
// POST /api/v1/payments
func (h *PaymentHandler) CreatePayment(c *gin.Context) {
	merchantID, ok := middleware.GetUserID(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("unauthorized"))
		return
	}
	merchantAddress, ok := middleware.GetMerchantAddress(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("merchant address missing from token"))
		return
	}

	var input entities.CreatePaymentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	result, err := h.paymentService.IssuePayment(c.Request.Context(), merchantID, merchantAddress, &input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, result)
}

// ListPayments lists the merchant's payments with their settlement status
// GET /api/v1/payments
func (h *PaymentHandler) ListPayments(c *gin.Context) {
	merchantID, ok := middleware.GetUserID(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("unauthorized"))
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))

	items, meta, err := h.paymentService.ListPayments(c.Request.Context(), merchantID, page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"items": items,
		"meta":  meta,
	})
}

// GetPayment resolves a scanned QR payment id for the payer
// GET /api/v1/pay/:paymentId
func (h *PaymentHandler) GetPayment(c *gin.Context) {
	paymentID := c.Param("paymentId")
	if !isPaymentID(paymentID) {
		response.Error(c, domainerrors.BadRequest("invalid payment ID"))
		return
	}

	payment, err := h.paymentService.GetPayment(c.Request.Context(), paymentID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"payment": payment})
}
