package handlers

import (
	"github.com/gin-gonic/gin"
	mpconfig "github.com/mercadopago/sdk-go/pkg/config"
	"github.com/mercadopago/sdk-go/pkg/payment"

	"github.com/car2go/car2go-api/internal/config"
	"github.com/car2go/car2go-api/internal/httperr"
	"github.com/car2go/car2go-api/internal/httpresp"
)

type PaymentHandler struct {
	payments payment.Client
}

func NewPaymentHandler(cfg *config.Config) (*PaymentHandler, error) {
	mpCfg, err := mpconfig.New(cfg.MPAccessToken)
	if err != nil {
		return nil, err
	}

	return &PaymentHandler{
		payments: payment.NewClient(mpCfg),
	}, nil
}

type CreatePaymentIntentRequest struct {
	Amount           float64 `json:"amount" binding:"required"`
	PayerEmail       string  `json:"payer_email" binding:"required,email"`
	PaymentMethodID  string  `json:"payment_method_id" binding:"required"`
	BookingReference string  `json:"booking_reference"`
}

// CreateIntent opens a payment for a rental. The booking reference travels
// in the payment metadata so accounting can tie the two together.
func (h *PaymentHandler) CreateIntent(c *gin.Context) {
	var req CreatePaymentIntentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Données invalides.")
		return
	}

	resp, err := h.payments.Create(c.Request.Context(), payment.Request{
		TransactionAmount: req.Amount,
		Description:       "Location de voiture Car2Go",
		PaymentMethodID:   req.PaymentMethodID,
		Payer: &payment.PayerRequest{
			Email: req.PayerEmail,
		},
		Metadata: map[string]any{
			"booking_reference": req.BookingReference,
		},
	})
	if err != nil {
		httperr.BadRequest(c, "payment_failed", err.Error())
		return
	}

	httpresp.Created(c, gin.H{
		"payment_id": resp.ID,
		"status":     resp.Status,
	})
}
