package controllers

import (
	"net/http"

	"github.com/habtedev/AfriMart-sub000/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type PaymentController struct {
	Engine *services.ReconciliationService
	Logger *zap.Logger
}

type initiatePaymentRequest struct {
	OrderID      string `json:"orderId" binding:"required"`
	PayerContact string `json:"payerContact"`
	Description  string `json:"description"`
}

// InitiatePayment opens a payment attempt with the provider named in the
// path and returns the checkout URL the caller should redirect to.
func (pc *PaymentController) InitiatePayment(c *gin.Context) {
	var req initiatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	intent, err := pc.Engine.InitiatePayment(
		c.Request.Context(),
		c.Param("provider"),
		req.OrderID,
		req.PayerContact,
		req.Description,
	)
	if err != nil {
		respondError(c, pc.Logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"checkoutUrl": intent.CheckoutURL,
		"sessionId":   intent.ProviderTxID,
		"txRef":       intent.TxRef,
	})
}

// GetPaymentStatus is the sync reconciliation path: it polls the provider
// and reports the resulting intent status.
func (pc *PaymentController) GetPaymentStatus(c *gin.Context) {
	intent, err := pc.Engine.VerifyAndReconcile(
		c.Request.Context(),
		c.Param("provider"),
		c.Param("orderId"),
	)
	if err != nil {
		respondError(c, pc.Logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":        intent.Status,
		"transactionId": intent.ProviderTxID,
		"txRef":         intent.TxRef,
	})
}
