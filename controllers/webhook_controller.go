package controllers

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/habtedev/AfriMart-sub000/models"
	"github.com/habtedev/AfriMart-sub000/services"
	"github.com/habtedev/AfriMart-sub000/signature"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ChapaSignatureHeader carries the hex HMAC of the raw request body.
const ChapaSignatureHeader = "Chapa-Signature"

// WebhookController authenticates and dispatches provider callbacks. The
// status code is the whole contract with the provider's retry logic: 200
// stops redelivery (including for already-processed duplicates), 401
// rejects a bad signature, 404 rejects an unknown reference.
type WebhookController struct {
	Engine    *services.ReconciliationService
	Verifiers map[string]signature.Verifier
	Logger    *zap.Logger
}

func (wc *WebhookController) HandleWebhook(c *gin.Context) {
	provider := strings.ToLower(c.Param("provider"))
	verifier, ok := wc.Verifiers[provider]
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown provider"})
		return
	}

	rawBody, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable body"})
		return
	}

	switch provider {
	case "chapa":
		wc.handleChapa(c, verifier, rawBody)
	case "arifpay":
		wc.handleArifPay(c, verifier, rawBody)
	}
}

func (wc *WebhookController) handleChapa(c *gin.Context, verifier signature.Verifier, rawBody []byte) {
	if err := verifier.Verify(rawBody, c.GetHeader(ChapaSignatureHeader)); err != nil {
		wc.rejectSignature(c, models.ProviderChapa, err)
		return
	}

	var payload models.ChapaWebhook
	if err := json.Unmarshal(rawBody, &payload); err != nil || payload.TxRef == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed payload"})
		return
	}

	if err := wc.Engine.HandleChapaWebhook(c.Request.Context(), payload); err != nil {
		respondError(c, wc.Logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "received"})
}

func (wc *WebhookController) handleArifPay(c *gin.Context, verifier signature.Verifier, rawBody []byte) {
	var payload models.ArifPayNotification
	if err := json.Unmarshal(rawBody, &payload); err != nil || payload.SessionID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed payload"})
		return
	}

	if err := verifier.Verify(rawBody, payload.Signature); err != nil {
		wc.rejectSignature(c, models.ProviderArifPay, err)
		return
	}

	if err := wc.Engine.HandleArifPayNotification(c.Request.Context(), payload); err != nil {
		respondError(c, wc.Logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "received"})
}

func (wc *WebhookController) rejectSignature(c *gin.Context, provider string, err error) {
	wc.Logger.Warn("Webhook signature verification failed",
		zap.String("provider", provider),
		zap.String("ip", c.ClientIP()),
		zap.Error(err),
	)
	c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid signature"})
}
