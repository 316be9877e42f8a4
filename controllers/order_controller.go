package controllers

import (
	"net/http"

	"github.com/habtedev/AfriMart-sub000/apperrors"
	"github.com/habtedev/AfriMart-sub000/middleware"
	"github.com/habtedev/AfriMart-sub000/models"
	"github.com/habtedev/AfriMart-sub000/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type OrderController struct {
	Orders *services.OrderService
	Logger *zap.Logger
}

type createOrderRequest struct {
	OrderID         string                 `json:"orderId" binding:"required"`
	Items           []models.OrderItem     `json:"items" binding:"required,dive"`
	ShippingAddress models.ShippingAddress `json:"shippingAddress"`
	// No "required" binding: a zero total is legitimate (all-free items)
	// and the service checks the items/total arithmetic anyway.
	TotalAmount float64 `json:"totalAmount"`
}

// CreateOrder persists a PENDING order. The orderId is caller-generated so
// a timed-out client can safely resend the identical request.
func (oc *OrderController) CreateOrder(c *gin.Context) {
	var req createOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID, err := middleware.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	order := &models.Order{
		OrderID:         req.OrderID,
		UserID:          userID,
		Items:           req.Items,
		ShippingAddress: req.ShippingAddress,
		TotalAmount:     req.TotalAmount,
	}

	created, err := oc.Orders.CreateOrder(c.Request.Context(), order)
	if err != nil {
		respondError(c, oc.Logger, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

// GetOrder returns an order with its effective payment status.
func (oc *OrderController) GetOrder(c *gin.Context) {
	order, err := oc.Orders.GetOrder(c.Request.Context(), c.Param("orderId"))
	if err != nil {
		respondError(c, oc.Logger, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// respondError maps an error to its HTTP status without leaking internals.
func respondError(c *gin.Context, logger *zap.Logger, err error) {
	code := apperrors.StatusCode(err)
	if code >= http.StatusInternalServerError {
		logger.Error("Request failed",
			zap.String("path", c.Request.URL.Path),
			zap.Error(err),
		)
	}
	c.JSON(code, gin.H{"error": apperrors.PublicMessage(err)})
}
