package routes

import (
	"github.com/habtedev/AfriMart-sub000/controllers"
	"github.com/habtedev/AfriMart-sub000/middleware"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

func RegisterRoutes(r *gin.Engine, jwtSecret string, oc *controllers.OrderController, pc *controllers.PaymentController, wc *controllers.WebhookController) {
	auth := middleware.AuthMiddleware(jwtSecret)

	orders := r.Group("/order")
	orders.Use(auth)
	orders.POST("/create", oc.CreateOrder)
	orders.GET("/:orderId", oc.GetOrder)

	payments := r.Group("/payments")
	payments.Use(auth)
	payments.POST("/:provider/initiate", pc.InitiatePayment)
	payments.GET("/:provider/status/:orderId", pc.GetPaymentStatus)

	// Provider webhooks carry no session; their authentication is the
	// signature check inside the handler.
	r.POST("/payments/:provider/webhook",
		middleware.RateLimitMiddleware(rate.Limit(20), 40),
		wc.HandleWebhook,
	)
}
