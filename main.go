package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/habtedev/AfriMart-sub000/config"
	"github.com/habtedev/AfriMart-sub000/controllers"
	"github.com/habtedev/AfriMart-sub000/database"
	"github.com/habtedev/AfriMart-sub000/gateway"
	"github.com/habtedev/AfriMart-sub000/kafka"
	"github.com/habtedev/AfriMart-sub000/logger"
	"github.com/habtedev/AfriMart-sub000/repository"
	"github.com/habtedev/AfriMart-sub000/routes"
	"github.com/habtedev/AfriMart-sub000/services"
	"github.com/habtedev/AfriMart-sub000/signature"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("[PaymentService] Failed to load config:", err)
	}

	logger.Initialize(cfg.Environment)
	defer logger.Log.Sync()

	if err := database.ConnectWithConfig(cfg.MongoURI, cfg.MongoDB); err != nil {
		log.Fatal("[PaymentService] Failed to connect to MongoDB:", err)
	}

	orderRepo := repository.NewMongoOrderRepository(database.DB)
	intentRepo := repository.NewMongoPaymentIntentRepository(database.DB)

	indexCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := intentRepo.EnsureIndexes(indexCtx); err != nil {
		log.Fatal("[PaymentService] Failed to create indexes:", err)
	}
	cancel()

	chapa := gateway.NewChapaClient(
		cfg.ChapaBaseURL, cfg.ChapaSecretKey,
		cfg.GatewayTimeout, cfg.GatewayMaxRetries, cfg.GatewayBackoffBase,
		logger.Log,
	)
	arifpay := gateway.NewArifPayClient(
		cfg.ArifPayBaseURL, cfg.ArifPayAPIKey,
		cfg.GatewayTimeout, cfg.GatewayMaxRetries, cfg.GatewayBackoffBase,
		logger.Log,
	)

	arifpayVerifier, err := signature.NewRSAVerifier(cfg.ArifPayPublicKey)
	if err != nil {
		log.Fatal("[PaymentService] Failed to parse ArifPay public key:", err)
	}

	producer := kafka.NewPaymentEventProducer(strings.Split(cfg.KafkaBrokers, ","), cfg.PaymentEventsTopic)
	defer producer.Close()

	orderService := services.NewOrderService(orderRepo, intentRepo, logger.Log)
	engine := services.NewReconciliationService(
		orderRepo, intentRepo,
		[]gateway.Provider{chapa, arifpay},
		producer,
		cfg.CallbackBaseURL, cfg.ReturnURL, cfg.CancelURL,
		logger.Log,
	)

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery(), logger.RequestLogger())

	oc := &controllers.OrderController{Orders: orderService, Logger: logger.Log}
	pc := &controllers.PaymentController{Engine: engine, Logger: logger.Log}
	wc := &controllers.WebhookController{
		Engine: engine,
		Verifiers: map[string]signature.Verifier{
			"chapa":   signature.NewHMACVerifier(cfg.ChapaWebhookSecret),
			"arifpay": arifpayVerifier,
		},
		Logger: logger.Log,
	}
	routes.RegisterRoutes(r, cfg.JWTSecret, oc, pc, wc)

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: r}
	go func() {
		log.Println("[PaymentService] Running on port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("[PaymentService] Server failed:", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Println("[PaymentService] Server shutdown error:", err)
	}
	if err := database.Close(); err != nil {
		log.Println("[PaymentService] Mongo disconnect error:", err)
	}
}
