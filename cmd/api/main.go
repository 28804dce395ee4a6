package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	_ "buyinbuyout/api/swagger" // swagger docs
	"buyinbuyout/internal/config"
	"buyinbuyout/internal/database"
	"buyinbuyout/internal/handler"
	"buyinbuyout/internal/logging"
	"buyinbuyout/internal/middleware"
	"buyinbuyout/internal/repository"
	"buyinbuyout/internal/router"
	"buyinbuyout/internal/service"
	"buyinbuyout/internal/websocket"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// @title           BuyInBuyOut Purchase Request API
// @version         1.0
// @description     Purchase request approval workflow: register, log in, raise requests and have approvers decide on them.
// @host            localhost:8080
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, envLoaded, err := config.Load("configs/.env")
	if err != nil {
		logrus.WithError(err).Fatal("invalid configuration")
	}

	log := logging.New(cfg.LogLevel, cfg.LogFormat)
	if !envLoaded {
		log.Info("No configs/.env file found, using process environment")
	}
	gin.SetMode(cfg.GinMode)

	db, err := database.NewConnection(cfg.DB.DSN(), logging.GormLogger(log))
	if err != nil {
		log.WithError(err).Fatal("database connection failed")
	}
	log.Info("Connected to PostgreSQL successfully.")

	// Repository -> Service -> Handler
	txManager := repository.NewTransactionManager(db)
	userRepo := repository.NewUserRepository(db)
	requestRepo := repository.NewPurchaseRequestRepository(db)
	itemRepo := repository.NewItemRepository(db)
	historyRepo := repository.NewApprovalHistoryRepository(db)

	wsHub := websocket.NewHub(log, userRepo.GetRole)
	go wsHub.Run()
	defer wsHub.Stop()

	authService := service.NewAuthService(userRepo, cfg)
	requestService := service.NewPurchaseRequestService(requestRepo, userRepo, itemRepo, historyRepo, txManager, wsHub)
	itemService := service.NewItemService(itemRepo)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	limiter := middleware.NewRateLimiter(cfg.AuthRateLimitRPS, cfg.AuthRateLimitBurst)
	limiter.StartCleanup(10*time.Minute, ctx.Done())

	engine := router.New(router.Deps{
		Log:            log,
		Secret:         cfg.SigningKey(),
		CORSOrigins:    cfg.CORSOrigins,
		AuthLimiter:    limiter,
		Hub:            wsHub,
		AuthHandler:    handler.NewAuthHandler(authService, log),
		RequestHandler: handler.NewPurchaseRequestHandler(requestService, itemService, log),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Infof("Server listening on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("server failed")
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("graceful shutdown failed")
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
