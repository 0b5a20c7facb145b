package main

import (
	"context"
	"os"

	"github.com/bsm/redislock"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"shopcrew.com/shopcrew/attendance"
	"shopcrew.com/shopcrew/core"
	"shopcrew.com/shopcrew/geo"
	"shopcrew.com/shopcrew/infrastructure/communication"
	"shopcrew.com/shopcrew/infrastructure/devops"
	"shopcrew.com/shopcrew/security"
	"shopcrew.com/shopcrew/web/handlers"
	"shopcrew.com/shopcrew/web/middlewares"
)

func main() {
	ctx := context.Background()

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	cfg, err := devops.Load(ctx)
	if err != nil {
		logger.Fatalf("failed to load configuration: %v", err)
	}

	dm, err := core.New(cfg.DSN, cfg.MaxConnections, core.LogLevelError)
	if err != nil {
		logger.Fatalf("failed to connect database: %v", err)
	}
	defer dm.Close()

	if err := dm.Migrate(); err != nil {
		logger.Fatalf("failed to migrate: %v", err)
	}

	store := attendance.NewGormStore(dm)
	secret := []byte(cfg.JWTSecret)

	// redis is optional; without it the PIN guard falls back to the
	// in-process store and toggles rely on the open-entry guard alone
	var attemptStore security.AttemptStore = security.NewMemoryAttemptStore()
	var locker *redislock.Client
	if cfg.RedisAddress != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddress})
		if pingErr := rdb.Ping(ctx).Err(); pingErr != nil {
			logger.Warnf("redis unavailable, using in-process attempt store: %v", pingErr)
		} else {
			attemptStore = security.NewRedisAttemptStore(rdb)
			locker = redislock.New(rdb)
		}
	}

	var audit attendance.AuditNotifier
	if cfg.SlackToken != "" {
		audit = communication.NewSlack(cfg.SlackToken, communication.SlackOption{
			AuditChannelID: cfg.SlackAuditChannel,
		})
	}

	var reviewNotifier attendance.ReviewNotifier
	if cfg.SESSender != "" && len(cfg.ReviewerEmail) > 0 {
		mailer, mailErr := communication.NewReviewMailer(ctx, cfg.SESSender, cfg.ReviewerEmail)
		if mailErr != nil {
			logger.Warnf("review mailer disabled: %v", mailErr)
		} else {
			reviewNotifier = mailer
		}
	}

	approvals := &attendance.ApprovalWorkflow{
		Store:    store,
		Notifier: reviewNotifier,
		Logger:   logger,
	}

	clock := &attendance.ClockService{
		Store:     store,
		Geocoder:  geo.NewGeocoder(cfg.GeocoderURL, logger),
		Approvals: approvals,
		Audit:     audit,
		Logger:    logger,
		Locker:    locker,
	}

	verifier := &security.OwnerPinVerifier{
		Shops:  store,
		Guard:  security.NewPinSecurityGuard(attemptStore),
		Secret: secret,
	}

	h := &handlers.Handler{
		DM:        dm,
		Store:     store,
		Clock:     clock,
		Approvals: approvals,
		Verifier:  verifier,
		Logger:    logger,
	}

	r := gin.Default()
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
		})
	})

	api := r.Group("/api")
	{
		api.POST("/shops/:shopId/clock", h.ClockToggleHandler)
		api.GET("/shops/:shopId/employees/:employeeId/consent", h.ConsentStateHandler)
		api.POST("/shops/:shopId/employees/:employeeId/consent", h.ResolveConsentHandler)
		api.GET("/shops/:shopId/employees/:employeeId/entries", h.HistoryHandler)
		api.GET("/shops/:shopId/employees/:employeeId/payroll", h.PayrollSummaryHandler)
		api.POST("/shops/:shopId/owner/verify-pin", h.VerifyOwnerPinHandler)
	}

	owner := r.Group("/api/shops/:shopId")
	owner.Use(middlewares.OwnerSession(secret))
	{
		owner.GET("/approvals/pending", h.PendingApprovalsHandler)
		owner.GET("/approvals/export", h.ExportApprovalsHandler)
		owner.POST("/approvals/:requestId/approve", h.ApproveRequestHandler)
		owner.POST("/approvals/:requestId/reject", h.RejectRequestHandler)
		owner.POST("/standing-approvals", h.CreateStandingApprovalHandler)
		owner.PUT("/owner/pin", h.SetOwnerPinHandler)
	}

	r.Run(cfg.Port)
}
