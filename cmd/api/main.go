package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
	"gorm.io/gorm"

	httpadp "credit-voucher-engine/internal/adapter/http"
	idemp "credit-voucher-engine/internal/adapter/middleware"
	"credit-voucher-engine/internal/adapter/notify"
	"credit-voucher-engine/internal/adapter/repository/mysql"
	"credit-voucher-engine/internal/config"
	"credit-voucher-engine/internal/infrastructure/cache"
	infradb "credit-voucher-engine/internal/infrastructure/db"
	"credit-voucher-engine/internal/infrastructure/logger"
	approvalUC "credit-voucher-engine/internal/usecase/approval"
	delegationUC "credit-voucher-engine/internal/usecase/delegation"
	loanUC "credit-voucher-engine/internal/usecase/loan"
	voucherUC "credit-voucher-engine/internal/usecase/voucher"
	"credit-voucher-engine/pkg/clock"
)

func main() {
	cfg := config.Load()
	log, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	if err := cfg.Validate(); err != nil {
		log.Fatal("invalid config", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := infradb.OpenGorm(cfg, log)
	if err != nil {
		log.Fatal("open db", zap.Error(err))
	}
	if err := infradb.Migrate(db); err != nil {
		log.Fatal("migrate", zap.Error(err))
	}

	rdb, err := cache.OpenRedis(cache.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
	if err != nil {
		log.Fatal("open redis", zap.Error(err))
	}
	defer rdb.Close()

	notifier, err := notify.New(ctx, cfg, log)
	if err != nil {
		log.Fatal("notifier", zap.Error(err))
	}
	defer notifier.Close()

	clk := clock.System{}
	tx := mysql.NewGormUoW(db)
	vouchers := voucherUC.NewUsecase(mysql.NewVoucherRepository(db), tx, clk, notifier, log.Named("voucher"),
		voucherUC.Options{IssueWindow: cfg.VoucherIssueWindow, MaxAttempts: cfg.OCCMaxAttempts})
	delegations := delegationUC.NewUsecase(mysql.NewDelegationRepository(db), clk, log.Named("delegation"), cfg.OCCMaxAttempts)
	loans := loanUC.NewUsecase(mysql.NewLoanRepository(db), tx, delegations, clk, notifier, log.Named("loan"), cfg.OCCMaxAttempts)
	approvals := approvalUC.NewUsecase(tx, vouchers, delegations, clk, notifier, log.Named("approval"), cfg.OCCMaxAttempts)

	e := echo.New()
	e.HideBanner = true
	e.Validator = httpadp.NewValidator()
	e.Use(middleware.RequestID(), middleware.Logger(), middleware.Recover())

	httpadp.Register(e, httpadp.Handlers{
		Health: httpadp.NewHandler(map[string]httpadp.Pinger{
			"db":    pingDB(db),
			"redis": func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
		}),
		Loans:       httpadp.NewLoanHandler(loans, log),
		Approvals:   httpadp.NewApprovalHandler(approvals, log),
		Vouchers:    httpadp.NewVoucherHandler(vouchers, log),
		Delegations: httpadp.NewDelegationHandler(delegations, log),
	}, idemp.Idempotency(rdb, idemp.Options{TTL: cfg.IdempotencyTTL(), Log: log.Named("idempotency"), Clock: clk}))

	addr := ":" + cfg.AppPort
	go func() {
		log.Info("listening", zap.String("addr", addr))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server stopped", zap.Error(err))
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown", zap.Error(err))
	}
}

func pingDB(db *gorm.DB) httpadp.Pinger {
	return func(ctx context.Context) error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.PingContext(ctx)
	}
}
