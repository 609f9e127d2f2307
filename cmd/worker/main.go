package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"credit-voucher-engine/internal/adapter/notify"
	"credit-voucher-engine/internal/adapter/repository/mysql"
	"credit-voucher-engine/internal/adapter/scheduler"
	"credit-voucher-engine/internal/config"
	infradb "credit-voucher-engine/internal/infrastructure/db"
	"credit-voucher-engine/internal/infrastructure/logger"
	voucherUC "credit-voucher-engine/internal/usecase/voucher"
	"credit-voucher-engine/pkg/clock"
)

// sweep runs longer than this are cut off; the next tick picks up the rest.
const sweepTimeout = 5 * time.Minute

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

	notifier, err := notify.New(ctx, cfg, log)
	if err != nil {
		log.Fatal("notifier", zap.Error(err))
	}
	defer notifier.Close()

	vouchers := voucherUC.NewUsecase(mysql.NewVoucherRepository(db), mysql.NewGormUoW(db), clock.System{}, notifier,
		log.Named("voucher"), voucherUC.Options{IssueWindow: cfg.VoucherIssueWindow, MaxAttempts: cfg.OCCMaxAttempts})

	redisOpt := asynq.RedisClientOpt{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB}

	srv := asynq.NewServer(redisOpt, asynq.Config{
		Concurrency: cfg.WorkerConcurrency,
		Queues:      map[string]int{scheduler.Queue: 1},
	})
	sched := asynq.NewScheduler(redisOpt, &asynq.SchedulerOpts{Location: time.UTC})
	if err := scheduler.Register(sched, cfg.ExpireSpec, cfg.OverdueSpec, sweepTimeout); err != nil {
		log.Fatal("register periodic tasks", zap.Error(err))
	}

	if err := srv.Start(scheduler.NewMux(vouchers, log.Named("scheduler"))); err != nil {
		log.Fatal("start asynq server", zap.Error(err))
	}
	if err := sched.Start(); err != nil {
		log.Fatal("start asynq scheduler", zap.Error(err))
	}
	log.Info("worker started",
		zap.String("expire_spec", cfg.ExpireSpec),
		zap.String("overdue_spec", cfg.OverdueSpec),
		zap.Int("concurrency", cfg.WorkerConcurrency))

	<-ctx.Done()
	sched.Shutdown()
	srv.Shutdown()
}
