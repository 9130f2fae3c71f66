package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	httpadp "creditnexus/internal/adapter/http"
	idemp "creditnexus/internal/adapter/middleware"
	"creditnexus/internal/adapter/repository/gormrepo"
	"creditnexus/internal/config"
	"creditnexus/internal/domain/event"
	"creditnexus/internal/infrastructure/cache"
	"creditnexus/internal/infrastructure/db"
	"creditnexus/internal/infrastructure/events"
	"creditnexus/internal/infrastructure/logging"
	"creditnexus/internal/infrastructure/metrics"
	"creditnexus/internal/infrastructure/simnet"
	"creditnexus/internal/usecase/bank"
	"creditnexus/internal/usecase/loan"
	"creditnexus/internal/usecase/participant"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err == nil {
		err = cfg.Validate()
	}
	if err != nil {
		slog.Error("config", "err", err)
		os.Exit(1)
	}

	log := logging.New(os.Stdout, cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(log)

	if err := run(cfg, log); err != nil {
		log.Error("exit", "err", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gdb, err := openStore(cfg)
	if err != nil {
		return err
	}
	if sqlDB, err := gdb.DB(); err == nil {
		defer sqlDB.Close()
	}
	// The store holds one session's ledger; every boot starts empty.
	if err := db.ResetSchema(gdb, gormrepo.Models()...); err != nil {
		return err
	}

	var publisher event.Publisher = event.Nop{}
	if len(cfg.KafkaBrokers) > 0 {
		kp := events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic, log)
		defer kp.Close()
		publisher = kp
		log.Info("publishing ledger events", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic)
	}

	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb, err = cache.OpenRedis(ctx, cache.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
		if err != nil {
			return err
		}
		defer rdb.Close()
	}

	net := simnet.New(simnet.Options{Latency: cfg.NetworkLatency, TrustLimit: cfg.TrustLimit()})
	m := metrics.New()
	participants := gormrepo.NewParticipantRepository(gdb)
	loans := gormrepo.NewLoanRepository(gdb)

	bankUC := bank.NewUsecase(net, cfg.BankFundingAmount(), log)
	participantUC := participant.NewUsecase(participant.Deps{
		Participants: participants,
		Loans:        loans,
		Network:      net,
		Events:       publisher,
		Metrics:      m,
		Log:          log,
	}, cfg.ParticipantFundingAmount())
	loanUC := loan.NewUsecase(loan.Deps{
		UoW:          gormrepo.NewGormUoW(gdb),
		Loans:        loans,
		Participants: participants,
		Transfers:    net,
		History:      net,
		Bank:         bankUC,
		Events:       publisher,
		Metrics:      m,
		Log:          log,
	}, loan.Options{
		MinBorrowerScore: cfg.MinBorrowerScore,
		Overpayment:      cfg.Overpayment(),
	})

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = httpadp.NewValidator()
	e.Use(middleware.Recover(), httpadp.RequestLogger(log))

	var mutating []echo.MiddlewareFunc
	if rdb != nil {
		mutating = append(mutating, idemp.Idempotency(rdb, cfg.IdempotencyTTL(), log))
	} else {
		log.Warn("REDIS_ADDR not set; idempotency disabled")
	}
	httpadp.Register(e, httpadp.Handlers{
		Health:       httpadp.NewHandler(bankUC),
		Bank:         httpadp.NewBankHandler(bankUC),
		Participants: httpadp.NewParticipantHandler(participantUC, loanUC),
		Loans:        httpadp.NewLoanHandler(loanUC),
		Metrics:      m.Handler(),
	}, mutating...)

	go loanUC.RunOverdueSweeper(ctx, cfg.SweepInterval)

	errCh := make(chan error, 1)
	go func() {
		addr := ":" + cfg.AppPort
		log.Info("listening", "addr", addr, "store", cfg.StoreDriver)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}

func openStore(cfg *config.Config) (*gorm.DB, error) {
	level := db.ParseLogLevel(cfg.GormLog)
	if cfg.StoreDriver == config.StoreMySQL {
		return db.OpenMySQL(cfg.MySQLDSN(), level)
	}
	return db.OpenSQLite(cfg.SQLiteDSN, level)
}
