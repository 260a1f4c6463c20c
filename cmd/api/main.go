package main

import (
	"log"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"gorm.io/gorm"

	httpadp "p2p-lending-ledger/internal/adapter/http"
	appmw "p2p-lending-ledger/internal/adapter/middleware"
	mysqlrepo "p2p-lending-ledger/internal/adapter/repository/mysql"
	"p2p-lending-ledger/internal/config"
	"p2p-lending-ledger/internal/infrastructure/cache"
	"p2p-lending-ledger/internal/infrastructure/db"
	"p2p-lending-ledger/internal/notify"
	"p2p-lending-ledger/internal/usecase/ledger"
	"p2p-lending-ledger/internal/usecase/vault"
)

func main() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}

	var (
		gdb *gorm.DB
		err error
	)
	switch cfg.StorageDriver {
	case config.DriverSQLite:
		gdb, err = db.OpenSQLite(cfg.SQLitePath)
	default:
		gdb, err = db.OpenGorm(cfg.MySQLDSN())
	}
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	if err := mysqlrepo.AutoMigrate(gdb); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	v, err := vault.New(cfg.CollateralAmount)
	if err != nil {
		log.Fatalf("vault: %v", err)
	}

	// With redis available the command endpoints get idempotency and
	// notifications go out over pub/sub; without it we fall back to the
	// in-process fanout (local sqlite runs).
	var notifier notify.Notifier = notify.NewFanout()
	var commandMW []echo.MiddlewareFunc
	if cfg.RedisAddr != "" {
		rdb, err := cache.OpenRedis(cfg.RedisAddr, cfg.RedisDB)
		if err != nil {
			log.Fatalf("redis: %v", err)
		}
		notifier = notify.NewRedisPublisher(rdb, cfg.NotifyChannel)
		commandMW = append(commandMW, appmw.Idempotency(rdb, time.Duration(cfg.IdempTTLSecs)*time.Second))
	}

	loans := mysqlrepo.NewLoanRepository(gdb)
	events := mysqlrepo.NewEventRepository(gdb)
	uc := ledger.NewUsecase(loans, events, mysqlrepo.NewGormUoW(gdb), v, notifier)

	e := echo.New()
	e.HideBanner = true
	e.Validator = httpadp.NewValidator()
	e.Use(middleware.Logger(), middleware.Recover())

	h := httpadp.NewHandler()
	e.GET("/health", h.Health)
	httpadp.NewLedgerHandler(uc).RegisterRoutes(e, commandMW...)

	addr := ":" + cfg.AppPort
	log.Printf("ledger api listening on %s (storage=%s)", addr, cfg.StorageDriver)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
