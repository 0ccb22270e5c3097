package main

import (
	"log"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	httpadp "lendledger-backend/internal/adapter/http"
	mw "lendledger-backend/internal/adapter/middleware"
	"lendledger-backend/internal/adapter/repository/mysql"
	settlementadp "lendledger-backend/internal/adapter/settlement"
	"lendledger-backend/internal/config"
	domainchain "lendledger-backend/internal/domain/chain"
	"lendledger-backend/internal/infrastructure/cache"
	infrachain "lendledger-backend/internal/infrastructure/chain"
	"lendledger-backend/internal/infrastructure/db"
	"lendledger-backend/internal/usecase/engine"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}

	gdb, err := db.OpenGorm(cfg.MySQLDSN())
	if err != nil {
		log.Fatalf("mysql: %v", err)
	}

	rdb, err := cache.OpenRedis(cfg.RedisAddr, cfg.RedisDB)
	if err != nil {
		log.Fatalf("redis: %v", err)
	}

	var height domainchain.HeightSource = infrachain.NewRedisHeight(rdb)
	if cfg.ChainHeightStatic != "" {
		h, err := strconv.ParseUint(cfg.ChainHeightStatic, 10, 64)
		if err != nil {
			log.Fatalf("CHAIN_HEIGHT_STATIC: %v", err)
		}
		height = domainchain.Static(h)
	}

	// The in-process book stands in for the native settlement rail; swap in
	// the real rail adapter when deploying against the live platform.
	rail := settlementadp.NewBook()

	uc := engine.NewUsecase(mysql.NewGormUoW(gdb), rail, height, cfg.LoanRateBps)

	h := httpadp.NewHandler()
	eh := httpadp.NewEngineHandler(uc)

	e := echo.New()
	e.HideBanner = true
	e.Validator = httpadp.NewValidator()
	e.Use(middleware.Logger(), middleware.Recover())

	// routes
	e.GET("/health", h.Health)
	eh.Register(e, mw.IdempotencyMiddleware(rdb, time.Duration(cfg.IdempTTLSecs)*time.Second))

	addr := ":" + cfg.AppPort
	log.Printf("listening on %s", addr)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
