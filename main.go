package main

import (
	"os"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	log "github.com/sirupsen/logrus"

	"cardwall-api/api"
	"cardwall-api/storage"
)

// Compiled-in rate limits, overridable via env as "count/window".
const (
	defaultCardsWriteRate = "5/30s"
	defaultCardsReadRate  = "10/60s"
	defaultHealthRate     = "30/60s"
)

func main() {
	if dbg, err := strconv.ParseBool(os.Getenv("DEBUG")); err == nil && dbg {
		log.SetLevel(log.DebugLevel)
	}

	rules := api.RateRules{
		Health:     mustRule("health", "HEALTH_RATE", defaultHealthRate),
		CardsRead:  mustRule("cards-read", "CARDS_READ_RATE", defaultCardsReadRate),
		CardsWrite: mustRule("cards-write", "CARDS_WRITE_RATE", defaultCardsWriteRate),
	}

	trustProxy := false
	if v, err := strconv.ParseBool(os.Getenv("TRUST_PROXY")); err == nil {
		trustProxy = v
	}

	// All card and limiter state is process-local and void on restart.
	store := storage.New()

	e := echo.New()
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, api.IdentityHeader},
	}))

	logger := log.New()
	api.Register(e, store, api.HeaderIdentity{}, api.NewLimiter(), rules, trustProxy, logger)

	listenAddr := ":8080"
	if val, ok := os.LookupEnv("PORT"); ok {
		listenAddr = ":" + val
	}

	e.Logger.Fatal(e.Start(listenAddr))
}

func mustRule(name, envVar, fallback string) api.Rule {
	raw := os.Getenv(envVar)
	if raw == "" {
		raw = fallback
	}
	rule, err := api.ParseRule(name, raw)
	if err != nil {
		log.Fatalf("invalid %s: %v", envVar, err)
	}
	return rule
}
