package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/jwaldner/bspnl/internal/config"
	"github.com/jwaldner/bspnl/internal/handlers"
	"github.com/jwaldner/bspnl/internal/logger"
	pricer "github.com/jwaldner/bspnl/pricer_lib"
)

func main() {
	cfg := config.Load()

	// Initialize proper logging with config level and file path
	if err := logger.InitWithConfig(cfg.Logging.LogLevel, cfg.Logging.LogFile); err != nil {
		log.Fatalf("Failed to initialize logging: %v", err)
	}
	defer logger.Close()
	logger.Always.Printf("🚀 Black-Scholes PnL server starting - Port: %s", cfg.Port)

	if cfg.Logging.LogLevel == "verbose" {
		fmt.Printf("⚠️  VERBOSE LOGGING ENABLED - every priced request will be logged to %s\n", cfg.Logging.LogFile)
	}

	engine := pricer.NewEngine(cfg.Engine.ExecutionMode, cfg.Engine.Workers)
	logger.Always.Printf("🔧 EXECUTION MODE: %s (%d workers, configured %q)", engine.Mode(), engine.Workers(), cfg.Engine.ExecutionMode)

	if cfg.Pricing.StrictVolatility {
		logger.Info.Printf("🔒 Strict volatility enabled - negative volatility is rejected")
	}

	pricingHandler := handlers.NewPricingHandler(cfg, engine)

	// Setup router
	r := mux.NewRouter()
	pricingHandler.Routes(r)

	// Start server
	fmt.Printf("🌐 Server starting on http://localhost:%s\n", cfg.Port)
	logger.Always.Printf("🌐 Server starting on http://localhost:%s", cfg.Port)

	if err := http.ListenAndServe("0.0.0.0:"+cfg.Port, r); err != nil {
		log.Fatal("Server failed to start:", err)
	}
}
