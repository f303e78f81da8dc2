package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/alexflint/go-arg"
	"github.com/gin-gonic/gin"

	"github.com/yiblet/spares/internal/logger"
	"github.com/yiblet/spares/internal/mockapi"
)

type args struct {
	Addr         string        `arg:"--addr,env:MOCKAPI_ADDR" default:":8080" help:"Listen address"`
	Seed         *string       `arg:"--seed" help:"YAML catalog to serve instead of the built-in one"`
	Delay        time.Duration `arg:"--delay" help:"Artificial latency per lookup, e.g. 800ms"`
	FailPrimary  bool          `arg:"--fail-primary" help:"Answer the autocomplete endpoint with 503"`
	FailFallback bool          `arg:"--fail-fallback" help:"Answer the suggestions endpoint with 503"`
	Debug        bool          `arg:"--debug" help:"Gin debug mode and text logs"`
}

func (args) Description() string {
	return "mockapi - development stub of the storefront search endpoints"
}

func main() {
	var a args
	arg.MustParse(&a)

	log := logger.New(os.Stderr, a.Debug)
	if !a.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	seed := mockapi.DefaultSeed()
	if a.Seed != nil {
		var err error
		seed, err = mockapi.LoadSeed(*a.Seed)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}

	server := mockapi.New(seed)
	server.SetDelay(a.Delay)
	server.SetFailures(a.FailPrimary, a.FailFallback)

	log.Info("mockapi listening",
		slog.String("addr", a.Addr),
		slog.Int("products", len(seed.Products)),
		slog.Duration("delay", a.Delay))
	if err := server.Router().Run(a.Addr); err != nil {
		log.Error("mockapi stopped", slog.Any("error", err))
		os.Exit(1)
	}
}
