package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/ironsheep/shape-vision/internal/api"
	"github.com/ironsheep/shape-vision/internal/config"
	"github.com/ironsheep/shape-vision/internal/detection"
	"github.com/ironsheep/shape-vision/internal/metrics"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	configPath := flag.String("config", os.Getenv("SHAPES_CONFIG"), "YAML settings file")
	showVersion := flag.Bool("version", false, "Print version information")
	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, "shape-server - HTTP and WebSocket backend for colored shape detection")
		fmt.Fprintln(os.Stderr)
		fmt.Fprintln(os.Stderr, "Usage: shape-server [options]")
		fmt.Fprintln(os.Stderr)
		flag.PrintDefaults()
		fmt.Fprintln(os.Stderr)
		fmt.Fprintln(os.Stderr, "Environment variables:")
		fmt.Fprintln(os.Stderr, "  SHAPES_HTTP_ADDR=:8000    Listen address")
		fmt.Fprintln(os.Stderr, "  SHAPES_LOG_LEVEL=debug    Enable debug logging")
		fmt.Fprintln(os.Stderr, "  SHAPES_*                  Override any setting (e.g. SHAPES_MAX_OBJECTS=5)")
	}
	flag.Parse()

	if *showVersion {
		fmt.Printf("shape-server %s\n", Version)
		fmt.Printf("  Build time: %s\n", BuildTime)
		fmt.Printf("  Git commit: %s\n", GitCommit)
		return
	}

	log.SetOutput(os.Stderr)
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	cfg, err := config.Load(*configPath, config.DefaultMobile())
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	det, err := detection.NewDetector(cfg.Detection)
	if err != nil {
		log.Fatalf("Detector error: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Printf("Shape server v%s (built %s, commit %s)", Version, BuildTime, GitCommit)
	if cfg.Debug() {
		log.Printf("Detection parameters: %+v, limits: %+v", cfg.Detection, cfg.Limits)
	}

	srv := api.New(cfg, det, metrics.New())
	if err := srv.ListenAndServe(ctx, cfg.HTTPAddr); err != nil {
		log.Fatalf("Server error: %v", err)
	}
	log.Printf("Shape server stopped")
}
