package main

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/ironsheep/vision-tools-mcp/internal/config"
	"github.com/ironsheep/vision-tools-mcp/internal/logging"
	"github.com/ironsheep/vision-tools-mcp/internal/server"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	// Handle --version and -v flags
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "-v", "version":
			fmt.Printf("vision-tools-mcp %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			return
		case "--help", "-h", "help":
			fmt.Println("vision-tools-mcp - MCP server for Grounding DINO / SAM / Stable Diffusion vision tools")
			fmt.Println()
			fmt.Println("Usage: vision-tools-mcp [options]")
			fmt.Println()
			fmt.Println("Options:")
			fmt.Println("  --version, -v    Print version information")
			fmt.Println("  --help, -h       Print this help message")
			fmt.Println()
			fmt.Println("Environment variables (also read from ./.env):")
			fmt.Println("  VISION_MCP_CONFIG=path.yaml        Optional YAML config file")
			fmt.Println("  VISION_MCP_ENDPOINT=url            Gradio backend (default http://localhost:7589)")
			fmt.Println("  VISION_MCP_OUTPUT_DIR=dir          Root of saved results (default output)")
			fmt.Println("  VISION_MCP_TIMEOUT=60s             Per-call timeout (default none)")
			fmt.Println("  VISION_MCP_FN_INDEX=0              Backend entry point index")
			fmt.Println("  VISION_MCP_LOG_LEVEL=debug         Log level")
			fmt.Println("  VISION_MCP_LOG_MODE=development    Human-readable logs")
			fmt.Println()
			fmt.Println("This server communicates via MCP protocol over stdin/stdout.")
			fmt.Println("Configure it in your MCP client (e.g., Claude Desktop).")
			return
		}
	}

	cfg, err := config.FromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	// Logs go to stderr (stdout is for MCP protocol)
	logger, err := logging.New(cfg.Log.Mode, cfg.Log.Level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger error: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("starting vision MCP server",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
		zap.String("commit", GitCommit),
		zap.String("endpoint", cfg.Endpoint),
		zap.String("output_dir", cfg.OutputDir))

	srv := server.New(cfg, logger, Version)
	if err := srv.Run(); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
}
