package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/dusk-indust/camscope/internal/config"
	"github.com/dusk-indust/camscope/internal/mcptools"
	"github.com/dusk-indust/camscope/internal/shodan"
	"github.com/dusk-indust/camscope/internal/webcam"
)

// CLI flags parsed from command line.
type cliFlags struct {
	HTTPAddr string
	Call     string
	Params   string
	Verbose  bool
	Version  bool
}

// version is set by goreleaser at build time.
var version = "dev"

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	var flags cliFlags

	fs := flag.NewFlagSet("camscope", flag.ContinueOnError)
	fs.StringVar(&flags.HTTPAddr, "http", "", "serve MCP over streamable HTTP on this address instead of stdio")
	fs.StringVar(&flags.Call, "call", "", "dispatch a single tool call by name and print the result as JSON")
	fs.StringVar(&flags.Params, "params", "{}", "JSON parameters for -call")
	fs.BoolVar(&flags.Verbose, "verbose", false, "enable debug logging")
	fs.BoolVar(&flags.Version, "version", false, "print version and exit")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if flags.Version {
		fmt.Println(version)
		return nil
	}

	cfg, err := config.Load(".")
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	level := zerolog.InfoLevel
	if flags.Verbose || cfg.Verbose {
		level = zerolog.DebugLevel
	}
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().Timestamp().Logger()

	driver := webcam.NewFFmpegDriver(cfg.CaptureWidth, cfg.CaptureHeight, log)
	session := webcam.NewSession(driver, log)
	defer session.Close()

	apiKey := os.Getenv("SHODAN_API_KEY")
	if apiKey == "" {
		apiKey = cfg.ShodanAPIKey
	}

	var finder mcptools.WebcamFinder
	if apiKey != "" {
		finder = shodan.New(apiKey, log)
		log.Info().Msg("shodan integration enabled")
	} else {
		log.Warn().Msg("SHODAN_API_KEY not set, remote webcam tools disabled")
	}

	svc := mcptools.NewWebcamService(session, finder, log)

	if flags.Call != "" {
		return dispatchOnce(svc, flags.Call, flags.Params)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	addr := flags.HTTPAddr
	if addr == "" {
		addr = cfg.HTTPAddr
	}
	if addr != "" {
		log.Info().Str("addr", addr).Msg("serving MCP over HTTP")
		return mcptools.RunHTTP(ctx, svc, addr)
	}

	log.Info().Msg("serving MCP over stdio")
	return mcptools.RunStdio(ctx, mcptools.NewWebcamMCPServer(svc))
}

// dispatchOnce runs a single tool call outside any MCP transport and
// prints the resulting envelope to stdout.
func dispatchOnce(svc *mcptools.WebcamService, name, params string) error {
	var args map[string]any
	if err := json.Unmarshal([]byte(params), &args); err != nil {
		return fmt.Errorf("parse -params: %w", err)
	}

	result, err := svc.Dispatch(context.Background(), name, args)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}
