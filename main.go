package main

import (
	"errors"
	"fmt"
	"log"
	"os"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/soar/padlink/internal/config"
	"github.com/soar/padlink/internal/logging"
)

// Cross-platform signal handling: use os.Interrupt on all platforms
// On Windows: os.Interrupt is sent when Ctrl+C is pressed
// On Unix: os.Interrupt is equivalent to syscall.SIGINT
var shutdownSignals = []os.Signal{os.Interrupt, syscall.SIGTERM}

const usage = `Usage: padlink [flags] [command]

Commands:
  serve                      run the daemon (default)
  call <method> [key=value]  invoke a method on a running daemon
  watch                      print daemon events until interrupted
  token [ttl]                print a websocket token signed with auth.secret

Flags:
`

func main() {
	cfg, args, err := config.Load(os.Args[1:])
	if errors.Is(err, pflag.ErrHelp) {
		fmt.Fprint(os.Stderr, usage+config.NewFlagSet("padlink").FlagUsages())
		return
	}
	if err != nil {
		log.Fatalf("Config error: %v", err)
	}

	closer := logging.Setup(logging.Options{
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
	})
	defer closer.Close()
	if cfg.File != "" {
		log.Printf("Using config file %s", cfg.File)
	}

	cmd := "serve"
	if len(args) > 0 {
		cmd, args = args[0], args[1:]
	}

	switch cmd {
	case "serve":
		err = serve(cfg)
	case "call":
		err = runCall(cfg, args)
	case "watch":
		err = runWatch(cfg)
	case "token":
		err = runToken(cfg, args)
	default:
		fmt.Fprint(os.Stderr, usage+config.NewFlagSet("padlink").FlagUsages())
		err = fmt.Errorf("unknown command %q", cmd)
	}
	if err != nil {
		closer.Close()
		log.Fatal(err)
	}
}
