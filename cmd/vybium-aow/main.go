// Command vybium-aow answers JSON requests, one per line on stdin, with one
// JSON response per line on stdout. Logs go to stderr.
//
//	{"op":"iterate","x":"123","n":10}
//	{"op":"verify","x":"123","y":"982599","n":10}
//	{"op":"chain","events":["a","b","c"]}
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	logging "github.com/ipfs/go-log/v2"

	vybiumaow "github.com/vybium/vybium-aow/pkg/vybium-aow"
)

var log = logging.Logger("vybium-aow")

func main() {
	var (
		configPath = flag.String("config", "", "Path to YAML config file (optional)")
		logLevel   = flag.String("log-level", "", "Log level (debug, info, warn, error); overrides config")
	)
	flag.Parse()

	cfg, err := vybiumaow.LoadConfig(*configPath)
	if err != nil {
		fatal(err)
	}

	levelName := cfg.Log.Level
	if *logLevel != "" {
		levelName = *logLevel
	}
	level, err := logging.LevelFromString(levelName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid log level %q, using info\n", levelName)
		level = logging.LevelInfo
	}
	logging.SetAllLoggers(level)

	engine, err := vybiumaow.NewEngine(cfg)
	if err != nil {
		fatal(err)
	}

	var st *vybiumaow.Store
	if cfg.Storage.Path != "" {
		st, err = vybiumaow.OpenStore(cfg.Storage.Path)
		if err != nil {
			fatal(err)
		}
		defer st.Close()
		log.Infof("persisting chains to %s", cfg.Storage.Path)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	log.Infof("field: %d bits, alpha: %s, max iterations: %s",
		engine.Field().Modulus().BitLen(), engine.Alpha(), engine.Parameters().MaxIterations)

	h := &handler{engine: engine, store: st}
	if err := h.serve(ctx, os.Stdin, os.Stdout); err != nil {
		log.Errorf("serve: %v", err)
		os.Exit(1)
	}
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}
