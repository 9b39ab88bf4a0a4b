// Command paymeta drives the confidential payment core from the command line.
//
//	paymeta [-config file] [-metrics-file file] <command> [flags]
//
// Results are written to stdout as JSON, logs to stderr.
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/taurusgroup/stealth-payments/internal/config"
	"github.com/taurusgroup/stealth-payments/internal/privacylog"
	"github.com/taurusgroup/stealth-payments/pkg/paymeta"
	"github.com/taurusgroup/stealth-payments/pkg/pool"
)

const usage = `usage: paymeta [-config file] [-metrics-file file] <command> [flags]

commands:
  keygen      generate a recipient main key pair
  stealth     generate stealth addresses for a main public key
  recover     recover the private key of a stealth address
  descriptor  create a descriptor and split its key between guardians
  open        open a descriptor with a key or with guardian shares
  split       split a hex key into shares
  combine     combine shares into a hex key
  level       split an amount into fragments
  pools       split an amount into parts of random sizes
  deposit     build the fragments of a deposit
  withdraw    build the descriptor of a withdrawal
`

type env struct {
	cfg     config.Config
	logger  *slog.Logger
	service *paymeta.Service
	out     io.Writer
}

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, "paymeta:", err)
		if kind := paymeta.Kind(err); kind != paymeta.KindUnknown {
			fmt.Fprintln(os.Stderr, "kind:", kind)
		}
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("paymeta", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() { fmt.Fprint(stderr, usage) }
	configPath := fs.String("config", "", "YAML configuration file")
	metricsFile := fs.String("metrics-file", "", "write Prometheus metrics to this file on exit")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return errors.New("missing command")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg.Log, stderr)
	if err != nil {
		return err
	}

	pl := pool.NewPool(cfg.Fragments.Workers)
	defer pl.TearDown()

	reg := prometheus.NewRegistry()
	fragments := cfg.FragmentConfig()
	service, err := paymeta.New(paymeta.Options{
		Logger:     logger,
		Registerer: reg,
		Pool:       pl,
		Fragments:  &fragments,
	})
	if err != nil {
		return err
	}

	e := &env{cfg: cfg, logger: logger, service: service, out: stdout}
	err = e.dispatch(fs.Arg(0), fs.Args()[1:])

	if *metricsFile != "" {
		if werr := prometheus.WriteToTextfile(*metricsFile, reg); werr != nil {
			logger.Error("writing metrics", "path", *metricsFile, "error", werr)
		}
	}
	return err
}

func newLogger(cfg config.LogConfig, w io.Writer) (*slog.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if strings.EqualFold(cfg.Format, "text") {
		handler = slog.NewTextHandler(w, opts)
	} else {
		handler = slog.NewJSONHandler(w, opts)
	}
	return slog.New(privacylog.WrapHandler(handler)), nil
}

func (e *env) dispatch(command string, args []string) error {
	commands := map[string]func([]string) error{
		"keygen":     e.keygen,
		"stealth":    e.stealth,
		"recover":    e.recover,
		"descriptor": e.descriptor,
		"open":       e.open,
		"split":      e.split,
		"combine":    e.combine,
		"level":      e.level,
		"pools":      e.pools,
		"deposit":    e.deposit,
		"withdraw":   e.withdraw,
	}
	f, ok := commands[command]
	if !ok {
		return fmt.Errorf("unknown command %q", command)
	}
	return f(args)
}

func (e *env) print(v interface{}) error {
	enc := json.NewEncoder(e.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// splitList splits a comma separated flag value, dropping empty items.
func splitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
