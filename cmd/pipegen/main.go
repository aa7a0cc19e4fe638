package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"go.uber.org/zap"

	"github.com/llxisdsh/pipex/manifest"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "pipegen:", err)
		os.Exit(1)
	}
}

func run() error {
	opts, err := manifest.OptionsFromEnv()
	if err != nil {
		return err
	}

	// Flags default to the environment so either can drive a run.
	out := flag.String("out", opts.Out, "output directory")
	caps := flag.String("caps", joinInts(opts.Caps), "target capability levels, comma separated")
	names := flag.String("names", strings.Join(opts.Names, ","), "keep only matching names, '*' matches any run of characters")
	ignore := flag.String("ignore", strings.Join(opts.Ignore, ","), "drop matching names")
	jobs := flag.Int("jobs", opts.Jobs, "parallel emit jobs, 0 means GOMAXPROCS")
	pkg := flag.String("package", opts.Package, "package clause of generated files")
	dev := flag.Bool("dev", false, "development logging")
	flag.Parse()

	opts.Out = *out
	opts.Names = splitList(*names)
	opts.Ignore = splitList(*ignore)
	opts.Jobs = *jobs
	opts.Package = *pkg
	if opts.Caps, err = parseCaps(*caps); err != nil {
		return err
	}

	log, err := newLogger(*dev)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cat := manifest.Build(opts, log)
	log.Info("catalogue built",
		zap.Int("configs", cat.Count()),
		zap.Ints("caps", opts.Caps))
	return cat.Emit(ctx, opts.Out)
}

func newLogger(dev bool) (*zap.Logger, error) {
	if dev {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func parseCaps(s string) ([]int, error) {
	parts := splitList(s)
	caps := make([]int, 0, len(parts))
	for _, p := range parts {
		v, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("capability %q: %w", p, err)
		}
		caps = append(caps, v)
	}
	return caps, nil
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

func joinInts(vs []int) string {
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, ",")
}
