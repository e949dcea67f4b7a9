// raycon-display subscribes to the UI instruction channel and renders the
// resulting widget stack.
//
// Usage:
//
//	raycon-display [flags]
//
// Flags:
//
//	--config      Path to config.toml (default: XDG search path)
//	--headless    Log view changes instead of starting the terminal UI
//	--max         Override display.max_display_count
//	--audit-tail  Print the last N audit entries with outcome totals and exit
//	--seed-demo   Load a demo account into the query database before starting
//
// With transport.kind = "memory" and --headless, instructions are read from
// stdin, one JSON payload per line:
//
//	{"Command__c":"showAccountInfo","RecordId__c":"001A"}
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/roboricindustries/raycon-display/pkg/audit"
	"github.com/roboricindustries/raycon-display/pkg/config"
	"github.com/roboricindustries/raycon-display/pkg/display"
	"github.com/roboricindustries/raycon-display/pkg/logging"
	"github.com/roboricindustries/raycon-display/pkg/pubsub"
	"github.com/roboricindustries/raycon-display/pkg/query"
	"github.com/roboricindustries/raycon-display/pkg/schemas/common"
	uiv1 "github.com/roboricindustries/raycon-display/pkg/schemas/uiinstruction/v1"
	"github.com/roboricindustries/raycon-display/pkg/tui"
)

func main() {
	cfgPath := flag.String("config", "", "Path to config.toml")
	headless := flag.Bool("headless", false, "Log view changes instead of starting the terminal UI")
	maxCount := flag.Int("max", 0, "Override display.max_display_count")
	auditTail := flag.Int("audit-tail", 0, "Print the last N audit entries with outcome totals and exit")
	seed := flag.Bool("seed-demo", false, "Load a demo account into the query database before starting")
	flag.Parse()

	var err error
	if *auditTail > 0 {
		err = runAuditTail(*cfgPath, *auditTail)
	} else {
		err = run(*cfgPath, *headless, *maxCount, *seed)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "raycon-display: %v\n", err)
		os.Exit(1)
	}
}

func runAuditTail(cfgPath string, n int) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	store, err := audit.Open(cfg.Audit.Path)
	if err != nil {
		return fmt.Errorf("open audit store: %w", err)
	}
	defer store.Close()
	return printAuditTail(context.Background(), os.Stdout, store, n)
}

func run(cfgPath string, headless bool, maxCount int, seed bool) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if maxCount > 0 {
		cfg.Display.MaxDisplayCount = maxCount
	}

	// the terminal UI owns stdout/stderr, so default the log to a file
	logFile := cfg.Log.File
	if logFile == "" && !headless {
		logFile = filepath.Join(filepath.Dir(cfg.Audit.Path), "display.log")
	}
	logger, logCloser, err := logging.Open(logFile, cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return fmt.Errorf("open log: %w", err)
	}
	defer logCloser.Close()
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	transport, bus, closeTransport, err := openTransport(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeTransport()

	recorder, closeRecorder, err := openRecorder(cfg, logger)
	if err != nil {
		return err
	}
	defer closeRecorder()

	queries, closeQueries, err := openQueries(ctx, cfg, seed, logger)
	if err != nil {
		return err
	}
	defer closeQueries()

	opts := display.Options{
		Channel:         cfg.Display.Channel,
		MaxDisplayCount: cfg.Display.MaxDisplayCount,
		HistorySize:     cfg.Display.HistorySize,
		Recorder:        recorder,
		Logger:          logger,
	}

	if headless {
		opts.OnChange = func(v display.View) {
			keys := make([]string, 0, len(v.Components))
			for _, c := range v.Components {
				keys = append(keys, c.Identity())
			}
			logger.Info("display changed",
				slog.Any("components", keys),
				slog.Int("max_display_count", v.MaxDisplayCount),
				slog.Bool("empty", v.Empty),
			)
		}
		d := display.New(transport, opts)
		d.Mount(ctx)
		d.Wait()
		if bus != nil {
			go feedStdin(ctx, bus, cfg.Display.Channel, os.Stdin, logger)
		}
		<-ctx.Done()
		d.Unmount(context.Background())
		d.Wait()
		return nil
	}

	var program *tea.Program
	opts.OnChange = func(v display.View) {
		program.Send(tui.ViewMsg(v))
	}
	d := display.New(transport, opts)
	program = tea.NewProgram(tui.NewModel(cfg.Display.Channel, d.View(), queries, cfg.Query.Timeout.Duration), tea.WithAltScreen(), tea.WithContext(ctx))

	d.Mount(ctx)
	go func() {
		<-ctx.Done()
		program.Quit()
	}()
	_, runErr := program.Run()

	d.Unmount(context.Background())
	d.Wait()
	if runErr != nil && ctx.Err() == nil {
		return fmt.Errorf("run terminal UI: %w", runErr)
	}
	return nil
}

// openTransport returns the configured transport; bus is non-nil only for the
// in-memory kind.
func openTransport(ctx context.Context, cfg *config.Config, logger *slog.Logger) (pubsub.Transport, *pubsub.Bus, func(), error) {
	if cfg.Transport.Kind == config.TransportMemory {
		bus := pubsub.NewBus(logger)
		return bus, bus, func() { _ = bus.Close() }, nil
	}

	conn, err := pubsub.DialWithRetry(ctx, pubsub.ConnectionOptions{
		URL:           cfg.Transport.URL,
		RetryAttempts: cfg.Transport.RetryAttempts,
		Delay:         cfg.Transport.RetryDelay.Duration,
		Logger:        logger,
	})
	if err != nil {
		return nil, nil, nil, err
	}
	opts := pubsub.SubscriberOptions{
		Exchange:       cfg.Transport.Exchange,
		Prefetch:       cfg.Transport.Prefetch,
		BufferCap:      cfg.Transport.Buffer,
		WorkerCnt:      cfg.Transport.Workers,
		HandlerTimeout: cfg.Transport.HandlerTimeout.Duration,
	}
	if cfg.Transport.DeadLetterExchange != "" {
		opts.DeadLetter = &pubsub.DeadLetterConfig{
			Exchange: cfg.Transport.DeadLetterExchange,
			Queue:    cfg.Transport.DeadLetterQueue,
		}
	}
	t, err := pubsub.NewSubscriber(conn, opts, logger)
	if err != nil {
		conn.Close()
		return nil, nil, nil, fmt.Errorf("start subscriber: %w", err)
	}
	return t, nil, func() { _ = t.Close() }, nil
}

func openRecorder(cfg *config.Config, logger *slog.Logger) (audit.Recorder, func(), error) {
	if !cfg.Audit.Enabled {
		return audit.Nop{Log: logger}, func() {}, nil
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Audit.Path), 0o755); err != nil {
		return nil, nil, fmt.Errorf("create audit dir: %w", err)
	}
	store, err := audit.Open(cfg.Audit.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("open audit store: %w", err)
	}
	return store, func() { _ = store.Close() }, nil
}

// openQueries returns nil when panel queries are disabled; the terminal UI
// then shows configuration only.
func openQueries(ctx context.Context, cfg *config.Config, seed bool, logger *slog.Logger) (query.Service, func(), error) {
	if !cfg.Query.Enabled {
		return nil, func() {}, nil
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Query.Path), 0o755); err != nil {
		return nil, nil, fmt.Errorf("create query dir: %w", err)
	}
	store, err := query.Open(cfg.Query.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("open query store: %w", err)
	}
	if seed {
		if err := seedDemo(ctx, store); err != nil {
			_ = store.Close()
			return nil, nil, fmt.Errorf("seed demo data: %w", err)
		}
		logger.Info("demo data loaded", slog.String("path", cfg.Query.Path))
	}
	return store, func() { _ = store.Close() }, nil
}

func feedStdin(ctx context.Context, bus *pubsub.Bus, channel string, r io.Reader, logger *slog.Logger) {
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		if ctx.Err() != nil {
			return
		}
		line := sc.Bytes()
		if len(line) == 0 {
			continue
		}
		var in uiv1.Instruction
		if err := json.Unmarshal(line, &in); err != nil {
			logger.Warn("stdin: not an instruction", slog.Any("error", err))
			continue
		}
		env := common.NewEnvelope(uiv1.UIInstructionMeta.EventType, uiv1.EventData{Payload: in})
		if err := bus.Publish(ctx, channel, env.Untyped()); err != nil {
			logger.Error("stdin: publish failed", slog.Any("error", err))
		}
	}
}
