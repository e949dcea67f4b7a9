// raycon-instruct publishes one UI instruction to the event channel.
//
// Usage:
//
//	raycon-instruct -command showSalesTrendTable -params '{"title":"Q1"}' [-record 001A]
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/roboricindustries/raycon-display/pkg/config"
	"github.com/roboricindustries/raycon-display/pkg/logging"
	"github.com/roboricindustries/raycon-display/pkg/pubsub"
	uiv1 "github.com/roboricindustries/raycon-display/pkg/schemas/uiinstruction/v1"
)

func main() {
	cfgPath := flag.String("config", "", "Path to config.toml")
	command := flag.String("command", "", "Instruction command, e.g. showAccountInfo")
	params := flag.String("params", "", "Parameters__c value (usually JSON)")
	record := flag.String("record", "", "RecordId__c value")
	producer := flag.String("producer", "raycon-instruct", "Producer recorded in the envelope meta")
	timeout := flag.Duration("timeout", 30*time.Second, "Overall publish timeout")
	flag.Parse()

	if err := run(*cfgPath, *command, *params, *record, *producer, *timeout); err != nil {
		fmt.Fprintf(os.Stderr, "raycon-instruct: %v\n", err)
		os.Exit(1)
	}
}

func run(cfgPath, command, params, record, producer string, timeout time.Duration) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger := logging.New(os.Stderr, cfg.Log.Level, cfg.Log.Format)

	msg := uiv1.NewMessage(command, params, record)
	if producer != "" {
		msg.Meta.Producer = &producer
	}
	if err := uiv1.Validate(msg); err != nil {
		var ve *uiv1.ValidationError
		if errors.As(err, &ve) {
			for _, is := range ve.Issues {
				logger.Error("invalid instruction", slog.String("field", is.Field), slog.String("reason", is.Reason))
			}
		}
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var pub pubsub.Publisher
	if cfg.Transport.Kind == config.TransportMemory {
		pub = pubsub.NewFallback(logger)
	} else {
		conn, err := pubsub.DialWithRetry(ctx, pubsub.ConnectionOptions{
			URL:           cfg.Transport.URL,
			RetryAttempts: cfg.Transport.RetryAttempts,
			Delay:         cfg.Transport.RetryDelay.Duration,
			Logger:        logger,
		})
		if err != nil {
			return err
		}
		pub, err = pubsub.NewPublisher(conn, cfg.Transport.Exchange, logger)
		if err != nil {
			return fmt.Errorf("create publisher: %w", err)
		}
	}
	defer pub.Close()

	return pub.Publish(ctx, cfg.Display.Channel, msg.Untyped())
}
