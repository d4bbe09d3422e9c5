// Command catalogctl queues catalog maintenance jobs and previews SKU combinations offline.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/igourd/igourd-pos/internal/app"
	"github.com/igourd/igourd-pos/internal/catalog"
	"github.com/igourd/igourd-pos/internal/catalog/variants"
	"github.com/igourd/igourd-pos/jobs"
)

const usage = `usage: catalogctl <command> [args]

commands:
  reset                      queue a catalog reset to the bootstrap dataset
  regenerate <product-id>    queue a SKU regeneration for one product
  preview [-limit n] <file>  print the SKUs generated from {"units":[...],"specifications":[...]}
`

var errUsage = errors.New("invalid usage")

// enqueuer is the part of *jobs.Client the commands use.
type enqueuer interface {
	EnqueueReset(ctx context.Context) (*asynq.TaskInfo, error)
	EnqueueRegenerateSKUs(ctx context.Context, productID string) (*asynq.TaskInfo, error)
}

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping catalogctl")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	var client *jobs.Client
	newClient := func() enqueuer {
		client = jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
		return client
	}
	err = run(ctx, os.Args[1:], os.Stdout, newClient, cfg.CatalogMaxCombinations)
	if client != nil {
		_ = client.Close()
	}
	if errors.Is(err, errUsage) {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "catalogctl:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, out io.Writer, newClient func() enqueuer, defaultLimit int) error {
	if len(args) == 0 {
		return errUsage
	}
	switch args[0] {
	case "reset":
		if len(args) != 1 {
			return errUsage
		}
		info, err := newClient().EnqueueReset(ctx)
		if errors.Is(err, asynq.ErrDuplicateTask) {
			fmt.Fprintln(out, "reset already queued")
			return nil
		}
		if err != nil {
			return fmt.Errorf("enqueue reset: %w", err)
		}
		fmt.Fprintf(out, "queued %s (%s)\n", info.Type, info.ID)
		return nil
	case "regenerate":
		if len(args) != 2 {
			return errUsage
		}
		info, err := newClient().EnqueueRegenerateSKUs(ctx, args[1])
		if err != nil {
			return fmt.Errorf("enqueue regenerate: %w", err)
		}
		fmt.Fprintf(out, "queued %s for product %s (%s)\n", info.Type, args[1], info.ID)
		return nil
	case "preview":
		return preview(args[1:], out, defaultLimit)
	default:
		return errUsage
	}
}

type previewInput struct {
	Units          []catalog.Unit          `json:"units"`
	Specifications []catalog.Specification `json:"specifications"`
}

func preview(args []string, out io.Writer, defaultLimit int) error {
	fs := flag.NewFlagSet("preview", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	limit := fs.Int("limit", defaultLimit, "maximum number of combinations")
	if err := fs.Parse(args); err != nil || fs.NArg() != 1 {
		return errUsage
	}

	data, err := os.ReadFile(fs.Arg(0))
	if err != nil {
		return err
	}
	var input previewInput
	if err := json.Unmarshal(data, &input); err != nil {
		return fmt.Errorf("parse %s: %w", fs.Arg(0), err)
	}
	result, err := variants.PreviewCombinations(input.Units, input.Specifications, *limit)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}
