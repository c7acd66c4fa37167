package main

import (
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"liquidityShaper/internal/approximate"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "lpctl",
		Short:        "Liquidity position tooling",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")

	approximateCmd := &cobra.Command{
		Use:   "approximate",
		Short: "Approximate AMM curves with bounded-range positions",
	}

	constantProductCmd := &cobra.Command{
		Use:     "constant-product <pair> <input>",
		Aliases: []string{"xyk"},
		Short:   "Approximate a constant-product curve, e.g. `xyk gm:gn 1000000gm`",
		Args:    cobra.ExactArgs(2),
		RunE:    runConstantProduct,
	}

	flags := constantProductCmd.Flags()
	flags.Float64P("current-price", "c", 0, "price in units of end per start (queried from --pool when omitted)")
	flags.Uint32P("fee-bps", "f", 0, "fee attached to every position, in bps (max 5000)")
	flags.BoolP("yes", "y", false, "skip all prompts and accept")
	flags.StringP("debug-file", "d", "", "write the sampling trace to this path")
	flags.Int("precision", approximate.NumPoolsPrecision, "number of positions")
	flags.Float64("span", approximate.DefaultSpan, "outermost range boundaries at price/span and price*span")
	flags.String("rpc", "", "RPC URL for pool price lookup")
	flags.String("pool", "", "V3 pool address for pool price lookup")
	flags.Int("max-retries", 5, "maximum retry attempts for RPC calls")
	flags.Duration("retry-backoff", 500*time.Millisecond, "initial retry backoff")
	flags.String("out", "", "append position records to this JSONL file")
	flags.String("pg-dsn", "", "Postgres DSN for storing position records")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")
	_ = flags.MarkHidden("debug-file")

	approximateCmd.AddCommand(constantProductCmd)
	root.AddCommand(approximateCmd)

	return root
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}
