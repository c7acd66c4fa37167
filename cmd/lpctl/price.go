package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"math/big"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"liquidityShaper/internal/chain"
	"liquidityShaper/internal/config"
	"liquidityShaper/internal/dex"
	"liquidityShaper/internal/model"
)

// resolvePrice returns the explicit price, or reads the pool's spot price
// and asks for confirmation unless --yes is set.
func resolvePrice(ctx context.Context, cmd *cobra.Command, cfg config.ApproximateConfig, pair model.DirectedUnitPair, logger *zap.Logger) (float64, error) {
	if cfg.CurrentPrice != nil {
		return *cfg.CurrentPrice, nil
	}
	if cfg.RPCURL == "" || cfg.Pool == "" {
		return 0, fmt.Errorf("current-price is required unless rpc and pool are set")
	}

	pool, err := dex.ParsePoolAddress(cfg.Pool)
	if err != nil {
		return 0, err
	}

	client, err := chain.NewClient(ctx, cfg.RPCURL)
	if err != nil {
		return 0, fmt.Errorf("dial rpc: %w", err)
	}
	defer client.Close()

	var head uint64
	if err := chain.WithRetry(ctx, cfg.MaxRetries, cfg.RetryBackoff, func(ctx context.Context) error {
		var err error
		head, err = client.LatestBlockNumber(ctx)
		return err
	}); err != nil {
		return 0, fmt.Errorf("latest block: %w", err)
	}

	block := new(big.Int).SetUint64(head)
	var state dex.PoolPrice
	if err := chain.WithRetry(ctx, cfg.MaxRetries, cfg.RetryBackoff, func(ctx context.Context) error {
		var err error
		state, err = dex.FetchPoolPrice(ctx, client, pool, block)
		return err
	}); err != nil {
		return 0, fmt.Errorf("fetch pool price: %w", err)
	}

	price, err := state.PriceFor(pair)
	if err != nil {
		return 0, err
	}
	logger.Info("pool price",
		zap.String("pool", pool.Hex()),
		zap.Uint64("block", head),
		zap.Int32("tick", state.Tick),
		zap.Uint32("fee", state.Fee),
		zap.Float64("price", price),
	)

	if cfg.Yes {
		return price, nil
	}
	question := fmt.Sprintf("Current price of %s is %g %s per %s. Continue?", pair.Start, price, pair.End, pair.Start)
	ok, err := confirm(cmd.InOrStdin(), cmd.ErrOrStderr(), question)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, fmt.Errorf("aborted by user")
	}
	return price, nil
}

// confirm asks a yes/no question; anything other than y or yes declines.
func confirm(in io.Reader, out io.Writer, question string) (bool, error) {
	if _, err := fmt.Fprintf(out, "%s [y/N]: ", question); err != nil {
		return false, err
	}
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && err != io.EOF {
		return false, fmt.Errorf("read answer: %w", err)
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}
