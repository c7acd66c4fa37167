package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"liquidityShaper/internal/approximate"
	"liquidityShaper/internal/config"
	"liquidityShaper/internal/model"
	"liquidityShaper/internal/storage"
	"liquidityShaper/internal/storage/postgres"
)

// positionsOutput is the document printed to stdout.
type positionsOutput struct {
	RunID        string               `json:"run_id"`
	Pair         string               `json:"pair"`
	Input        string               `json:"input"`
	CurrentPrice float64              `json:"current_price"`
	TotalK       float64              `json:"total_k"`
	Residual     approximate.Residual `json:"residual"`
	Positions    []model.Position     `json:"positions"`
}

func runConstantProduct(cmd *cobra.Command, args []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadApproximate(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	pair, err := model.ParseDirectedUnitPair(args[0])
	if err != nil {
		return err
	}
	input, err := model.ParseValue(args[1])
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	price, err := resolvePrice(ctx, cmd, cfg, pair, logger)
	if err != nil {
		return err
	}

	engine, err := approximate.NewEngine(approximate.Config{
		Precision: cfg.Precision,
		Span:      cfg.Span,
	}, logger)
	if err != nil {
		return err
	}

	req := approximate.Request{
		Pair:         pair,
		Input:        input,
		CurrentPrice: price,
		FeeBps:       cfg.FeeBps,
	}
	approx, runErr := engine.Run(req, cfg.DebugFile)
	var diagErr *approximate.DiagnosticError
	if runErr != nil && !errors.As(runErr, &diagErr) {
		return runErr
	}

	runID := uuid.NewString()
	out := positionsOutput{
		RunID:        runID,
		Pair:         pair.String(),
		Input:        input.String(),
		CurrentPrice: price,
		TotalK:       approx.TotalK(),
		Residual:     approx.Residual,
		Positions:    approx.Positions,
	}
	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(out); err != nil {
		return fmt.Errorf("write positions: %w", err)
	}

	if err := storePositions(ctx, cfg, runID, approx.Positions, logger); err != nil {
		return err
	}

	logger.Info("approximation complete",
		zap.String("run_id", runID),
		zap.String("pair", pair.String()),
		zap.String("input", input.String()),
		zap.Float64("current_price", price),
		zap.Int("positions", len(approx.Positions)),
		zap.Int("precision", engine.Config().Precision),
		zap.Float64("span", engine.Config().Span),
		zap.Float64("total_k", approx.TotalK()),
		zap.String("residual_input", approx.Residual.Input.String()),
		zap.String("residual_counter", approx.Residual.Counter.String()),
	)

	if diagErr != nil {
		logger.Error("diagnostics failed",
			zap.String("path", diagErr.Path),
			zap.String("stage", diagErr.Stage),
			zap.Error(diagErr.Err),
		)
		return runErr
	}
	return nil
}

func storePositions(ctx context.Context, cfg config.ApproximateConfig, runID string, positions []model.Position, logger *zap.Logger) error {
	var sinks []storage.Storage
	if cfg.Out != "" {
		sinks = append(sinks, storage.NewJsonlStorage(cfg.Out))
	}
	if cfg.PGDSN != "" {
		store, err := postgres.NewStore(ctx, cfg.PGDSN)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		defer store.Close()
		if err := store.EnsureSchema(ctx); err != nil {
			return err
		}
		sinks = append(sinks, store)
	}
	if len(sinks) == 0 {
		return nil
	}

	records := storage.BuildRecords(runID, positions, time.Now())
	for _, sink := range sinks {
		if err := sink.PutPositions(ctx, records); err != nil {
			return fmt.Errorf("store positions: %w", err)
		}
	}
	logger.Info("positions stored", zap.String("run_id", runID), zap.Int("records", len(records)), zap.Int("sinks", len(sinks)))
	return nil
}
