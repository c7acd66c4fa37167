package storage

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"liquidityShaper/internal/model"
)

func TestJsonlStorageAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "positions.jsonl")
	sink := NewJsonlStorage(path)

	pair := model.DirectedUnitPair{Start: model.Unit{Denom: "gm"}, End: model.Unit{Denom: "gn"}}
	positions := []model.Position{
		{Pair: pair, LowerTick: -10, UpperTick: 0, Reserves: model.Reserves{R2: model.NewAmount(7)}, FeeBps: 30},
		{Pair: pair, LowerTick: 0, UpperTick: 10, Reserves: model.Reserves{R1: model.NewAmount(5)}, FeeBps: 30},
	}
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	if err := sink.PutPositions(context.Background(), BuildRecords("run-1", positions, created)); err != nil {
		t.Fatalf("first batch: %v", err)
	}
	if err := sink.PutPositions(context.Background(), BuildRecords("run-2", positions[:1], created)); err != nil {
		t.Fatalf("second batch: %v", err)
	}
	if err := sink.PutPositions(context.Background(), nil); err != nil {
		t.Fatalf("empty batch: %v", err)
	}

	file, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer file.Close()

	var records []model.PositionRecord
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		var record model.PositionRecord
		if err := json.Unmarshal(scanner.Bytes(), &record); err != nil {
			t.Fatalf("decode line: %v", err)
		}
		records = append(records, record)
	}
	if err := scanner.Err(); err != nil {
		t.Fatalf("scan: %v", err)
	}

	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(records))
	}
	if records[1].RunID != "run-1" || records[1].Index != 1 || records[1].Reserve1 != "5" || records[1].Reserve2 != "0" {
		t.Fatalf("unexpected record: %+v", records[1])
	}
	if records[2].RunID != "run-2" || records[2].Start != "gm" || records[2].End != "gn" {
		t.Fatalf("unexpected record: %+v", records[2])
	}
	if records[0].CreatedAt != "2024-01-01T00:00:00Z" {
		t.Fatalf("created_at mismatch: %s", records[0].CreatedAt)
	}
}
