package storage

import (
	"time"

	"liquidityShaper/internal/model"
)

// BuildRecords flattens positions into sink rows sharing one run id.
func BuildRecords(runID string, positions []model.Position, createdAt time.Time) []model.PositionRecord {
	records := make([]model.PositionRecord, 0, len(positions))
	for i, pos := range positions {
		records = append(records, model.PositionRecord{
			RunID:     runID,
			Index:     i,
			Start:     pos.Pair.Start.Denom,
			End:       pos.Pair.End.Denom,
			LowerTick: pos.LowerTick,
			UpperTick: pos.UpperTick,
			Reserve1:  pos.Reserves.R1.String(),
			Reserve2:  pos.Reserves.R2.String(),
			FeeBps:    pos.FeeBps,
			CreatedAt: createdAt.UTC().Format(time.RFC3339Nano),
		})
	}
	return records
}
