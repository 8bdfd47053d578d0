package database

import (
	"context"
	"fmt"
	"time"
)

// CleanupOldStats deletes usage rows dated before now minus retentionDays. A
// non-positive retention keeps everything.
func (s *TriggerStatsDB) CleanupOldStats(ctx context.Context, now time.Time, retentionDays int) (int64, error) {
	if retentionDays <= 0 {
		return 0, nil
	}

	cutoff := now.UTC().AddDate(0, 0, -retentionDays).Format(dateLayout)
	res, err := s.db.ExecContext(ctx, "DELETE FROM trigger_stats WHERE date < ?", cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete stats before %s: %w", cutoff, err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count deleted stats: %w", err)
	}
	return rows, nil
}
