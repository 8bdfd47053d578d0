package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

const dateLayout = "2006-01-02"

// TriggerUse is the usage total of one trigger over a date range.
type TriggerUse struct {
	Trigger string
	Lang    string
	Uses    int
}

// TriggerStatsDB counts trigger deliveries per guild and day.
type TriggerStatsDB struct {
	db        *sql.DB
	increment *sql.Stmt
}

// NewTriggerStatsDB prepares the statements used on the hot path. The caller
// keeps ownership of db.
func NewTriggerStatsDB(db *sql.DB) (*TriggerStatsDB, error) {
	stmt, err := db.Prepare(`
    INSERT INTO trigger_stats (guild_id, trigger_name, lang, date, uses)
    VALUES (?, ?, ?, ?, 1)
    ON CONFLICT(guild_id, trigger_name, lang, date)
    DO UPDATE SET uses = uses + 1, updated_at = CURRENT_TIMESTAMP`)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare increment statement: %w", err)
	}
	return &TriggerStatsDB{db: db, increment: stmt}, nil
}

// Close releases the prepared statements.
func (s *TriggerStatsDB) Close() error {
	return s.increment.Close()
}

// IncrementUse records one delivery of trigger on day (UTC date).
func (s *TriggerStatsDB) IncrementUse(ctx context.Context, guildID, trigger, lang string, day time.Time) error {
	date := day.UTC().Format(dateLayout)
	if _, err := s.increment.ExecContext(ctx, guildID, trigger, lang, date); err != nil {
		return fmt.Errorf("failed to increment usage of %s: %w", trigger, err)
	}
	return nil
}

// UsesOn returns the counter for one trigger on one day.
func (s *TriggerStatsDB) UsesOn(ctx context.Context, guildID, trigger, lang string, day time.Time) (int, error) {
	var uses int
	err := s.db.QueryRowContext(ctx,
		"SELECT uses FROM trigger_stats WHERE guild_id = ? AND trigger_name = ? AND lang = ? AND date = ?",
		guildID, trigger, lang, day.UTC().Format(dateLayout)).Scan(&uses)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to query usage of %s: %w", trigger, err)
	}
	return uses, nil
}

// TopTriggers sums uses since the given day and returns the most used
// triggers, highest first.
func (s *TriggerStatsDB) TopTriggers(ctx context.Context, guildID string, since time.Time, limit int) ([]TriggerUse, error) {
	rows, err := s.db.QueryContext(ctx, `
    SELECT trigger_name, lang, SUM(uses) AS total
    FROM trigger_stats
    WHERE guild_id = ? AND date >= ?
    GROUP BY trigger_name, lang
    ORDER BY total DESC, trigger_name ASC
    LIMIT ?`, guildID, since.UTC().Format(dateLayout), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query top triggers: %w", err)
	}
	defer rows.Close()

	var out []TriggerUse
	for rows.Next() {
		var u TriggerUse
		if err := rows.Scan(&u.Trigger, &u.Lang, &u.Uses); err != nil {
			return nil, fmt.Errorf("failed to scan trigger usage: %w", err)
		}
		out = append(out, u)
	}
	return out, rows.Err()
}
