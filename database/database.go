package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3" // Import the SQLite3 driver
	"go.uber.org/zap"
)

// InitDB opens the sqlite database at dbPath, creating its directory and the
// schema when missing.
func InitDB(dbPath string, logger *zap.Logger) (*sql.DB, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	// Ensure the directory for the database file exists.
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err = db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// sqlite allows a single writer.
	db.SetMaxOpenConns(1)

	if err := createTriggerStatsTable(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create trigger_stats table: %w", err)
	}

	logger.Info("Connected to the database", zap.String("path", dbPath))
	return db, nil
}

func createTriggerStatsTable(db *sql.DB) error {
	query := `
    CREATE TABLE IF NOT EXISTS trigger_stats (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        guild_id TEXT NOT NULL,
        trigger_name TEXT NOT NULL,
        lang TEXT NOT NULL,
        date TEXT NOT NULL,
        uses INTEGER NOT NULL DEFAULT 0,
        updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
        UNIQUE(guild_id, trigger_name, lang, date)
    );`
	_, err := db.Exec(query)
	return err
}
