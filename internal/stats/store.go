// Package stats persists per-player match results in a local SQLite
// database, keeping lifetime kill/death tallies across server restarts.
package stats

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// PlayerRecord is one row of the persisted leaderboard.
type PlayerRecord struct {
	Name   string `json:"name"`
	Kills  int    `json:"kills"`
	Deaths int    `json:"deaths"`
}

// Store wraps the stats database. Safe for concurrent use; database/sql
// serializes access to the single writer SQLite allows.
type Store struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS player_stats (
	name   TEXT PRIMARY KEY,
	kills  INTEGER NOT NULL DEFAULT 0,
	deaths INTEGER NOT NULL DEFAULT 0,
	updated_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_player_stats_kills ON player_stats(kills DESC);
`

// Open opens (creating if needed) the stats database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open stats db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init stats schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// RecordKill bumps the killer's kill count and the victim's death count in
// one transaction.
func (s *Store) RecordKill(killer, victim string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	now := time.Now().Unix()
	upsert := `
INSERT INTO player_stats (name, kills, deaths, updated_at) VALUES (?, ?, ?, ?)
ON CONFLICT(name) DO UPDATE SET kills = kills + excluded.kills,
	deaths = deaths + excluded.deaths, updated_at = excluded.updated_at`

	if _, err := tx.Exec(upsert, killer, 1, 0, now); err != nil {
		return err
	}
	if _, err := tx.Exec(upsert, victim, 0, 1, now); err != nil {
		return err
	}
	return tx.Commit()
}

// TopPlayers returns up to limit players ordered by kills, then name.
func (s *Store) TopPlayers(limit int) ([]PlayerRecord, error) {
	rows, err := s.db.Query(
		`SELECT name, kills, deaths FROM player_stats ORDER BY kills DESC, name ASC LIMIT ?`,
		limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []PlayerRecord
	for rows.Next() {
		var rec PlayerRecord
		if err := rows.Scan(&rec.Name, &rec.Kills, &rec.Deaths); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// PlayerByName fetches one player's lifetime record.
func (s *Store) PlayerByName(name string) (PlayerRecord, error) {
	var rec PlayerRecord
	err := s.db.QueryRow(
		`SELECT name, kills, deaths FROM player_stats WHERE name = ?`, name).
		Scan(&rec.Name, &rec.Kills, &rec.Deaths)
	return rec, err
}
