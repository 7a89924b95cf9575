package outbox

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/crate/internal/shared"
)

// Repository implements [Journal] on SQLite.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a Repository with the given database connection.
// The outbox tables must exist; see [shared.RunMigrations].
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// nextSequence atomically increments and returns the next command sequence.
// Sequence numbers give a stable submission order independent of uuids and
// timestamps.
func nextSequence(db *sql.DB) (int, error) {
	tx, err := db.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("UPDATE outbox_commands_sequence SET value = value + 1 WHERE id = 1"); err != nil {
		return 0, fmt.Errorf("failed to increment sequence: %w", err)
	}

	var sequence int
	if err := tx.QueryRow("SELECT value FROM outbox_commands_sequence WHERE id = 1").Scan(&sequence); err != nil {
		return 0, fmt.Errorf("failed to get sequence value: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit sequence transaction: %w", err)
	}

	return sequence, nil
}

// Record persists a new command with pending status.
func (r *Repository) Record(cmd *Command) error {
	sequence, err := nextSequence(r.db)
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	now := time.Now()
	cmd.ID = shared.GenerateID()
	cmd.Sequence = sequence
	cmd.Status = StatusPending
	cmd.CreatedAt = now
	cmd.UpdatedAt = now

	query := `
		INSERT INTO outbox_commands (id, sequence, user_id, entity, op, payload, status, attempts, last_error, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query,
		cmd.ID,
		cmd.Sequence,
		cmd.UserID,
		cmd.Entity,
		cmd.Op,
		string(cmd.Payload),
		cmd.Status,
		cmd.Attempts,
		cmd.LastError,
		cmd.CreatedAt,
		cmd.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert command: %w", err)
	}

	return nil
}

// SetStatus updates delivery state after an attempt.
func (r *Repository) SetStatus(id string, status Status, attempts int, lastError string) error {
	query := `
		UPDATE outbox_commands
		SET status = ?, attempts = ?, last_error = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := r.db.Exec(query, status, attempts, lastError, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update command: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("command not found: %s", id)
	}

	return nil
}

// List returns the most recent commands for a user, newest first.
func (r *Repository) List(userID string, limit int) ([]Command, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT id, sequence, user_id, entity, op, payload, status, attempts, last_error, created_at, updated_at
		FROM outbox_commands
		WHERE user_id = ?
		ORDER BY sequence DESC
		LIMIT ?
	`

	rows, err := r.db.Query(query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query commands: %w", err)
	}
	defer rows.Close()

	var commands []Command
	for rows.Next() {
		var (
			cmd     Command
			payload string
		)
		if err := rows.Scan(
			&cmd.ID,
			&cmd.Sequence,
			&cmd.UserID,
			&cmd.Entity,
			&cmd.Op,
			&payload,
			&cmd.Status,
			&cmd.Attempts,
			&cmd.LastError,
			&cmd.CreatedAt,
			&cmd.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan command: %w", err)
		}
		cmd.Payload = []byte(payload)
		commands = append(commands, cmd)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return commands, nil
}
