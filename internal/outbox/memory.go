package outbox

import (
	"fmt"
	"sync"
	"time"

	"github.com/desertthunder/crate/internal/shared"
)

// Memory implements [Journal] in process memory. Used when no outbox
// database is configured, and by tests.
type Memory struct {
	mu       sync.Mutex
	sequence int
	commands []Command
}

// NewMemory creates an empty in-memory journal.
func NewMemory() *Memory {
	return &Memory{}
}

// Record persists a new command with pending status.
func (m *Memory) Record(cmd *Command) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.sequence++
	now := time.Now()
	cmd.ID = shared.GenerateID()
	cmd.Sequence = m.sequence
	cmd.Status = StatusPending
	cmd.CreatedAt = now
	cmd.UpdatedAt = now

	m.commands = append(m.commands, *cmd)
	return nil
}

// SetStatus updates delivery state after an attempt.
func (m *Memory) SetStatus(id string, status Status, attempts int, lastError string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.commands {
		if m.commands[i].ID == id {
			m.commands[i].Status = status
			m.commands[i].Attempts = attempts
			m.commands[i].LastError = lastError
			m.commands[i].UpdatedAt = time.Now()
			return nil
		}
	}
	return fmt.Errorf("command not found: %s", id)
}

// List returns the most recent commands for a user, newest first.
func (m *Memory) List(userID string, limit int) ([]Command, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if limit <= 0 {
		limit = 50
	}

	var out []Command
	for i := len(m.commands) - 1; i >= 0 && len(out) < limit; i-- {
		if m.commands[i].UserID == userID {
			out = append(out, m.commands[i])
		}
	}
	return out, nil
}
