// package outbox journals every remote command the sync engine issues.
//
// Each optimistic local mutation produces one Command per remote call. The
// queue worker updates the command's status after the delivery attempt, so
// the journal records exactly how far the remote store trails the local
// mirror. Delivery is best-effort: with retries disabled (the default) a
// failed command stays failed until an unrelated mutation on the same entity
// resubmits its state.
package outbox

import (
	"encoding/json"
	"time"
)

// Status describes the delivery state of a journaled command.
type Status string

const (
	StatusPending Status = "pending"
	StatusSynced  Status = "synced"
	StatusFailed  Status = "failed"
	StatusSkipped Status = "skipped" // no credential at dequeue time
	StatusAborted Status = "aborted" // session ended before delivery
)

// Entity names used in journal rows.
const (
	EntityRating   = "rating"
	EntityTheme    = "theme"
	EntityLink     = "theme_link"
	EntitySong     = "song"
	EntityPlaylist = "playlist"
)

// Op names used in journal rows.
const (
	OpUpsert   = "upsert"
	OpDelete   = "delete"
	OpAssign   = "assign"
	OpUnassign = "unassign"
	OpImport   = "import"
)

// Command is one journaled remote call.
type Command struct {
	ID        string
	Sequence  int
	UserID    string
	Entity    string
	Op        string
	Payload   json.RawMessage
	Status    Status
	Attempts  int
	LastError string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Journal records commands and their delivery outcomes.
type Journal interface {
	// Record persists a new command with pending status, assigning its id
	// and sequence number.
	Record(cmd *Command) error

	// SetStatus updates delivery state after an attempt.
	SetStatus(id string, status Status, attempts int, lastError string) error

	// List returns the most recent commands for a user, newest first.
	List(userID string, limit int) ([]Command, error)
}
