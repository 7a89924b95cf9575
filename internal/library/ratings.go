package library

import (
	"context"
	"fmt"
	"time"

	"github.com/desertthunder/crate/internal/models"
	"github.com/desertthunder/crate/internal/outbox"
	"github.com/desertthunder/crate/internal/shared"
)

// SetRating records a 1-10 rating for a song. The range check happens before
// any local or remote mutation; out-of-range values return
// [shared.ErrInvalidRating] synchronously.
func (e *Engine) SetRating(songID string, value int) error {
	if songID == "" {
		return fmt.Errorf("%w: song id required", shared.ErrInvalidInput)
	}
	if value < models.MinRating || value > models.MaxRating {
		return fmt.Errorf("%w: got %d", shared.ErrInvalidRating, value)
	}

	rating := models.Rating{SongID: songID, Value: value, RatedAt: time.Now()}
	e.store.SaveRating(rating)

	e.enqueueCommand(outbox.EntityRating, outbox.OpUpsert, rating, func(ctx context.Context, cred string) error {
		return e.remote.UpsertRating(ctx, cred, rating)
	})
	return nil
}

// RemoveRating deletes the rating for a song.
func (e *Engine) RemoveRating(songID string) error {
	if songID == "" {
		return fmt.Errorf("%w: song id required", shared.ErrInvalidInput)
	}

	e.store.DeleteRating(songID)

	e.enqueueCommand(outbox.EntityRating, outbox.OpDelete, songID, func(ctx context.Context, cred string) error {
		return e.remote.DeleteRating(ctx, cred, songID)
	})
	return nil
}

// Rating returns the rating for a song, if present.
func (e *Engine) Rating(songID string) (models.Rating, bool) {
	return e.store.Rating(songID)
}

// Ratings returns all ratings in the mirror.
func (e *Engine) Ratings() []models.Rating {
	return e.store.Ratings()
}
