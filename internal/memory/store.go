// Package memory keeps long-term facts and the smoothed intimacy score per user.
package memory

import (
	"context"
	"errors"

	"github.com/easeaico/tsukuyomi/internal/types"
)

// ErrStorage marks I/O or decoding failures inside a Store.
var ErrStorage = errors.New("memory storage failure")

// Store persists one UserRecord per user id.
type Store interface {
	// Load returns (nil, nil) when the user has no record.
	Load(ctx context.Context, userID string) (*types.UserRecord, error)
	// Save upserts the whole record.
	Save(ctx context.Context, rec *types.UserRecord) error
	// Delete removes the record; deleting a missing user is not an error.
	Delete(ctx context.Context, userID string) error
}
