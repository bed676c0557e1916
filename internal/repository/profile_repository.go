package repository

import (
	"context"

	"github.com/gdugdh24/mpit2026-pools/internal/domain"
)

// ProfileReader pages through the whole profile collection ordered by user ID.
// Pages are read without snapshot isolation: profiles written during a scan
// may or may not be seen.
type ProfileReader interface {
	// ScanPage returns up to limit records with user ID strictly greater than afterUserID.
	// An empty afterUserID starts from the beginning.
	ScanPage(ctx context.Context, afterUserID string, limit int) ([]*domain.ProfileRecord, error)
}
