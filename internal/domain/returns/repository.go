package returns

import (
	"context"
	"time"

	"github.com/erp/returns/internal/domain/shared"
	"github.com/google/uuid"
)

// ReturnFilter narrows list and count queries
type ReturnFilter struct {
	shared.Filter
	LocationID     *uuid.UUID
	Status         ReturnStatus
	ReturnCategory ReturnCategory
	SourceType     SourceType
	DateFrom       *time.Time
	DateTo         *time.Time
}

// DefaultReturnFilter returns a filter for the first page ordered by newest first
func DefaultReturnFilter() ReturnFilter {
	return ReturnFilter{Filter: shared.DefaultFilter()}
}

// ReturnRecordRepository defines the interface for return record persistence
type ReturnRecordRepository interface {
	// FindByID finds a return by ID, including inspection history and audit trail
	FindByID(ctx context.Context, id uuid.UUID) (*ReturnRecord, error)

	// FindByReturnNumber finds a return by its human readable number
	FindByReturnNumber(ctx context.Context, returnNumber string) (*ReturnRecord, error)

	// FindAll finds returns matching the filter, without history rows
	FindAll(ctx context.Context, filter ReturnFilter) ([]ReturnRecord, error)

	// Count counts returns matching the filter
	Count(ctx context.Context, filter ReturnFilter) (int64, error)

	// Create inserts a new return with its initial audit entry
	Create(ctx context.Context, r *ReturnRecord) error

	// SaveWithLock updates an existing return if its stored version still
	// matches, and appends any new inspection and audit rows
	SaveWithLock(ctx context.Context, r *ReturnRecord) error

	// GenerateReturnNumber allocates the next RTN-YYYY-NNNNN number
	GenerateReturnNumber(ctx context.Context) (string, error)
}

// StatsScope restricts stats and analytics to a location and a creation window
type StatsScope struct {
	LocationID *uuid.UUID
	DateFrom   *time.Time
	DateTo     *time.Time
}

// StatsReader loads the rows that the stats aggregator folds
type StatsReader interface {
	LoadStatsRows(ctx context.Context, scope StatsScope) ([]StatsRow, error)
}

// AttachmentRepository stores inspection evidence metadata
type AttachmentRepository interface {
	Create(ctx context.Context, a *Attachment) error
	FindByReturnID(ctx context.Context, returnID uuid.UUID) ([]Attachment, error)
}
