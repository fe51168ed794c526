package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // dialect registration
	_ "github.com/doug-martin/goqu/v9/dialect/sqlite3"  // dialect registration
	"github.com/erp/returns/internal/domain/returns"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

const returnRecordsTable = "return_records"

// statsRow is the sqlx scan target for one reporting row
type statsRow struct {
	Status         string              `db:"status"`
	ReturnCategory string              `db:"return_category"`
	SourceType     string              `db:"source_type"`
	ResolutionType sql.NullString      `db:"resolution_type"`
	LocationID     uuid.UUID           `db:"location_id"`
	ReturnReason   sql.NullString      `db:"return_reason"`
	Quantity       int                 `db:"quantity"`
	ProductValue   decimal.Decimal     `db:"product_value"`
	RefundAmount   decimal.NullDecimal `db:"refund_amount"`
	CreatedAt      time.Time           `db:"created_at"`
	CompletedAt    sql.NullTime        `db:"completed_at"`
}

func (r statsRow) toDomain() returns.StatsRow {
	out := returns.StatsRow{
		Status:         returns.ReturnStatus(r.Status),
		ReturnCategory: returns.ReturnCategory(r.ReturnCategory),
		SourceType:     returns.SourceType(r.SourceType),
		ResolutionType: returns.ResolutionType(r.ResolutionType.String),
		LocationID:     r.LocationID,
		ReturnReason:   r.ReturnReason.String,
		Quantity:       r.Quantity,
		ProductValue:   r.ProductValue,
		CreatedAt:      r.CreatedAt,
	}
	if r.RefundAmount.Valid {
		amount := r.RefundAmount.Decimal
		out.RefundAmount = &amount
	}
	if r.CompletedAt.Valid {
		completed := r.CompletedAt.Time
		out.CompletedAt = &completed
	}
	return out
}

// SqlxStatsReader loads reporting projections with goqu-built SQL over sqlx.
// It reads a narrow column set instead of hydrating full aggregates.
type SqlxStatsReader struct {
	db      *sqlx.DB
	dialect goqu.DialectWrapper
}

// NewSqlxStatsReader creates a stats reader; driver is "postgres" or "sqlite"
func NewSqlxStatsReader(db *sqlx.DB, driver string) *SqlxStatsReader {
	dialect := "postgres"
	if driver == "sqlite" || driver == "sqlite3" {
		dialect = "sqlite3"
	}
	return &SqlxStatsReader{db: db, dialect: goqu.Dialect(dialect)}
}

// NewStatsReaderFromDatabase builds a stats reader sharing the GORM connection pool
func NewStatsReaderFromDatabase(d *Database) (*SqlxStatsReader, error) {
	db, err := d.Sqlx()
	if err != nil {
		return nil, err
	}
	return NewSqlxStatsReader(db, d.Driver()), nil
}

// LoadStatsRows returns the projection of every return in scope
func (r *SqlxStatsReader) LoadStatsRows(ctx context.Context, scope returns.StatsScope) ([]returns.StatsRow, error) {
	query, args, err := r.buildStatsQuery(scope)
	if err != nil {
		return nil, fmt.Errorf("build stats query: %w", err)
	}

	var rows []statsRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("load stats rows: %w", err)
	}

	out := make([]returns.StatsRow, len(rows))
	for i := range rows {
		out[i] = rows[i].toDomain()
	}
	return out, nil
}

func (r *SqlxStatsReader) buildStatsQuery(scope returns.StatsScope) (string, []any, error) {
	stmt := r.dialect.
		From(returnRecordsTable).
		Prepared(true).
		Select(
			"status", "return_category", "source_type", "resolution_type", "location_id",
			"return_reason", "quantity", "product_value", "refund_amount", "created_at", "completed_at",
		).
		Order(goqu.I("created_at").Asc())

	if scope.LocationID != nil {
		stmt = stmt.Where(goqu.C("location_id").Eq(scope.LocationID.String()))
	}
	if scope.DateFrom != nil {
		stmt = stmt.Where(goqu.C("created_at").Gte(*scope.DateFrom))
	}
	if scope.DateTo != nil {
		stmt = stmt.Where(goqu.C("created_at").Lte(*scope.DateTo))
	}
	return stmt.ToSQL()
}

var _ returns.StatsReader = (*SqlxStatsReader)(nil)
