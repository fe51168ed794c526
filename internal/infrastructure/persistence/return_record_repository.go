package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/erp/returns/internal/domain/returns"
	"github.com/erp/returns/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// returnNumberClock supplies the year used in generated return numbers
var returnNumberClock = func() time.Time { return time.Now().UTC() }

// GormReturnRecordRepository implements ReturnRecordRepository using GORM
type GormReturnRecordRepository struct {
	db *gorm.DB
}

// NewGormReturnRecordRepository creates a new GormReturnRecordRepository
func NewGormReturnRecordRepository(db *gorm.DB) *GormReturnRecordRepository {
	return &GormReturnRecordRepository{db: db}
}

func preloadHistory(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Inspections", func(tx *gorm.DB) *gorm.DB { return tx.Order("sequence ASC") }).
		Preload("AuditTrail", func(tx *gorm.DB) *gorm.DB { return tx.Order("sequence ASC") })
}

// FindByID finds a return by its ID with inspection history and audit trail
func (r *GormReturnRecordRepository) FindByID(ctx context.Context, id uuid.UUID) (*returns.ReturnRecord, error) {
	var model models.ReturnRecordModel
	if err := preloadHistory(r.db.WithContext(ctx)).
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, returns.NewNotFoundError(id.String())
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByReturnNumber finds a return by its RTN number
func (r *GormReturnRecordRepository) FindByReturnNumber(ctx context.Context, returnNumber string) (*returns.ReturnRecord, error) {
	var model models.ReturnRecordModel
	if err := preloadHistory(r.db.WithContext(ctx)).
		Where("return_number = ?", returnNumber).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, returns.NewNotFoundError(returnNumber)
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll finds returns matching the filter. History rows are not loaded.
func (r *GormReturnRecordRepository) FindAll(ctx context.Context, filter returns.ReturnFilter) ([]returns.ReturnRecord, error) {
	var rows []models.ReturnRecordModel
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.ReturnRecordModel{}), filter)
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}

	out := make([]returns.ReturnRecord, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out, nil
}

// Count counts returns matching the filter, ignoring pagination
func (r *GormReturnRecordRepository) Count(ctx context.Context, filter returns.ReturnFilter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(r.db.WithContext(ctx).Model(&models.ReturnRecordModel{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Create inserts a new return together with its initial history rows
func (r *GormReturnRecordRepository) Create(ctx context.Context, record *returns.ReturnRecord) error {
	model := models.ReturnRecordModelFromDomain(record)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(model).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return returns.NewConflictingStateError("Return number " + record.ReturnNumber + " already exists")
			}
			return err
		}
		return appendHistory(tx, model)
	})
}

// SaveWithLock saves with optimistic locking (version check). On success the
// record's version is advanced to match the stored row.
func (r *GormReturnRecordRepository) SaveWithLock(ctx context.Context, record *returns.ReturnRecord) error {
	model := models.ReturnRecordModelFromDomain(record)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		updates := model.UpdateColumns()
		updates["version"] = record.Version + 1

		result := tx.Model(&models.ReturnRecordModel{}).
			Where("id = ? AND version = ?", record.ID, record.Version).
			Updates(updates)
		if result.Error != nil {
			return result.Error
		}

		if result.RowsAffected == 0 {
			var exists int64
			if err := tx.Model(&models.ReturnRecordModel{}).Where("id = ?", record.ID).Count(&exists).Error; err != nil {
				return err
			}
			if exists == 0 {
				return returns.NewNotFoundError(record.ID.String())
			}
			return returns.NewConflictingStateError("The return has been modified by another user")
		}

		return appendHistory(tx, model)
	})
	if err != nil {
		return err
	}
	record.IncrementVersion()
	return nil
}

// appendHistory inserts inspection and audit rows. Rows already stored are
// skipped, so the whole in-memory history can be passed on every save.
func appendHistory(tx *gorm.DB, model *models.ReturnRecordModel) error {
	if len(model.Inspections) > 0 {
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&model.Inspections).Error; err != nil {
			return fmt.Errorf("append inspections: %w", err)
		}
	}
	if len(model.AuditTrail) > 0 {
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&model.AuditTrail).Error; err != nil {
			return fmt.Errorf("append audit trail: %w", err)
		}
	}
	return nil
}

// GenerateReturnNumber allocates the next number for the current year as RTN-YYYY-NNNNN.
// The counter row is bumped inside the transaction, so concurrent callers never share a number.
func (r *GormReturnRecordRepository) GenerateReturnNumber(ctx context.Context) (string, error) {
	year := returnNumberClock().Year()
	var next int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		seq := models.ReturnNumberSequenceModel{Year: year, LastValue: 1}
		if err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "year"}},
			DoUpdates: clause.Assignments(map[string]any{
				"last_value": gorm.Expr("return_number_sequences.last_value + 1"),
			}),
		}).Create(&seq).Error; err != nil {
			return err
		}
		return tx.Model(&models.ReturnNumberSequenceModel{}).
			Where("year = ?", year).
			Select("last_value").
			Scan(&next).Error
	})
	if err != nil {
		return "", fmt.Errorf("allocate return number: %w", err)
	}
	return fmt.Sprintf("RTN-%d-%05d", year, next), nil
}

// applyFilter applies filtering, search, sorting and pagination
func (r *GormReturnRecordRepository) applyFilter(query *gorm.DB, filter returns.ReturnFilter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	sortField := ValidateSortField(filter.OrderBy, ReturnSortFields, "created_at")
	sortOrder := ValidateSortOrder(filter.OrderDir)
	query = query.Order(fmt.Sprintf("%s %s", sortField, sortOrder)).Order("id " + sortOrder)

	if filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.Limit())
	}
	return query
}

// applyFilterWithoutPagination applies filtering and search only
func (r *GormReturnRecordRepository) applyFilterWithoutPagination(query *gorm.DB, filter returns.ReturnFilter) *gorm.DB {
	if filter.LocationID != nil {
		query = query.Where("location_id = ?", *filter.LocationID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.ReturnCategory != "" {
		query = query.Where("return_category = ?", filter.ReturnCategory)
	}
	if filter.SourceType != "" {
		query = query.Where("source_type = ?", filter.SourceType)
	}
	if filter.DateFrom != nil {
		query = query.Where("created_at >= ?", *filter.DateFrom)
	}
	if filter.DateTo != nil {
		query = query.Where("created_at <= ?", *filter.DateTo)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		query = query.Where(
			"LOWER(return_number) LIKE ? OR LOWER(product_name) LIKE ? OR LOWER(customer_name) LIKE ? OR customer_phone LIKE ?",
			pattern, pattern, pattern, pattern,
		)
	}
	return query
}

var _ returns.ReturnRecordRepository = (*GormReturnRecordRepository)(nil)
