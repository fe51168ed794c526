package persistence

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/erp/returns/internal/domain/returns"
	"github.com/erp/returns/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupReturnsTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// every connection to :memory: is a separate database
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(
		&models.ReturnRecordModel{},
		&models.InspectionModel{},
		&models.AuditEntryModel{},
		&models.ReturnAttachmentModel{},
		&models.ReturnNumberSequenceModel{},
	))
	return db
}

func newStockReturn(t *testing.T, number string, location uuid.UUID) *returns.ReturnRecord {
	t.Helper()
	r, err := returns.NewReturnRecord(returns.CreateInput{
		ReturnNumber:   number,
		SourceType:     returns.SourceTypeStockCheck,
		ReturnCategory: returns.CategoryDamaged,
		ReturnReason:   "Crushed in transit",
		LocationID:     location,
		ProductID:      uuid.New(),
		ProductName:    "Desk Lamp",
		Quantity:       2,
		ProductValue:   decimal.NewFromInt(30),
		CreatedBy:      uuid.New(),
	})
	require.NoError(t, err)
	return r
}

func TestGormReturnRecordRepository_CreateAndFind(t *testing.T) {
	db := setupReturnsTestDB(t)
	repo := NewGormReturnRecordRepository(db)
	ctx := context.Background()

	record := newStockReturn(t, "RTN-2026-00001", uuid.New())
	require.NoError(t, repo.Create(ctx, record))

	found, err := repo.FindByID(ctx, record.ID)
	require.NoError(t, err)
	assert.Equal(t, record.ReturnNumber, found.ReturnNumber)
	assert.Equal(t, returns.StatusReceived, found.Status)
	assert.True(t, decimal.NewFromInt(30).Equal(found.ProductValue))
	require.Len(t, found.AuditTrail, 1)
	assert.Equal(t, returns.AuditActionCreate, found.AuditTrail[0].Action)

	byNumber, err := repo.FindByReturnNumber(ctx, "RTN-2026-00001")
	require.NoError(t, err)
	assert.Equal(t, record.ID, byNumber.ID)

	_, err = repo.FindByID(ctx, uuid.New())
	assert.True(t, returns.IsNotFound(err))

	dup := newStockReturn(t, "RTN-2026-00001", uuid.New())
	err = repo.Create(ctx, dup)
	assert.True(t, returns.IsConflictingState(err))
}

func TestGormReturnRecordRepository_SaveWithLock(t *testing.T) {
	db := setupReturnsTestDB(t)
	repo := NewGormReturnRecordRepository(db)
	ctx := context.Background()

	record := newStockReturn(t, "RTN-2026-00002", uuid.New())
	require.NoError(t, repo.Create(ctx, record))

	t.Run("appends history and bumps version", func(t *testing.T) {
		loaded, err := repo.FindByID(ctx, record.ID)
		require.NoError(t, err)
		require.NoError(t, loaded.Inspect(returns.InspectInput{
			Condition:   returns.ConditionDamaged,
			Notes:       "corner dented",
			InspectorID: uuid.New(),
		}))
		require.NoError(t, loaded.Inspect(returns.InspectInput{
			Condition:   returns.ConditionDamaged,
			Notes:       "bulb cracked as well",
			Complete:    true,
			InspectorID: uuid.New(),
		}))
		require.NoError(t, repo.SaveWithLock(ctx, loaded))
		assert.Equal(t, 2, loaded.Version)

		stored, err := repo.FindByID(ctx, record.ID)
		require.NoError(t, err)
		assert.Equal(t, returns.StatusPendingApproval, stored.Status)
		assert.Equal(t, 2, stored.Version)
		require.Len(t, stored.Inspections, 2)
		assert.Equal(t, "corner dented", stored.Inspections[0].Notes)
		assert.Equal(t, "bulb cracked as well", stored.InspectionNotes)
		assert.Len(t, stored.AuditTrail, 3)
	})

	t.Run("stale copy is a conflict", func(t *testing.T) {
		first, err := repo.FindByID(ctx, record.ID)
		require.NoError(t, err)
		second, err := repo.FindByID(ctx, record.ID)
		require.NoError(t, err)

		require.NoError(t, first.Approve(returns.ResolutionScrapped, "", uuid.New()))
		require.NoError(t, repo.SaveWithLock(ctx, first))

		require.NoError(t, second.Reject(returns.RejectionNotEligible, "", uuid.New()))
		err = repo.SaveWithLock(ctx, second)
		assert.True(t, returns.IsConflictingState(err))

		stored, err := repo.FindByID(ctx, record.ID)
		require.NoError(t, err)
		assert.Equal(t, returns.StatusApproved, stored.Status)
		assert.Empty(t, stored.RejectionReason)
	})

	t.Run("missing record", func(t *testing.T) {
		ghost := newStockReturn(t, "RTN-2026-09999", uuid.New())
		err := repo.SaveWithLock(ctx, ghost)
		assert.True(t, returns.IsNotFound(err))
	})
}

func TestGormReturnRecordRepository_GenerateReturnNumber(t *testing.T) {
	db := setupReturnsTestDB(t)
	repo := NewGormReturnRecordRepository(db)
	ctx := context.Background()

	original := returnNumberClock
	returnNumberClock = func() time.Time { return time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC) }
	t.Cleanup(func() { returnNumberClock = original })

	first, err := repo.GenerateReturnNumber(ctx)
	require.NoError(t, err)
	assert.Equal(t, "RTN-2026-00001", first)

	var wg sync.WaitGroup
	results := make(chan string, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			n, err := repo.GenerateReturnNumber(ctx)
			assert.NoError(t, err)
			results <- n
		}()
	}
	wg.Wait()
	close(results)

	seen := map[string]bool{first: true}
	for n := range results {
		assert.False(t, seen[n], "duplicate number %s", n)
		seen[n] = true
	}
	assert.True(t, seen["RTN-2026-00011"])

	returnNumberClock = func() time.Time { return time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC) }
	next, err := repo.GenerateReturnNumber(ctx)
	require.NoError(t, err)
	assert.Equal(t, "RTN-2027-00001", next)
}

func TestGormReturnRecordRepository_FindAll(t *testing.T) {
	db := setupReturnsTestDB(t)
	repo := NewGormReturnRecordRepository(db)
	ctx := context.Background()

	branchA, branchB := uuid.New(), uuid.New()
	for i := 1; i <= 5; i++ {
		loc := branchA
		if i%2 == 0 {
			loc = branchB
		}
		r := newStockReturn(t, fmt.Sprintf("RTN-2026-%05d", i), loc)
		r.CreatedAt = time.Date(2026, 1, i, 9, 0, 0, 0, time.UTC)
		require.NoError(t, repo.Create(ctx, r))
	}

	t.Run("location filter and count", func(t *testing.T) {
		filter := returns.DefaultReturnFilter()
		filter.LocationID = &branchA
		items, err := repo.FindAll(ctx, filter)
		require.NoError(t, err)
		assert.Len(t, items, 3)
		total, err := repo.Count(ctx, filter)
		require.NoError(t, err)
		assert.Equal(t, int64(3), total)
		assert.Empty(t, items[0].AuditTrail)
	})

	t.Run("newest first with pagination", func(t *testing.T) {
		filter := returns.DefaultReturnFilter()
		filter.PageSize = 2
		filter.Page = 2
		items, err := repo.FindAll(ctx, filter)
		require.NoError(t, err)
		require.Len(t, items, 2)
		assert.Equal(t, "RTN-2026-00003", items[0].ReturnNumber)
		assert.Equal(t, "RTN-2026-00002", items[1].ReturnNumber)
	})

	t.Run("search and date window", func(t *testing.T) {
		filter := returns.DefaultReturnFilter()
		filter.Search = "rtn-2026-0000"
		from := time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)
		to := time.Date(2026, 1, 3, 23, 59, 0, 0, time.UTC)
		filter.DateFrom, filter.DateTo = &from, &to
		filter.OrderBy = "return_number"
		filter.OrderDir = "asc"
		items, err := repo.FindAll(ctx, filter)
		require.NoError(t, err)
		require.Len(t, items, 2)
		assert.Equal(t, "RTN-2026-00002", items[0].ReturnNumber)
	})

	t.Run("unknown sort column falls back", func(t *testing.T) {
		filter := returns.DefaultReturnFilter()
		filter.OrderBy = "1; DROP TABLE return_records"
		_, err := repo.FindAll(ctx, filter)
		require.NoError(t, err)
	})
}

func TestGormReturnAttachmentRepository(t *testing.T) {
	db := setupReturnsTestDB(t)
	repo := NewGormReturnAttachmentRepository(db)
	ctx := context.Background()

	record := newStockReturn(t, "RTN-2026-00077", uuid.New())
	a, err := record.NewAttachment("Photo.JPG", "image/jpeg", uuid.New())
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, a))

	items, err := repo.FindByReturnID(ctx, record.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, a.StorageKey, items[0].StorageKey)

	none, err := repo.FindByReturnID(ctx, uuid.New())
	require.NoError(t, err)
	assert.Empty(t, none)
}
