package returns

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/erp/returns/internal/domain/returns"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockReturnRecordRepository is a mock implementation of ReturnRecordRepository
type MockReturnRecordRepository struct {
	mock.Mock
}

func (m *MockReturnRecordRepository) FindByID(ctx context.Context, id uuid.UUID) (*returns.ReturnRecord, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*returns.ReturnRecord), args.Error(1)
}

func (m *MockReturnRecordRepository) FindByReturnNumber(ctx context.Context, returnNumber string) (*returns.ReturnRecord, error) {
	args := m.Called(ctx, returnNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*returns.ReturnRecord), args.Error(1)
}

func (m *MockReturnRecordRepository) FindAll(ctx context.Context, filter returns.ReturnFilter) ([]returns.ReturnRecord, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]returns.ReturnRecord), args.Error(1)
}

func (m *MockReturnRecordRepository) Count(ctx context.Context, filter returns.ReturnFilter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockReturnRecordRepository) Create(ctx context.Context, r *returns.ReturnRecord) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

func (m *MockReturnRecordRepository) SaveWithLock(ctx context.Context, r *returns.ReturnRecord) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

func (m *MockReturnRecordRepository) GenerateReturnNumber(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

var _ returns.ReturnRecordRepository = (*MockReturnRecordRepository)(nil)

// MockInventoryService is a mock implementation of InventoryService
type MockInventoryService struct {
	mock.Mock
}

func (m *MockInventoryService) Increment(ctx context.Context, cmd returns.StockCommand) error {
	return m.Called(ctx, cmd).Error(0)
}

func (m *MockInventoryService) WriteOff(ctx context.Context, cmd returns.StockCommand) error {
	return m.Called(ctx, cmd).Error(0)
}

func (m *MockInventoryService) Transfer(ctx context.Context, cmd returns.TransferCommand) error {
	return m.Called(ctx, cmd).Error(0)
}

// MockRefundService is a mock implementation of RefundService
type MockRefundService struct {
	mock.Mock
}

func (m *MockRefundService) Refund(ctx context.Context, cmd returns.RefundCommand) error {
	return m.Called(ctx, cmd).Error(0)
}

// MockSupplierReturnService is a mock implementation of SupplierReturnService
type MockSupplierReturnService struct {
	mock.Mock
}

func (m *MockSupplierReturnService) Create(ctx context.Context, cmd returns.SupplierReturnCommand) (string, error) {
	args := m.Called(ctx, cmd)
	return args.String(0), args.Error(1)
}

// MockFulfillmentService is a mock implementation of FulfillmentService
type MockFulfillmentService struct {
	mock.Mock
}

func (m *MockFulfillmentService) IssueReplacement(ctx context.Context, cmd returns.ReplacementCommand) (string, error) {
	args := m.Called(ctx, cmd)
	return args.String(0), args.Error(1)
}

// MockStatsReader is a mock implementation of StatsReader
type MockStatsReader struct {
	mock.Mock
}

func (m *MockStatsReader) LoadStatsRows(ctx context.Context, scope returns.StatsScope) ([]returns.StatsRow, error) {
	args := m.Called(ctx, scope)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]returns.StatsRow), args.Error(1)
}

// memoryRepository keeps records in a map with the same version check as the
// GORM repository. It lets lifecycle tests run end to end without a database.
type memoryRepository struct {
	mu      sync.Mutex
	records map[uuid.UUID]returns.ReturnRecord
	seq     int
	// saveDelay widens the window between load and save in race tests
	saveDelay time.Duration
}

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{records: make(map[uuid.UUID]returns.ReturnRecord)}
}

func cloneRecord(r *returns.ReturnRecord) returns.ReturnRecord {
	c := *r
	c.Inspections = append([]returns.InspectionEntry(nil), r.Inspections...)
	c.AuditTrail = append([]returns.AuditEntry(nil), r.AuditTrail...)
	c.ClearDomainEvents()
	return c
}

func (m *memoryRepository) FindByID(_ context.Context, id uuid.UUID) (*returns.ReturnRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.records[id]
	if !ok {
		return nil, returns.NewNotFoundError(id.String())
	}
	c := cloneRecord(&r)
	return &c, nil
}

func (m *memoryRepository) FindByReturnNumber(_ context.Context, number string) (*returns.ReturnRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.records {
		if r.ReturnNumber == number {
			c := cloneRecord(&r)
			return &c, nil
		}
	}
	return nil, returns.NewNotFoundError(number)
}

func (m *memoryRepository) FindAll(_ context.Context, _ returns.ReturnFilter) ([]returns.ReturnRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]returns.ReturnRecord, 0, len(m.records))
	for _, r := range m.records {
		out = append(out, cloneRecord(&r))
	}
	return out, nil
}

func (m *memoryRepository) Count(_ context.Context, _ returns.ReturnFilter) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.records)), nil
}

func (m *memoryRepository) Create(_ context.Context, r *returns.ReturnRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[r.ID] = cloneRecord(r)
	return nil
}

func (m *memoryRepository) SaveWithLock(_ context.Context, r *returns.ReturnRecord) error {
	if m.saveDelay > 0 {
		time.Sleep(m.saveDelay)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.records[r.ID]
	if !ok {
		return returns.NewNotFoundError(r.ID.String())
	}
	if stored.Version != r.Version {
		return returns.NewConflictingStateError("version mismatch")
	}
	r.IncrementVersion()
	m.records[r.ID] = cloneRecord(r)
	return nil
}

func (m *memoryRepository) GenerateReturnNumber(_ context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	return fmt.Sprintf("RTN-2026-%05d", m.seq), nil
}

var _ returns.ReturnRecordRepository = (*memoryRepository)(nil)
