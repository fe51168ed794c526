package integration

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	appreturns "github.com/erp/returns/internal/application/returns"
	"github.com/erp/returns/internal/domain/returns"
	"github.com/erp/returns/internal/domain/shared"
	"github.com/erp/returns/internal/infrastructure/cache"
	"github.com/erp/returns/internal/infrastructure/collaborator"
	"github.com/erp/returns/internal/infrastructure/event"
	"github.com/erp/returns/internal/infrastructure/persistence"
	"github.com/erp/returns/tests/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap/zaptest"
)

type ReturnsLifecycleSuite struct {
	suite.Suite
	tdb   *TestDB
	repo  *persistence.GormReturnRecordRepository
	stats *persistence.SqlxStatsReader
}

func TestReturnsLifecycleSuite(t *testing.T) {
	suite.Run(t, new(ReturnsLifecycleSuite))
}

func (s *ReturnsLifecycleSuite) SetupSuite() {
	s.tdb = NewTestDB(s.T())
	s.repo = persistence.NewGormReturnRecordRepository(s.tdb.DB)
	stats, err := persistence.NewStatsReaderFromDatabase(s.tdb.Database)
	s.Require().NoError(err)
	s.stats = stats
}

func (s *ReturnsLifecycleSuite) SetupTest() {
	s.tdb.Truncate(s.T())
}

// countingInventory records stock increments on top of the local collaborators
type countingInventory struct {
	returns.InventoryService
	increments atomic.Int32
}

func (c *countingInventory) Increment(ctx context.Context, cmd returns.StockCommand) error {
	c.increments.Add(1)
	return c.InventoryService.Increment(ctx, cmd)
}

func (s *ReturnsLifecycleSuite) newService() *appreturns.ReturnService {
	log := zaptest.NewLogger(s.T())
	return s.newServiceWith(cache.NewInMemoryRecordLocker(), collaborator.NewLocalCollaborators(log))
}

// newServiceWith builds an engine instance. Replicas behind one database pass
// the same locker, the way they would share the Redis locker.
func (s *ReturnsLifecycleSuite) newServiceWith(locker shared.RecordLocker, inventory returns.InventoryService) *appreturns.ReturnService {
	log := zaptest.NewLogger(s.T())
	local := collaborator.NewLocalCollaborators(log)
	dispatcher := appreturns.NewResolutionDispatcher(appreturns.Collaborators{
		Inventory:   inventory,
		Refunds:     local,
		Suppliers:   local,
		Fulfillment: local,
	}, nil, appreturns.DispatcherConfig{}, log)
	return appreturns.NewReturnService(s.repo, s.stats, local, locker, dispatcher, log)
}

func (s *ReturnsLifecycleSuite) createApproved(number string, resolution returns.ResolutionType) *returns.ReturnRecord {
	ctx := testutil.ContextWithTimeout(s.T(), 10*time.Second)
	r := testutil.NewApprovedRecord(s.T(), testutil.SaleReturnInput(number), resolution)
	s.Require().NoError(s.repo.Create(ctx, r))
	return r
}

func (s *ReturnsLifecycleSuite) TestRoundTripKeepsHistory() {
	ctx := testutil.ContextWithTimeout(s.T(), 10*time.Second)
	r := s.createApproved("RTN-2026-00001", returns.ResolutionRestockedBranch)

	loaded, err := s.repo.FindByReturnNumber(ctx, "RTN-2026-00001")
	s.Require().NoError(err)
	s.Equal(r.ID, loaded.ID)
	s.Equal(returns.StatusApproved, loaded.Status)
	s.Len(loaded.Inspections, 1)
	s.True(loaded.ProductValue.Equal(decimal.RequireFromString("49.95")))

	_, err = s.repo.FindByReturnNumber(ctx, "RTN-2026-99999")
	s.True(errors.Is(err, returns.ErrReturnNotFound))
}

func (s *ReturnsLifecycleSuite) TestSaveWithLock_StaleCopyLoses() {
	ctx := testutil.ContextWithTimeout(s.T(), 10*time.Second)
	r, err := returns.NewReturnRecord(testutil.SaleReturnInput("RTN-2026-00002"))
	s.Require().NoError(err)
	s.Require().NoError(s.repo.Create(ctx, r))

	first, err := s.repo.FindByID(ctx, r.ID)
	s.Require().NoError(err)
	second, err := s.repo.FindByID(ctx, r.ID)
	s.Require().NoError(err)

	s.Require().NoError(first.Cancel("Customer kept the item", testutil.TestActorID()))
	s.Require().NoError(s.repo.SaveWithLock(ctx, first))

	s.Require().NoError(second.Reject(returns.RejectionReasons()[0], "", testutil.TestActorID()))
	err = s.repo.SaveWithLock(ctx, second)
	s.True(errors.Is(err, returns.ErrConflictingState), "got %v", err)

	stored, err := s.repo.FindByID(ctx, r.ID)
	s.Require().NoError(err)
	s.Equal(returns.StatusCancelled, stored.Status)
	last := stored.AuditTrail[len(stored.AuditTrail)-1]
	s.Equal(returns.AuditActionCancel, last.Action)
}

func (s *ReturnsLifecycleSuite) TestConcurrentProcessCommitsOnce() {
	r := s.createApproved("RTN-2026-00003", returns.ResolutionRestockedBranch)
	bus := event.NewInMemoryEventBus(zaptest.NewLogger(s.T()))
	recorder := testutil.NewRecordingHandler()
	bus.Subscribe(recorder)

	locker := cache.NewInMemoryRecordLocker()
	inventory := &countingInventory{InventoryService: collaborator.NewLocalCollaborators(zaptest.NewLogger(s.T()))}
	services := make([]*appreturns.ReturnService, 4)
	for i := range services {
		services[i] = s.newServiceWith(locker, inventory)
		services[i].SetEventPublisher(bus)
	}

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		codes     []string
	)
	for _, svc := range services {
		wg.Add(1)
		go func(svc *appreturns.ReturnService) {
			defer wg.Done()
			_, err := svc.Process(context.Background(), r.ID, appreturns.ProcessReturnRequest{
				ResolutionType:    string(returns.ResolutionRestockedBranch),
				ResolutionDetails: "Back on the shelf",
				ActorID:           testutil.TestActorID(),
			})
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				successes++
				return
			}
			var de *shared.DomainError
			if errors.As(err, &de) {
				codes = append(codes, de.Code)
			} else {
				codes = append(codes, err.Error())
			}
		}(svc)
	}
	wg.Wait()

	s.Equal(1, successes)
	s.Equal(int32(1), inventory.increments.Load())
	for _, code := range codes {
		s.Contains([]string{returns.CodeConflictingState, returns.CodeIllegalTransition}, code)
	}

	stored, err := s.repo.FindByID(context.Background(), r.ID)
	s.Require().NoError(err)
	s.Equal(returns.StatusCompleted, stored.Status)
	var processed int
	for _, e := range stored.AuditTrail {
		if e.Action == returns.AuditActionProcess {
			processed++
		}
	}
	s.Equal(1, processed)
	s.Equal([]string{returns.EventTypeReturnProcessed}, recorder.Types())
	s.Equal([]returns.ReturnStatus{returns.StatusCompleted}, recorder.Statuses())
}

func (s *ReturnsLifecycleSuite) TestGenerateReturnNumberIsUnique() {
	ctx := testutil.ContextWithTimeout(s.T(), 30*time.Second)
	const n = 20
	numbers := make(chan string, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			num, err := s.repo.GenerateReturnNumber(ctx)
			if assert.NoError(s.T(), err) {
				numbers <- num
			}
		}()
	}
	wg.Wait()
	close(numbers)

	seen := map[string]bool{}
	for num := range numbers {
		s.False(seen[num], "duplicate %s", num)
		seen[num] = true
		s.Regexp(`^RTN-\d{4}-\d{5}$`, num)
	}
	s.Len(seen, n)
}

func (s *ReturnsLifecycleSuite) TestStatsOverPostgres() {
	ctx := testutil.ContextWithTimeout(s.T(), 10*time.Second)
	svc := s.newService()

	s.createApproved("RTN-2026-00010", returns.ResolutionRestockedBranch)
	damaged, err := returns.NewReturnRecord(testutil.StockReturnInput("RTN-2026-00011"))
	s.Require().NoError(err)
	s.Require().NoError(s.repo.Create(ctx, damaged))

	stats, err := svc.Stats(ctx, appreturns.StatsQuery{})
	s.Require().NoError(err)
	s.EqualValues(2, stats.Total)
	s.EqualValues(1, stats.ByStatus[returns.StatusApproved])
	s.EqualValues(1, stats.ByStatus[returns.StatusReceived])
	s.True(stats.TotalValue.Equal(decimal.RequireFromString("119.90")), stats.TotalValue.String())

	other := testutil.NewTestUUID("elsewhere").String()
	scoped, err := svc.Stats(ctx, appreturns.StatsQuery{LocationID: other})
	s.Require().NoError(err)
	s.EqualValues(0, scoped.Total)
}
