package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/car2go/car2go-api/internal/domain/booking"
	"github.com/car2go/car2go-api/internal/httperr"
	infraRepo "github.com/car2go/car2go-api/internal/infra/repository"
	"github.com/car2go/car2go-api/internal/models"
)

func at(h, m int) time.Time {
	return time.Date(2025, 3, 10, h, m, 0, 0, time.UTC)
}

func newTestScheduler() (*Scheduler, *infraRepo.BookingMemoryRepository) {
	store := infraRepo.NewBookingMemoryRepository()
	return New(store, nil, 0), store
}

func propose(carID, userID uint, start, end time.Time) ProposeInput {
	return ProposeInput{
		CarID:   carID,
		UserID:  userID,
		Start:   start,
		End:     end,
		Purpose: string(domain.PurposeSelf),
	}
}

// ======================================================
// PROPOSE
// ======================================================

func TestPropose_AdmitsFreeInterval(t *testing.T) {
	sched, store := newTestScheduler()
	ctx := context.Background()

	b, err := sched.Propose(ctx, propose(1, 7, at(10, 0), at(11, 0)))
	require.NoError(t, err)
	require.NotZero(t, b.ID)
	assert.NotEmpty(t, b.Reference)
	assert.Equal(t, string(domain.StatusConfirmed), b.Status)

	stored, err := store.GetByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, b.Reference, stored.Reference)
}

func TestPropose_RejectsOverlap(t *testing.T) {
	sched, store := newTestScheduler()
	ctx := context.Background()

	_, err := sched.Propose(ctx, propose(1, 7, at(10, 0), at(11, 0)))
	require.NoError(t, err)

	_, err = sched.Propose(ctx, propose(1, 8, at(10, 30), at(11, 30)))
	require.Error(t, err)
	assert.True(t, httperr.IsBusiness(err, httperr.CodeTimeConflict))

	// a rejected proposal must leave the store untouched
	all, err := store.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestPropose_AdmitsAdjacentIntervals(t *testing.T) {
	sched, _ := newTestScheduler()
	ctx := context.Background()

	_, err := sched.Propose(ctx, propose(1, 7, at(10, 0), at(11, 0)))
	require.NoError(t, err)

	// [11:00, 12:00) starts exactly where the first one ends
	_, err = sched.Propose(ctx, propose(1, 8, at(11, 0), at(12, 0)))
	require.NoError(t, err)

	// and [09:00, 10:00) ends exactly where the first one starts
	_, err = sched.Propose(ctx, propose(1, 9, at(9, 0), at(10, 0)))
	require.NoError(t, err)
}

func TestPropose_CarsAreIndependent(t *testing.T) {
	sched, _ := newTestScheduler()
	ctx := context.Background()

	_, err := sched.Propose(ctx, propose(1, 7, at(10, 0), at(11, 0)))
	require.NoError(t, err)

	// same interval, different car
	_, err = sched.Propose(ctx, propose(2, 8, at(10, 0), at(11, 0)))
	require.NoError(t, err)
}

func TestPropose_CancelledBookingFreesInterval(t *testing.T) {
	sched, _ := newTestScheduler()
	ctx := context.Background()

	b, err := sched.Propose(ctx, propose(1, 7, at(10, 0), at(11, 0)))
	require.NoError(t, err)

	_, err = sched.Propose(ctx, propose(1, 8, at(10, 0), at(11, 0)))
	require.Error(t, err)

	_, err = sched.Cancel(ctx, b.ID, at(9, 0))
	require.NoError(t, err)

	_, err = sched.Propose(ctx, propose(1, 8, at(10, 0), at(11, 0)))
	require.NoError(t, err)
}

func TestPropose_DeletedBookingFreesInterval(t *testing.T) {
	sched, _ := newTestScheduler()
	ctx := context.Background()

	b, err := sched.Propose(ctx, propose(1, 7, at(10, 0), at(11, 0)))
	require.NoError(t, err)

	require.NoError(t, sched.Delete(ctx, b.ID))

	_, err = sched.Propose(ctx, propose(1, 8, at(10, 0), at(11, 0)))
	require.NoError(t, err)

	err = sched.Delete(ctx, b.ID)
	require.Error(t, err)
	assert.True(t, httperr.IsBusiness(err, httperr.CodeBookingNotFound))
}

func TestPropose_InvalidPurpose(t *testing.T) {
	sched, _ := newTestScheduler()

	in := propose(1, 7, at(10, 0), at(11, 0))
	in.Purpose = "joyride"

	_, err := sched.Propose(context.Background(), in)
	require.Error(t, err)
	assert.True(t, httperr.IsBusiness(err, httperr.CodeInvalidPurpose))
}

// countingStore records how many store calls the scheduler makes.
type countingStore struct {
	domain.Store
	mu    sync.Mutex
	calls int
}

func (c *countingStore) bump() {
	c.mu.Lock()
	c.calls++
	c.mu.Unlock()
}

func (c *countingStore) ListActiveForCar(ctx context.Context, carID uint) ([]models.Booking, error) {
	c.bump()
	return c.Store.ListActiveForCar(ctx, carID)
}

func (c *countingStore) Create(ctx context.Context, b *models.Booking) error {
	c.bump()
	return c.Store.Create(ctx, b)
}

func TestPropose_InvalidIntervalTouchesNoStorage(t *testing.T) {
	counting := &countingStore{Store: infraRepo.NewBookingMemoryRepository()}
	sched := New(counting, nil, 0)
	ctx := context.Background()

	// empty interval
	_, err := sched.Propose(ctx, propose(1, 7, at(10, 0), at(10, 0)))
	require.Error(t, err)
	assert.True(t, httperr.IsBusiness(err, httperr.CodeInvalidInterval))

	// inverted interval
	_, err = sched.Propose(ctx, propose(1, 7, at(11, 0), at(10, 0)))
	require.Error(t, err)
	assert.True(t, httperr.IsBusiness(err, httperr.CodeInvalidInterval))

	assert.Equal(t, 0, counting.calls)
}

func TestPropose_ConcurrentIdenticalProposals(t *testing.T) {
	sched, store := newTestScheduler()
	ctx := context.Background()

	const n = 32

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		admitted  int
		conflicts int
	)

	start := make(chan struct{})

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(userID uint) {
			defer wg.Done()
			<-start

			_, err := sched.Propose(ctx, propose(1, userID, at(10, 0), at(11, 0)))

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				admitted++
			case httperr.IsBusiness(err, httperr.CodeTimeConflict):
				conflicts++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(uint(i + 1))
	}

	close(start)
	wg.Wait()

	assert.Equal(t, 1, admitted)
	assert.Equal(t, n-1, conflicts)

	all, err := store.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

// ======================================================
// RESCHEDULE
// ======================================================

func TestReschedule_ExcludesOwnRecord(t *testing.T) {
	sched, _ := newTestScheduler()
	ctx := context.Background()

	b, err := sched.Propose(ctx, propose(1, 7, at(10, 0), at(11, 0)))
	require.NoError(t, err)

	// shifting within its own interval must not conflict with itself
	newStart := at(10, 30)
	newEnd := at(11, 30)
	updated, err := sched.Reschedule(ctx, b.ID, RescheduleInput{Start: &newStart, End: &newEnd})
	require.NoError(t, err)
	assert.Equal(t, newStart, updated.StartTime)
	assert.Equal(t, newEnd, updated.EndTime)
}

func TestReschedule_RejectsConflictWithOtherBooking(t *testing.T) {
	sched, _ := newTestScheduler()
	ctx := context.Background()

	_, err := sched.Propose(ctx, propose(1, 7, at(10, 0), at(11, 0)))
	require.NoError(t, err)

	b2, err := sched.Propose(ctx, propose(1, 8, at(12, 0), at(13, 0)))
	require.NoError(t, err)

	newStart := at(10, 30)
	newEnd := at(11, 30)
	_, err = sched.Reschedule(ctx, b2.ID, RescheduleInput{Start: &newStart, End: &newEnd})
	require.Error(t, err)
	assert.True(t, httperr.IsBusiness(err, httperr.CodeTimeConflict))

	// rejected reschedule leaves the booking where it was
	stored, err := sched.store.GetByID(ctx, b2.ID)
	require.NoError(t, err)
	assert.Equal(t, at(12, 0), stored.StartTime)
}

func TestReschedule_MovesToAnotherCar(t *testing.T) {
	sched, _ := newTestScheduler()
	ctx := context.Background()

	b, err := sched.Propose(ctx, propose(1, 7, at(10, 0), at(11, 0)))
	require.NoError(t, err)

	newCar := uint(2)
	updated, err := sched.Reschedule(ctx, b.ID, RescheduleInput{CarID: &newCar})
	require.NoError(t, err)
	assert.Equal(t, newCar, updated.CarID)

	// the old car's slot is free again
	_, err = sched.Propose(ctx, propose(1, 8, at(10, 0), at(11, 0)))
	require.NoError(t, err)

	// but the new car's slot is taken
	_, err = sched.Propose(ctx, propose(2, 9, at(10, 0), at(11, 0)))
	require.Error(t, err)
	assert.True(t, httperr.IsBusiness(err, httperr.CodeTimeConflict))
}

func TestReschedule_RejectsNonConfirmedBooking(t *testing.T) {
	sched, _ := newTestScheduler()
	ctx := context.Background()

	b, err := sched.Propose(ctx, propose(1, 7, at(10, 0), at(11, 0)))
	require.NoError(t, err)

	_, err = sched.Cancel(ctx, b.ID, at(9, 0))
	require.NoError(t, err)

	newStart := at(14, 0)
	newEnd := at(15, 0)
	_, err = sched.Reschedule(ctx, b.ID, RescheduleInput{Start: &newStart, End: &newEnd})
	require.Error(t, err)
	assert.True(t, httperr.IsBusiness(err, httperr.CodeInvalidState))
}

func TestReschedule_UnknownBooking(t *testing.T) {
	sched, _ := newTestScheduler()

	newStart := at(14, 0)
	newEnd := at(15, 0)
	_, err := sched.Reschedule(context.Background(), 999, RescheduleInput{Start: &newStart, End: &newEnd})
	require.Error(t, err)
	assert.True(t, httperr.IsBusiness(err, httperr.CodeBookingNotFound))
}

// ======================================================
// STATUS TRANSITIONS
// ======================================================

func TestCancel_SetsTimestamp(t *testing.T) {
	sched, _ := newTestScheduler()
	ctx := context.Background()

	b, err := sched.Propose(ctx, propose(1, 7, at(10, 0), at(11, 0)))
	require.NoError(t, err)

	now := at(9, 30)
	cancelled, err := sched.Cancel(ctx, b.ID, now)
	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusCancelled), cancelled.Status)
	require.NotNil(t, cancelled.CancelledAt)
	assert.Equal(t, now, *cancelled.CancelledAt)

	// cancelling twice is an invalid transition
	_, err = sched.Cancel(ctx, b.ID, now)
	require.Error(t, err)
	assert.True(t, httperr.IsBusiness(err, httperr.CodeInvalidState))
}

func TestComplete_ThenCancelRejected(t *testing.T) {
	sched, _ := newTestScheduler()
	ctx := context.Background()

	b, err := sched.Propose(ctx, propose(1, 7, at(10, 0), at(11, 0)))
	require.NoError(t, err)

	completed, err := sched.Complete(ctx, b.ID, at(11, 5))
	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusCompleted), completed.Status)
	require.NotNil(t, completed.CompletedAt)

	_, err = sched.Cancel(ctx, b.ID, at(11, 10))
	require.Error(t, err)
	assert.True(t, httperr.IsBusiness(err, httperr.CodeInvalidState))
}

// ======================================================
// LOCK TIMEOUT
// ======================================================

// gateStore blocks ListActiveForCar until released, keeping the caller
// inside the car's critical section.
type gateStore struct {
	domain.Store
	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

func (g *gateStore) ListActiveForCar(ctx context.Context, carID uint) ([]models.Booking, error) {
	g.once.Do(func() {
		close(g.entered)
		<-g.release
	})
	return g.Store.ListActiveForCar(ctx, carID)
}

func TestPropose_TimesOutWaitingForCriticalSection(t *testing.T) {
	gate := &gateStore{
		Store:   infraRepo.NewBookingMemoryRepository(),
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
	sched := New(gate, nil, 50*time.Millisecond)
	ctx := context.Background()

	done := make(chan error, 1)
	go func() {
		_, err := sched.Propose(ctx, propose(1, 7, at(10, 0), at(11, 0)))
		done <- err
	}()

	// wait until the first proposal holds car 1's critical section
	<-gate.entered

	_, err := sched.Propose(ctx, propose(1, 8, at(12, 0), at(13, 0)))
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))

	close(gate.release)
	require.NoError(t, <-done)
}
