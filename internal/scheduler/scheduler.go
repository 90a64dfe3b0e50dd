package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/car2go/car2go-api/internal/audit"
	domain "github.com/car2go/car2go-api/internal/domain/booking"
	"github.com/car2go/car2go-api/internal/httperr"
	"github.com/car2go/car2go-api/internal/models"
)

// ======================================================
// SCHEDULER
// ======================================================

// Scheduler is the only component allowed to admit a booking interval.
// Proposals for the same car are serialized through the lock registry;
// proposals for different cars run in parallel. The store read and the
// insert both happen inside the car's critical section, so a second
// proposal can never act on a stale conflict scan.
type Scheduler struct {
	store domain.Store
	audit *audit.Dispatcher
	locks *lockRegistry

	// Longest a proposal may wait for a car's critical section before
	// failing with a timeout (distinct from a conflict). Zero means wait
	// as long as the request context allows.
	lockWait time.Duration
}

func New(store domain.Store, auditDispatcher *audit.Dispatcher, lockWait time.Duration) *Scheduler {
	return &Scheduler{
		store:    store,
		audit:    auditDispatcher,
		locks:    newLockRegistry(),
		lockWait: lockWait,
	}
}

// ======================================================
// INPUTS
// ======================================================

type ProposeInput struct {
	CarID   uint
	UserID  uint
	Start   time.Time
	End     time.Time
	Purpose string
}

type RescheduleInput struct {
	CarID   *uint
	Start   *time.Time
	End     *time.Time
	Purpose *string
}

// ======================================================
// PROPOSE
// ======================================================

func (s *Scheduler) Propose(
	ctx context.Context,
	in ProposeInput,
) (*models.Booking, error) {

	// Validation needs no lock and must touch no storage.
	if err := domain.ValidateInterval(in.Start, in.End); err != nil {
		return nil, err
	}
	if !domain.IsValidPurpose(in.Purpose) {
		return nil, httperr.ErrBusiness(httperr.CodeInvalidPurpose)
	}

	release, err := s.acquire(ctx, in.CarID)
	if err != nil {
		return nil, err
	}
	defer release()

	existing, err := s.store.ListActiveForCar(ctx, in.CarID)
	if err != nil {
		return nil, fmt.Errorf("list active bookings for car %d: %w", in.CarID, err)
	}

	if conflict := domain.FirstConflict(existing, in.Start, in.End, 0); conflict != nil {
		s.dispatch(audit.Event{
			UserID:   &in.UserID,
			Action:   "booking_conflict",
			Entity:   "booking",
			EntityID: &conflict.ID,
			Metadata: map[string]any{"start": in.Start, "end": in.End},
		})
		return nil, httperr.ErrBusiness(httperr.CodeTimeConflict)
	}

	b := &models.Booking{
		UserID:    in.UserID,
		CarID:     in.CarID,
		Reference: uuid.NewString(),
		StartTime: in.Start,
		EndTime:   in.End,
		Purpose:   in.Purpose,
		Status:    string(domain.InitialStatus()),
	}

	if err := s.store.Create(ctx, b); err != nil {
		if httperr.IsExclusionConflict(err) {
			return nil, httperr.ErrBusiness(httperr.CodeTimeConflict)
		}
		return nil, fmt.Errorf("persist booking: %w", err)
	}

	s.dispatch(audit.Event{
		UserID:   &in.UserID,
		Action:   "booking_created",
		Entity:   "booking",
		EntityID: &b.ID,
	})

	return b, nil
}

// ======================================================
// RESCHEDULE
// ======================================================

// Reschedule moves an existing booking to a new interval and/or car. The
// booking's own record is excluded from the conflict scan, and when the car
// changes both critical sections are taken in ascending id order so two
// concurrent cross-car updates cannot deadlock.
func (s *Scheduler) Reschedule(
	ctx context.Context,
	bookingID uint,
	in RescheduleInput,
) (*models.Booking, error) {

	b, err := s.store.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if domain.Status(b.Status) != domain.StatusConfirmed {
		return nil, httperr.ErrBusiness(httperr.CodeInvalidState)
	}

	newCar := b.CarID
	if in.CarID != nil {
		newCar = *in.CarID
	}
	newStart := b.StartTime
	if in.Start != nil {
		newStart = *in.Start
	}
	newEnd := b.EndTime
	if in.End != nil {
		newEnd = *in.End
	}
	newPurpose := b.Purpose
	if in.Purpose != nil {
		newPurpose = *in.Purpose
	}

	if err := domain.ValidateInterval(newStart, newEnd); err != nil {
		return nil, err
	}
	if !domain.IsValidPurpose(newPurpose) {
		return nil, httperr.ErrBusiness(httperr.CodeInvalidPurpose)
	}

	release, err := s.acquirePair(ctx, b.CarID, newCar)
	if err != nil {
		return nil, err
	}
	defer release()

	existing, err := s.store.ListActiveForCar(ctx, newCar)
	if err != nil {
		return nil, fmt.Errorf("list active bookings for car %d: %w", newCar, err)
	}

	if conflict := domain.FirstConflict(existing, newStart, newEnd, b.ID); conflict != nil {
		return nil, httperr.ErrBusiness(httperr.CodeTimeConflict)
	}

	b.CarID = newCar
	b.StartTime = newStart
	b.EndTime = newEnd
	b.Purpose = newPurpose

	if err := s.store.Update(ctx, b); err != nil {
		if httperr.IsExclusionConflict(err) {
			return nil, httperr.ErrBusiness(httperr.CodeTimeConflict)
		}
		return nil, fmt.Errorf("persist rescheduled booking: %w", err)
	}

	s.dispatch(audit.Event{
		UserID:   &b.UserID,
		Action:   "booking_rescheduled",
		Entity:   "booking",
		EntityID: &b.ID,
	})

	return b, nil
}

// ======================================================
// STATUS TRANSITIONS
// ======================================================

// Cancel and Complete only shrink the set of blocking intervals, so they
// skip the critical section and the conflict scan entirely.

func (s *Scheduler) Cancel(
	ctx context.Context,
	bookingID uint,
	now time.Time,
) (*models.Booking, error) {

	b, err := s.store.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if err := domain.Cancel(b, now); err != nil {
		return nil, err
	}

	if err := s.store.Update(ctx, b); err != nil {
		return nil, err
	}

	s.dispatch(audit.Event{
		UserID:   &b.UserID,
		Action:   "booking_cancelled",
		Entity:   "booking",
		EntityID: &b.ID,
	})

	return b, nil
}

func (s *Scheduler) Complete(
	ctx context.Context,
	bookingID uint,
	now time.Time,
) (*models.Booking, error) {

	b, err := s.store.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if err := domain.Complete(b, now); err != nil {
		return nil, err
	}

	if err := s.store.Update(ctx, b); err != nil {
		return nil, err
	}

	s.dispatch(audit.Event{
		UserID:   &b.UserID,
		Action:   "booking_completed",
		Entity:   "booking",
		EntityID: &b.ID,
	})

	return b, nil
}

// Delete removes the record entirely; for conflict purposes it is the same
// as a cancellation.
func (s *Scheduler) Delete(
	ctx context.Context,
	bookingID uint,
) error {

	b, err := s.store.GetByID(ctx, bookingID)
	if err != nil {
		return err
	}

	if err := s.store.Delete(ctx, bookingID); err != nil {
		return err
	}

	s.dispatch(audit.Event{
		UserID:   &b.UserID,
		Action:   "booking_deleted",
		Entity:   "booking",
		EntityID: &b.ID,
	})

	return nil
}

// ======================================================
// LOCK HELPERS
// ======================================================

func (s *Scheduler) acquire(ctx context.Context, carID uint) (func(), error) {
	if s.lockWait > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.lockWait)
		defer cancel()
	}

	l := s.locks.forCar(carID)
	if err := l.acquire(ctx); err != nil {
		return nil, fmt.Errorf("waiting for car %d critical section: %w", carID, err)
	}

	return l.release, nil
}

// acquirePair takes the critical sections of both cars in ascending id
// order. With a single car only one lock is taken.
func (s *Scheduler) acquirePair(ctx context.Context, a, b uint) (func(), error) {
	if a == b {
		return s.acquire(ctx, a)
	}

	first, second := a, b
	if second < first {
		first, second = second, first
	}

	releaseFirst, err := s.acquire(ctx, first)
	if err != nil {
		return nil, err
	}

	releaseSecond, err := s.acquire(ctx, second)
	if err != nil {
		releaseFirst()
		return nil, err
	}

	return func() {
		releaseSecond()
		releaseFirst()
	}, nil
}

func (s *Scheduler) dispatch(ev audit.Event) {
	if s.audit != nil {
		s.audit.Dispatch(ev)
	}
}
