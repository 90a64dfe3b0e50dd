package handlers

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	domain "github.com/car2go/car2go-api/internal/domain/booking"
	"github.com/car2go/car2go-api/internal/dto"
	"github.com/car2go/car2go-api/internal/httperr"
	"github.com/car2go/car2go-api/internal/httpresp"
	"github.com/car2go/car2go-api/internal/middleware"
	"github.com/car2go/car2go-api/internal/models"
	"github.com/car2go/car2go-api/internal/scheduler"
	"github.com/car2go/car2go-api/internal/timezone"
)

// ======================================================
// HANDLER
// ======================================================

type BookingHandler struct {
	db    *gorm.DB
	store domain.Store
	sched *scheduler.Scheduler
}

func NewBookingHandler(db *gorm.DB, store domain.Store, sched *scheduler.Scheduler) *BookingHandler {
	return &BookingHandler{db: db, store: store, sched: sched}
}

// ======================================================
// REQUESTS
// ======================================================

type CreateBookingRequest struct {
	CarID     uint      `json:"car_id" binding:"required"`
	StartTime time.Time `json:"start_time" binding:"required"`
	EndTime   time.Time `json:"end_time" binding:"required"`
	Purpose   string    `json:"purpose" binding:"required"`
}

type UpdateBookingRequest struct {
	CarID     *uint      `json:"car_id"`
	StartTime *time.Time `json:"start_time"`
	EndTime   *time.Time `json:"end_time"`
	Purpose   *string    `json:"purpose"`
	Status    *string    `json:"status"`
}

// ======================================================
// CREATE
// ======================================================

func (h *BookingHandler) Create(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uint)

	var req CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Données invalides.")
		return
	}

	var car models.Car
	if err := h.db.First(&car, req.CarID).Error; err != nil {
		httperr.NotFound(c, "car_not_found", "Voiture non trouvée.")
		return
	}
	if !car.Available {
		httperr.BadRequest(c, "car_unavailable", "Voiture indisponible.")
		return
	}

	created, err := h.sched.Propose(c.Request.Context(), scheduler.ProposeInput{
		CarID:   req.CarID,
		UserID:  userID,
		Start:   req.StartTime,
		End:     req.EndTime,
		Purpose: req.Purpose,
	})
	if err != nil {
		writeBookingError(c, err)
		return
	}

	httpresp.Created(c, created)
}

// ======================================================
// LIST / GET
// ======================================================

func (h *BookingHandler) List(c *gin.Context) {
	bookings, err := h.store.ListAll(c.Request.Context())
	if err != nil {
		httperr.Internal(c, "booking_list_failed", "Erreur lors de la récupération des réservations.")
		return
	}

	httpresp.List(c, bookings)
}

func (h *BookingHandler) ListMine(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uint)

	bookings, err := h.store.ListForUser(c.Request.Context(), userID)
	if err != nil {
		httperr.Internal(c, "booking_list_failed", "Erreur lors de la récupération des réservations.")
		return
	}

	out := make([]dto.BookingWithCarDTO, 0, len(bookings))
	for _, b := range bookings {
		out = append(out, dto.NewBookingWithCar(b))
	}

	httpresp.List(c, out)
}

func (h *BookingHandler) Get(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		httperr.BadRequest(c, "invalid_id", "Identifiant invalide.")
		return
	}

	b, err := h.store.GetByID(c.Request.Context(), uint(id))
	if err != nil {
		writeBookingError(c, err)
		return
	}

	httpresp.OK(c, b)
}

// ======================================================
// UPDATE
// ======================================================

// Update routes status-only transitions (cancel/complete) past the conflict
// check, since they can only shrink the occupied set. Any change to car or
// interval goes through the scheduler's reschedule path.
func (h *BookingHandler) Update(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uint)

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		httperr.BadRequest(c, "invalid_id", "Identifiant invalide.")
		return
	}

	existing, err := h.store.GetByID(c.Request.Context(), uint(id))
	if err != nil {
		writeBookingError(c, err)
		return
	}

	if existing.UserID != userID {
		httperr.Forbidden(c, "forbidden", "Accès interdit.")
		return
	}

	var req UpdateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Données invalides.")
		return
	}

	if req.Status != nil {
		if req.CarID != nil || req.StartTime != nil || req.EndTime != nil {
			httperr.BadRequest(c, "mixed_update", "Changement de statut et de créneau dans la même requête.")
			return
		}

		now := timezone.Now()

		var updated *models.Booking
		switch domain.Status(*req.Status) {
		case domain.StatusCancelled:
			updated, err = h.sched.Cancel(c.Request.Context(), uint(id), now)
		case domain.StatusCompleted:
			updated, err = h.sched.Complete(c.Request.Context(), uint(id), now)
		default:
			httperr.BadRequest(c, "invalid_status", "Statut invalide.")
			return
		}
		if err != nil {
			writeBookingError(c, err)
			return
		}

		httpresp.OK(c, updated)
		return
	}

	updated, err := h.sched.Reschedule(c.Request.Context(), uint(id), scheduler.RescheduleInput{
		CarID:   req.CarID,
		Start:   req.StartTime,
		End:     req.EndTime,
		Purpose: req.Purpose,
	})
	if err != nil {
		writeBookingError(c, err)
		return
	}

	httpresp.OK(c, updated)
}

// ======================================================
// DELETE
// ======================================================

func (h *BookingHandler) Delete(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uint)

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		httperr.BadRequest(c, "invalid_id", "Identifiant invalide.")
		return
	}

	existing, err := h.store.GetByID(c.Request.Context(), uint(id))
	if err != nil {
		writeBookingError(c, err)
		return
	}

	if existing.UserID != userID {
		httperr.Forbidden(c, "forbidden", "Accès interdit.")
		return
	}

	if err := h.sched.Delete(c.Request.Context(), uint(id)); err != nil {
		writeBookingError(c, err)
		return
	}

	httpresp.OK(c, gin.H{"message": "Réservation supprimée avec succès"})
}

// ======================================================
// ERROR MAPPING
// ======================================================

func writeBookingError(c *gin.Context, err error) {
	switch {
	case httperr.IsBusiness(err, httperr.CodeInvalidInterval):
		httperr.BadRequest(c, httperr.CodeInvalidInterval, "L'heure de début doit précéder l'heure de fin.")
	case httperr.IsBusiness(err, httperr.CodeInvalidPurpose):
		httperr.BadRequest(c, httperr.CodeInvalidPurpose, "Le motif doit être 'self' ou 'accompanied'.")
	case httperr.IsBusiness(err, httperr.CodeTimeConflict):
		httperr.Conflict(c, httperr.CodeTimeConflict, "Car is already booked for the selected time range")
	case httperr.IsBusiness(err, httperr.CodeBookingNotFound):
		httperr.NotFound(c, httperr.CodeBookingNotFound, "Réservation non trouvée.")
	case httperr.IsBusiness(err, httperr.CodeInvalidState):
		httperr.BadRequest(c, httperr.CodeInvalidState, "La réservation ne peut plus être modifiée.")
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled):
		httperr.Unavailable(c, "scheduler_timeout", "Le planificateur est saturé, veuillez réessayer.")
	default:
		httperr.Internal(c, "booking_failed", "Erreur interne.")
	}
}
