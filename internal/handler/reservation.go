package handler

import (
	"context"      // background context for best-effort event publishing
	"database/sql" // sql.Tx flows into the coordinator's transactional callback
	"errors"       // errors.Is comparisons against sentinel values
	"net/http"     // HTTP status codes
	"strconv"      // parsing path parameters
	"strings"      // trimming passenger names
	"time"         // event timestamps

	"github.com/labstack/echo/v4"

	"github.com/andariego/trip-reservation/internal/model"
	"github.com/andariego/trip-reservation/internal/queue"
	"github.com/andariego/trip-reservation/internal/repository"
	queue_publisher "github.com/andariego/trip-reservation/internal/service"
	"github.com/andariego/trip-reservation/internal/trip"
)

// ReservationHandler implements the booking flow: every seat mutation
// goes through the capacity coordinator, which applies the passenger
// delta to all overlapping segments and persists the reservation
// outcome in the same transaction. A reservation is therefore never
// visible without its seat delta, and vice versa.
type ReservationHandler struct {
	RunRepo         *repository.RunRepo
	ReservationRepo *repository.ReservationRepo
	Coordinator     *trip.Coordinator
}

// NewReservationHandler constructs a ReservationHandler with the
// provided collaborators. All dependencies must be non-nil.
func NewReservationHandler(runRepo *repository.RunRepo, resRepo *repository.ReservationRepo, coord *trip.Coordinator) *ReservationHandler {
	if runRepo == nil || resRepo == nil || coord == nil {
		panic("nil dependency passed to NewReservationHandler")
	}
	return &ReservationHandler{RunRepo: runRepo, ReservationRepo: resRepo, Coordinator: coord}
}

// Create handles POST /v1/runs/:id/reservations. It books passengers on
// one segment of a run. A capacity violation on any overlapping segment
// rejects the whole booking before the reservation row exists; nothing
// is clamped and nothing is partially written.
func (h *ReservationHandler) Create(c echo.Context) error {
	runID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || runID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid run id"})
	}
	var body struct {
		SegmentKey     string  `json:"segment_key"`
		Passengers     int     `json:"passengers"`
		PassengerName  string  `json:"passenger_name"`
		PassengerPhone *string `json:"passenger_phone"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.SegmentKey == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "segment_key is required"})
	}
	if body.Passengers <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "passengers must be positive"})
	}
	name := strings.TrimSpace(body.PassengerName)
	if name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "passenger_name is required"})
	}
	ctx := c.Request().Context()

	// Resolve the segment's synthetic id up front; it is stable across
	// seat mutations, so reading it outside the lock is safe.
	run, err := h.RunRepo.GetRun(ctx, runID)
	if err != nil {
		return capacityError(c, err)
	}
	seg := run.SegmentByKey(body.SegmentKey)
	if seg == nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "segment not found"})
	}

	res := &model.Reservation{
		RunID:          runID,
		SegmentID:      seg.SyntheticID,
		SegmentKey:     body.SegmentKey,
		PassengerCount: body.Passengers,
		PassengerName:  name,
		PassengerPhone: body.PassengerPhone,
		Status:         "CONFIRMED",
	}
	updated, err := h.Coordinator.ApplyDelta(ctx, runID, body.SegmentKey, -body.Passengers, func(tx *sql.Tx) error {
		return h.ReservationRepo.CreateTx(ctx, tx, res)
	})
	if err != nil {
		return capacityError(c, err)
	}

	h.emitSeatsChanged(updated, body.SegmentKey, -body.Passengers, "BOOKED")
	return c.JSON(http.StatusCreated, echo.Map{
		"reservation_id": res.ID,
		"segment_id":     res.SegmentID,
		"price":          seg.Price,
	})
}

// Cancel handles DELETE /v1/reservations/:id. The seats come back to
// every overlapping segment in the same unit that marks the
// reservation cancelled; cancelling twice is a conflict, not a double
// release.
func (h *ReservationHandler) Cancel(c echo.Context) error {
	resID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || resID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}
	ctx := c.Request().Context()
	res, err := h.ReservationRepo.GetByID(ctx, resID)
	if err != nil {
		if errors.Is(err, repository.ErrReservationNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "reservation not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load reservation"})
	}
	if res.Status != "CONFIRMED" {
		return c.JSON(http.StatusConflict, echo.Map{"error": "reservation already cancelled"})
	}
	updated, err := h.Coordinator.ApplyDelta(ctx, res.RunID, res.SegmentKey, res.PassengerCount, func(tx *sql.Tx) error {
		return h.ReservationRepo.CancelTx(ctx, tx, res.ID)
	})
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "reservation already cancelled"})
		}
		return capacityError(c, err)
	}

	h.emitSeatsChanged(updated, res.SegmentKey, res.PassengerCount, "CANCELLED")
	return c.NoContent(http.StatusNoContent)
}

// Transfer handles POST /v1/reservations/:id/transfer. It moves a
// confirmed reservation to another segment, possibly on another run:
// seats are taken on the target, released on the source, and the
// reservation row is retargeted inside the source release transaction.
// A target without space rejects the transfer with nothing changed.
func (h *ReservationHandler) Transfer(c echo.Context) error {
	resID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || resID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}
	var body struct {
		RunID      uint64 `json:"run_id"`
		SegmentKey string `json:"segment_key"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.RunID == 0 || body.SegmentKey == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "run_id and segment_key are required"})
	}
	ctx := c.Request().Context()
	res, err := h.ReservationRepo.GetByID(ctx, resID)
	if err != nil {
		if errors.Is(err, repository.ErrReservationNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "reservation not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load reservation"})
	}
	if res.Status != "CONFIRMED" {
		return c.JSON(http.StatusConflict, echo.Map{"error": "reservation is not active"})
	}
	target, err := h.RunRepo.GetRun(ctx, body.RunID)
	if err != nil {
		return capacityError(c, err)
	}
	targetSeg := target.SegmentByKey(body.SegmentKey)
	if targetSeg == nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "segment not found on target run"})
	}

	err = h.Coordinator.Transfer(ctx, res.RunID, res.SegmentKey, body.RunID, body.SegmentKey, res.PassengerCount, func(tx *sql.Tx) error {
		return h.ReservationRepo.RetargetTx(ctx, tx, res.ID, body.RunID, targetSeg.SyntheticID, body.SegmentKey)
	})
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "reservation is not active"})
		}
		return capacityError(c, err)
	}

	if moved, err := h.RunRepo.GetRun(ctx, body.RunID); err == nil {
		h.emitSeatsChanged(moved, body.SegmentKey, -res.PassengerCount, "TRANSFERRED")
	}
	if source, err := h.RunRepo.GetRun(ctx, res.RunID); err == nil {
		h.emitSeatsChanged(source, res.SegmentKey, res.PassengerCount, "TRANSFERRED")
	}
	return c.JSON(http.StatusOK, echo.Map{
		"reservation_id": res.ID,
		"run_id":         body.RunID,
		"segment_id":     targetSeg.SyntheticID,
	})
}

// Get handles GET /v1/reservations/:id and returns a single reservation.
func (h *ReservationHandler) Get(c echo.Context) error {
	resID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || resID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}
	res, err := h.ReservationRepo.GetByID(c.Request().Context(), resID)
	if err != nil {
		if errors.Is(err, repository.ErrReservationNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "reservation not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load reservation"})
	}
	return c.JSON(http.StatusOK, echo.Map{"item": res})
}

// ListByRun handles GET /v1/runs/:id/reservations for operator review.
func (h *ReservationHandler) ListByRun(c echo.Context) error {
	runID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || runID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid run id"})
	}
	items, err := h.ReservationRepo.ListByRun(c.Request().Context(), runID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load reservations"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// emitSeatsChanged publishes a seat-change event for the run's segment.
// The delta is already durable in the database; a publish failure is
// logged by the publisher and otherwise ignored.
func (h *ReservationHandler) emitSeatsChanged(run *model.Run, segmentKey string, delta int, reason string) {
	seg := run.SegmentByKey(segmentKey)
	if seg == nil {
		return
	}
	_ = queue_publisher.PublishSeatsChanged(context.Background(), queue.SeatsChangedEvent{
		RunID:          run.ID,
		RouteID:        run.RouteID,
		CompanyID:      run.CompanyID,
		ServiceDate:    run.ServiceDate,
		SegmentID:      seg.SyntheticID,
		SegmentKey:     segmentKey,
		PassengerDelta: delta,
		SeatsRemaining: seg.AvailableSeats,
		Reason:         reason,
		OccurredAt:     time.Now().UTC().Format(time.RFC3339),
	})
}

// capacityError maps coordinator failures onto HTTP responses.
func capacityError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, trip.ErrRunNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "run not found"})
	case errors.Is(err, trip.ErrSegmentNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "segment not found"})
	case errors.Is(err, trip.ErrCapacityViolation):
		return c.JSON(http.StatusConflict, echo.Map{"error": "not enough seats available"})
	case errors.Is(err, trip.ErrVersionConflict):
		return c.JSON(http.StatusConflict, echo.Map{"error": "run was modified concurrently, retry"})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
}
