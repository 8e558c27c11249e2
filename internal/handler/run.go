package handler // handler package contains run publishing and projection handlers

import (
	"errors"   // errors for sentinel comparisons
	"net/http" // http defines status codes
	"strconv"  // strconv converts path params to integers
	"time"     // time parses service dates

	"github.com/labstack/echo/v4" // echo provides the web context and JSON helpers

	"github.com/andariego/trip-reservation/internal/model"
	"github.com/andariego/trip-reservation/internal/repository"
	"github.com/andariego/trip-reservation/internal/trip"
)

const dateLayout = "2006-01-02"

// RunHandler groups the collaborators needed to publish, republish and
// project runs. Seat mutations never go through here; they belong to
// the ReservationHandler and the capacity coordinator.
type RunHandler struct {
	RouteRepo   *repository.RouteRepo
	RunRepo     *repository.RunRepo
	Coordinator *trip.Coordinator
	CompanyID   uint64
}

// NewRunHandler constructs a RunHandler. All dependencies must be non-nil.
func NewRunHandler(routeRepo *repository.RouteRepo, runRepo *repository.RunRepo, coord *trip.Coordinator, companyID uint64) *RunHandler {
	if routeRepo == nil || runRepo == nil || coord == nil {
		panic("nil dependency passed to NewRunHandler")
	}
	return &RunHandler{RouteRepo: routeRepo, RunRepo: runRepo, Coordinator: coord, CompanyID: companyID}
}

// publishBody is the request payload shared by publish and republish.
type publishBody struct {
	RouteID   uint64                `json:"route_id"`
	StartDate string                `json:"start_date"`
	EndDate   string                `json:"end_date"`
	Departure model.ClockTime       `json:"departure"`
	Arrival   model.ClockTime       `json:"arrival"`
	Capacity  int                   `json:"capacity"`
	TotalFare float64               `json:"total_fare"`
	Tariffs   []model.TariffEntry   `json:"tariffs,omitempty"`
	StopTimes []model.StopTimeEntry `json:"stop_times,omitempty"`
}

// Publish handles POST /v1/runs. For every calendar date in the
// requested range it builds one run: the main segment plus every
// enumerated sub-segment, each with resolved times and prices and the
// full capacity available. Input and schedule errors surface here, at
// publish time, never at booking time; fare fallbacks are returned as
// warnings and do not block the run.
func (h *RunHandler) Publish(c echo.Context) error {
	var body publishBody
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.RouteID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "route_id is required"})
	}
	route, err := h.RouteRepo.GetByID(c.Request().Context(), body.RouteID)
	if err != nil {
		if errors.Is(err, repository.ErrRouteNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "route not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load route"})
	}
	start, err := time.Parse(dateLayout, body.StartDate)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid start_date format"})
	}
	end := start
	if body.EndDate != "" {
		end, err = time.Parse(dateLayout, body.EndDate)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid end_date format"})
		}
	}
	if end.Before(start) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "end_date must not precede start_date"})
	}

	runs, warnings, err := buildRunRange(route, h.CompanyID, start, end, body)
	if err != nil {
		return publishError(c, err)
	}

	// Every date of the range lands through one transaction, so a range
	// publish exists in full or not at all.
	ctx := c.Request().Context()
	tx, err := h.RunRepo.DB().BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create runs"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	for i := range runs {
		if err := h.RunRepo.CreateTx(ctx, tx, &runs[i]); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create runs"})
		}
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create runs"})
	}
	committed = true
	return c.JSON(http.StatusCreated, echo.Map{
		"items":    runs,
		"warnings": warnings,
	})
}

// buildRunRange builds one run per calendar date in [start, end] without
// touching storage. Any build failure yields no runs at all; persistence
// only starts once every date built cleanly.
func buildRunRange(route *model.RoutePlan, companyID uint64, start, end time.Time, body publishBody) ([]model.Run, []string, error) {
	points := route.Points()
	var runs []model.Run
	var warnings []string
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		built, err := trip.BuildSegments(trip.BuildInput{
			Points:        points,
			ServiceDate:   d.Format(dateLayout),
			MainDeparture: body.Departure,
			MainArrival:   body.Arrival,
			Capacity:      body.Capacity,
			TotalFare:     body.TotalFare,
			Tariffs:       body.Tariffs,
			StopTimes:     body.StopTimes,
		})
		if err != nil {
			return nil, nil, err
		}
		warnings = append(warnings, built.Warnings...)
		runs = append(runs, model.Run{
			RouteID:     route.ID,
			CompanyID:   companyID,
			ServiceDate: d.Format(dateLayout),
			Capacity:    body.Capacity,
			Points:      points,
			Segments:    built.Segments,
		})
	}
	return runs, warnings, nil
}

// Republish handles PUT /v1/runs/:id. The segment array is rebuilt from
// the route's current point list and the updated inputs, but any
// origin/destination pair that survives the edit keeps its synthetic id
// and its live available-seat count, so existing reservations stay
// valid. The rebuild runs under the run's lock to serialize against
// concurrent bookings.
func (h *RunHandler) Republish(c echo.Context) error {
	runID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || runID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid run id"})
	}
	var body publishBody
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	ctx := c.Request().Context()

	var updated *model.Run
	var warnings []string
	lockErr := h.Coordinator.Locked(runID, func() error {
		run, err := h.RunRepo.GetRun(ctx, runID)
		if err != nil {
			return err
		}
		route, err := h.RouteRepo.GetByID(ctx, run.RouteID)
		if err != nil {
			return err
		}
		capacity := run.Capacity
		if body.Capacity > 0 {
			capacity = body.Capacity
		}
		points := route.Points()
		built, err := trip.RebuildSegments(trip.BuildInput{
			Points:        points,
			ServiceDate:   run.ServiceDate,
			MainDeparture: body.Departure,
			MainArrival:   body.Arrival,
			Capacity:      capacity,
			TotalFare:     body.TotalFare,
			Tariffs:       body.Tariffs,
			StopTimes:     body.StopTimes,
		}, run.Capacity, run.Segments)
		if err != nil {
			return err
		}
		warnings = built.Warnings
		run.Capacity = capacity
		run.Points = points
		run.Segments = built.Segments
		if err := h.RunRepo.ReplaceSegments(ctx, run); err != nil {
			return err
		}
		updated = run
		return nil
	})
	if lockErr != nil {
		return publishError(c, lockErr)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"item":     updated,
		"warnings": warnings,
	})
}

// ListSegments handles GET /v1/runs/:id/segments. It is the read-only
// projection used by search and display; the response-cache middleware
// sits in front of it.
func (h *RunHandler) ListSegments(c echo.Context) error {
	runID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || runID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid run id"})
	}
	run, err := h.RunRepo.GetRun(c.Request().Context(), runID)
	if err != nil {
		if errors.Is(err, trip.ErrRunNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "run not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load run"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"run_id":       run.ID,
		"service_date": run.ServiceDate,
		"capacity":     run.Capacity,
		"items":        run.Segments,
	})
}

// ListRuns handles GET /v1/routes/:id/runs and returns every run
// published from a route.
func (h *RunHandler) ListRuns(c echo.Context) error {
	routeID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || routeID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid route id"})
	}
	runs, err := h.RunRepo.ListByRoute(c.Request().Context(), routeID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load runs"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": runs})
}

// DeleteRun handles DELETE /v1/runs/:id. A run with confirmed
// reservations cannot be removed.
func (h *RunHandler) DeleteRun(c echo.Context) error {
	runID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || runID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid run id"})
	}
	err = h.Coordinator.Locked(runID, func() error {
		return h.RunRepo.Delete(c.Request().Context(), runID)
	})
	if err != nil {
		if errors.Is(err, trip.ErrRunNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "run not found"})
		}
		if errors.Is(err, repository.ErrConflict) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "run still has confirmed reservations"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to delete run"})
	}
	return c.NoContent(http.StatusNoContent)
}

// publishError maps build/republish failures onto HTTP responses.
// Malformed input is the operator's to fix (400); an unresolvable
// schedule is a defect in the supplied time data (422); stale versions
// and missing runs keep their usual codes.
func publishError(c echo.Context, err error) error {
	var inputErr *trip.InputError
	if errors.As(err, &inputErr) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": inputErr.Error()})
	}
	var ambErr *trip.ScheduleAmbiguityError
	if errors.As(err, &ambErr) {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": ambErr.Error()})
	}
	if errors.Is(err, trip.ErrRunNotFound) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "run not found"})
	}
	if errors.Is(err, repository.ErrRouteNotFound) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "route not found"})
	}
	if errors.Is(err, trip.ErrVersionConflict) {
		return c.JSON(http.StatusConflict, echo.Map{"error": "run was modified concurrently, retry"})
	}
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
}
