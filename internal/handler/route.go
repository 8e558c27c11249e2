package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/andariego/trip-reservation/internal/model"
	"github.com/andariego/trip-reservation/internal/repository"
	"github.com/andariego/trip-reservation/internal/trip"
)

// RouteHandler manages the route plans runs are published from. Routes
// are immutable inputs to segmentation: editing one never touches runs
// that were already published, because each run snapshots the point
// list.
type RouteHandler struct {
	RouteRepo *repository.RouteRepo
	CompanyID uint64
}

// NewRouteHandler constructs a RouteHandler.
func NewRouteHandler(routeRepo *repository.RouteRepo, companyID uint64) *RouteHandler {
	if routeRepo == nil {
		panic("nil repository passed to NewRouteHandler")
	}
	return &RouteHandler{RouteRepo: routeRepo, CompanyID: companyID}
}

// Create handles POST /v1/routes. The full point list is validated the
// same way segmentation will later see it, so a route that publishes
// cleanly is guaranteed at creation time.
func (h *RouteHandler) Create(c echo.Context) error {
	var body struct {
		Origin      string   `json:"origin"`
		Destination string   `json:"destination"`
		Stops       []string `json:"stops"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	body.Origin = strings.TrimSpace(body.Origin)
	body.Destination = strings.TrimSpace(body.Destination)
	if body.Origin == "" || body.Destination == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "origin and destination are required"})
	}
	route := model.RoutePlan{
		CompanyID:   h.CompanyID,
		Origin:      body.Origin,
		Destination: body.Destination,
		Stops:       body.Stops,
	}
	if err := trip.ValidatePoints(route.Points()); err != nil {
		var inputErr *trip.InputError
		if errors.As(err, &inputErr) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": inputErr.Error()})
		}
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid route"})
	}
	if err := h.RouteRepo.Create(c.Request().Context(), &route); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not create route"})
	}
	return c.JSON(http.StatusCreated, route)
}

// Get handles GET /v1/routes/:id.
func (h *RouteHandler) Get(c echo.Context) error {
	routeID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || routeID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid route id"})
	}
	route, err := h.RouteRepo.GetByID(c.Request().Context(), routeID)
	if err != nil {
		if errors.Is(err, repository.ErrRouteNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "route not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load route"})
	}
	return c.JSON(http.StatusOK, echo.Map{"item": route})
}

// List handles GET /v1/routes and returns the company's routes.
func (h *RouteHandler) List(c echo.Context) error {
	routes, err := h.RouteRepo.ListByCompany(c.Request().Context(), h.CompanyID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load routes"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": routes})
}
