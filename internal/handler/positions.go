package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/iliyamo/positions-api/internal/model"
	"github.com/iliyamo/positions-api/internal/service"
)

// PositionsAPI is implemented by *service.PositionService.
type PositionsAPI interface {
	Create(ctx context.Context, actor service.Actor, code, name string) (*model.Position, error)
	Get(ctx context.Context, actor service.Actor, id uint64) (*model.Position, error)
	List(ctx context.Context, actor service.Actor, mine bool) ([]model.Position, error)
	Update(ctx context.Context, actor service.Actor, id uint64, ch model.PositionChanges) (*model.Position, error)
	Delete(ctx context.Context, actor service.Actor, id uint64) (bool, error)
}

// PositionHandler serves /positions.  Every route requires JWTAuth.
type PositionHandler struct {
	positions PositionsAPI
	log       zerolog.Logger
}

func NewPositionHandler(positions PositionsAPI, logger zerolog.Logger) *PositionHandler {
	return &PositionHandler{positions: positions, log: logger.With().Str("component", "http-positions").Logger()}
}

type createPositionReq struct {
	Code string `json:"position_code"`
	Name string `json:"position_name"`
}

// updatePositionReq also accepts the target id in the body for PUT
// /positions.  The owner column cannot be changed.
type updatePositionReq struct {
	ID   json.RawMessage `json:"id"`
	Code *string         `json:"position_code"`
	Name *string         `json:"position_name"`
}

func (h *PositionHandler) List(c echo.Context) error { return h.list(c, false) }
func (h *PositionHandler) Mine(c echo.Context) error { return h.list(c, true) }

func (h *PositionHandler) list(c echo.Context, mine bool) error {
	a, ok := actor(c)
	if !ok {
		return unauthorized(c)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	list, err := h.positions.List(ctx, a, mine)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, list)
}

func (h *PositionHandler) Get(c echo.Context) error {
	a, ok := actor(c)
	if !ok {
		return unauthorized(c)
	}
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	p, err := h.positions.Get(ctx, a, id)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, p)
}

// Create ignores any owner supplied by the client.
func (h *PositionHandler) Create(c echo.Context) error {
	a, ok := actor(c)
	if !ok {
		return unauthorized(c)
	}
	var req createPositionReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	p, err := h.positions.Create(ctx, a, req.Code, req.Name)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(http.StatusCreated, p)
}

// Update handles PUT /positions/:id.
func (h *PositionHandler) Update(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}
	var req updatePositionReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	return h.update(c, id, req)
}

// UpdateByBody handles PUT /positions with {id, position_code?, position_name?}.
// The id may be a number or a numeric string.
func (h *PositionHandler) UpdateByBody(c echo.Context) error {
	var req updatePositionReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	if len(req.ID) == 0 || string(req.ID) == "null" {
		return badRequest(c, "missing id in body")
	}
	id, err := strconv.ParseUint(strings.Trim(string(req.ID), `"`), 10, 64)
	if err != nil || id == 0 {
		return badRequest(c, "invalid id in body")
	}
	return h.update(c, id, req)
}

func (h *PositionHandler) update(c echo.Context, id uint64, req updatePositionReq) error {
	a, ok := actor(c)
	if !ok {
		return unauthorized(c)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	p, err := h.positions.Update(ctx, a, id, model.PositionChanges{Code: req.Code, Name: req.Name})
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *PositionHandler) Delete(c echo.Context) error {
	a, ok := actor(c)
	if !ok {
		return unauthorized(c)
	}
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	removed, err := h.positions.Delete(ctx, a, id)
	if err != nil {
		return respondError(c, h.log, err)
	}
	if !removed {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Position deleted successfully"})
}
