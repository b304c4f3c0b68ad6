package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/kanban-board/internal/api/dto"
	"github.com/spec-kit/kanban-board/internal/domain"
	"github.com/spec-kit/kanban-board/internal/service"
	apperrors "github.com/spec-kit/kanban-board/pkg/util/errorutil"
)

// BoardHandler exposes the board controller over HTTP.
type BoardHandler struct {
	board    *service.BoardService
	activity *service.ActivityService
}

// NewBoardHandler constructs handler.
func NewBoardHandler(board *service.BoardService, activity *service.ActivityService) *BoardHandler {
	return &BoardHandler{board: board, activity: activity}
}

// GetBoard GET /api/board.
func (h *BoardHandler) GetBoard(c *fiber.Ctx) error {
	return h.respondBoard(c, fiber.StatusOK)
}

// Reload POST /api/board/reload.
func (h *BoardHandler) Reload(c *fiber.Ctx) error {
	if err := h.board.Initialize(c.UserContext()); err != nil {
		return err
	}
	return h.respondBoard(c, fiber.StatusOK)
}

// UpdatePreferences PUT /api/board/preferences.
func (h *BoardHandler) UpdatePreferences(c *fiber.Ctx) error {
	var req dto.PreferencesRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.GroupBy == nil && req.SortBy == nil {
		return apperrors.NewValidationError("groupBy or sortBy required", nil)
	}

	ctx := c.UserContext()
	if req.GroupBy != nil {
		if err := h.board.SetGroupBy(ctx, domain.GroupBy(*req.GroupBy)); err != nil {
			return err
		}
	}
	if req.SortBy != nil {
		if err := h.board.SetSortBy(ctx, domain.SortBy(*req.SortBy)); err != nil {
			return err
		}
	}
	return h.respondBoard(c, fiber.StatusOK)
}

// ToggleEditMode POST /api/board/edit-mode.
func (h *BoardHandler) ToggleEditMode(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"data": dto.EditModeResponse{EditMode: h.board.ToggleEditMode()}})
}

// OpenCreateModal POST /api/board/modal.
func (h *BoardHandler) OpenCreateModal(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"data": h.board.OpenCreateModal()})
}

// OpenEditModal POST /api/board/modal/:id.
func (h *BoardHandler) OpenEditModal(c *fiber.Ctx) error {
	modal, err := h.board.OpenEditModal(c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": modal})
}

// CloseModal DELETE /api/board/modal.
func (h *BoardHandler) CloseModal(c *fiber.Ctx) error {
	h.board.CloseModal()
	return c.SendStatus(fiber.StatusNoContent)
}

// SaveCard POST /api/board/cards.
func (h *BoardHandler) SaveCard(c *fiber.Ctx) error {
	var req dto.CardRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	ticket, err := h.board.SaveCard(c.UserContext(), req.Form())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticket})
}

// DeleteCard DELETE /api/board/cards/:id.
func (h *BoardHandler) DeleteCard(c *fiber.Ctx) error {
	if err := h.board.DeleteCard(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// DismissError DELETE /api/board/error.
func (h *BoardHandler) DismissError(c *fiber.Ctx) error {
	h.board.DismissError()
	return c.SendStatus(fiber.StatusNoContent)
}

// Activity GET /api/board/activity.
func (h *BoardHandler) Activity(c *fiber.Ctx) error {
	if h.activity == nil {
		return c.JSON(fiber.Map{"data": []any{}})
	}
	return c.JSON(fiber.Map{"data": h.activity.Recent()})
}

func (h *BoardHandler) respondBoard(c *fiber.Ctx, status int) error {
	state, board := h.board.SnapshotView()
	return c.Status(status).JSON(fiber.Map{"data": dto.NewBoardResponse(state, board)})
}
