package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"datalog/internal/actionstore"
	apperrors "datalog/internal/errors"
	"datalog/internal/models"
	"datalog/internal/pagination"
	"datalog/internal/services"
	"datalog/internal/uuid"
)

// ActionHandler serves the action log.
type ActionHandler struct {
	actionService services.ActionServicer
}

// NewActionHandler creates a new ActionHandler.
func NewActionHandler(actionService services.ActionServicer) *ActionHandler {
	return &ActionHandler{actionService: actionService}
}

// ListActionsQuery holds the filters accepted by ListActions.
type ListActionsQuery struct {
	ObjectClass string `form:"object_class"`
	ObjectID    *int64 `form:"object_id" binding:"omitempty,gt=0"`
	ActionType  string `form:"action_type" binding:"omitempty,action_type"`
	Operator    string `form:"operator"`
}

// ListActions handles listing recorded actions.
// @Summary     List actions
// @Description Get a paginated list of recorded actions, newest first
// @Tags        actions
// @Produce     json
// @Param       object_class query string false "Entity type, e.g. models.Product"
// @Param       object_id    query int    false "Entity identifier"
// @Param       action_type  query string false "INSERT, UPDATE or DELETE"
// @Param       operator     query string false "Operator name"
// @Param       page         query int    false "Page number (default 1)"
// @Param       page_size    query int    false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[models.Action] "Paginated actions"
// @Failure     400 {object} ErrorResponse "Invalid filter"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /actions [get]
func (h *ActionHandler) ListActions(c *gin.Context) {
	var query ListActionsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}
	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	filter := actionstore.Filter{
		ObjectClass: query.ObjectClass,
		ObjectID:    query.ObjectID,
		ActionType:  models.ActionType(query.ActionType),
		Operator:    query.Operator,
	}
	result, err := h.actionService.ListActions(c.Request.Context(), filter, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetAction handles retrieving one action with its changes.
// @Summary     Get action by ID
// @Tags        actions
// @Produce     json
// @Param       id path string true "Action ID"
// @Success     200 {object} models.Action "Action details"
// @Failure     400 {object} ErrorResponse "Invalid action ID"
// @Failure     404 {object} ErrorResponse "Action not found"
// @Router      /actions/{id} [get]
func (h *ActionHandler) GetAction(c *gin.Context) {
	id := c.Param("id")
	if !uuid.IsValid(id) {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "Invalid id"))
		return
	}

	action, err := h.actionService.GetActionByID(c.Request.Context(), id)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"action": action})
}
