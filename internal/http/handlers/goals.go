package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	domainagg "github.com/yungbote/careercoach-backend/internal/domain/aggregates"
	"github.com/yungbote/careercoach-backend/internal/domain/goals/triggers"
	"github.com/yungbote/careercoach-backend/internal/http/response"
	"github.com/yungbote/careercoach-backend/internal/platform/ctxutil"
	"github.com/yungbote/careercoach-backend/internal/platform/logger"
	"github.com/yungbote/careercoach-backend/internal/services"
)

const defaultEventLimit = 50

type GoalsHandler struct {
	log        *logger.Logger
	registry   *triggers.Registry
	baseline   domainagg.BaselineActionsAggregate
	weekly     domainagg.WeeklyGoalsAggregate
	events     domainagg.GoalEventReader
	dispatcher services.GoalTriggerDispatcher
}

func NewGoalsHandler(
	log *logger.Logger,
	registry *triggers.Registry,
	baseline domainagg.BaselineActionsAggregate,
	weekly domainagg.WeeklyGoalsAggregate,
	events domainagg.GoalEventReader,
	dispatcher services.GoalTriggerDispatcher,
) *GoalsHandler {
	return &GoalsHandler{
		log:        log.With("handler", "GoalsHandler"),
		registry:   registry,
		baseline:   baseline,
		weekly:     weekly,
		events:     events,
		dispatcher: dispatcher,
	}
}

func requireUser(c *gin.Context) (uuid.UUID, bool) {
	userID := ctxutil.UserIDFrom(c.Request.Context())
	if userID == uuid.Nil {
		response.RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return uuid.Nil, false
	}
	return userID, true
}

// GET /api/goals/baseline
func (h *GoalsHandler) GetBaseline(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	status, err := h.baseline.GetStatus(c.Request.Context(), userID)
	if err != nil {
		response.RespondAggregateError(c, err)
		return
	}
	response.RespondOK(c, status)
}

type toggleActionRequest struct {
	IsCompleted *bool `json:"is_completed"`
}

// PATCH /api/goals/baseline/:actionId
func (h *GoalsHandler) ToggleBaselineAction(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	var req toggleActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	if req.IsCompleted == nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_body", errors.New("is_completed is required"))
		return
	}
	updated, err := h.baseline.ManualToggle(c.Request.Context(), domainagg.ManualToggleInput{
		UserID:      userID,
		ActionID:    c.Param("actionId"),
		IsCompleted: *req.IsCompleted,
	})
	if err != nil {
		response.RespondAggregateError(c, err)
		return
	}
	response.RespondOK(c, updated)
}

// GET /api/goals/weekly
func (h *GoalsHandler) GetWeekly(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	progress, err := h.weekly.GetProgress(c.Request.Context(), userID)
	if err != nil {
		response.RespondAggregateError(c, err)
		return
	}
	response.RespondOK(c, progress)
}

type setGoalEnabledRequest struct {
	IsEnabled *bool `json:"is_enabled"`
}

// PATCH /api/goals/weekly/:goalId
func (h *GoalsHandler) SetWeeklyGoalEnabled(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	var req setGoalEnabledRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	if req.IsEnabled == nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_body", errors.New("is_enabled is required"))
		return
	}
	goalID := c.Param("goalId")
	if err := h.weekly.SetGoalEnabled(c.Request.Context(), domainagg.SetGoalEnabledInput{
		UserID:  userID,
		GoalID:  goalID,
		Enabled: *req.IsEnabled,
	}); err != nil {
		response.RespondAggregateError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"goal_id": strings.TrimSpace(goalID), "is_enabled": *req.IsEnabled})
}

type fireTriggerRequest struct {
	Trigger     string `json:"trigger"`
	IncrementBy int    `json:"increment_by"`
}

// POST /api/goals/triggers
//
// The trigger is processed asynchronously; 202 only means it was handed to the dispatcher.
func (h *GoalsHandler) FireTrigger(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	var req fireTriggerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	trigger := triggers.Normalize(req.Trigger)
	if !h.registry.Known(trigger) {
		response.RespondError(c, http.StatusBadRequest, "invalid_trigger", errors.New("unknown trigger: "+trigger))
		return
	}
	if req.IncrementBy < 0 {
		response.RespondError(c, http.StatusBadRequest, "validation", errors.New("increment_by must not be negative"))
		return
	}
	queued := h.dispatcher.Fire(services.TriggerEvent{
		UserID:      userID,
		Trigger:     trigger,
		IncrementBy: req.IncrementBy,
	})
	response.RespondAccepted(c, gin.H{"trigger": trigger, "queued": queued})
}

// GET /api/goals/events?limit=
func (h *GoalsHandler) ListEvents(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	limit := defaultEventLimit
	if raw := strings.TrimSpace(c.Query("limit")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			response.RespondError(c, http.StatusBadRequest, "invalid_limit", errors.New("limit must be a positive integer"))
			return
		}
		limit = n
	}
	events, err := h.events.ListEvents(c.Request.Context(), userID, limit)
	if err != nil {
		response.RespondAggregateError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"events": events})
}
