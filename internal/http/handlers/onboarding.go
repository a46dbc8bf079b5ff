package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	domainagg "github.com/yungbote/careercoach-backend/internal/domain/aggregates"
	"github.com/yungbote/careercoach-backend/internal/domain/goals"
	"github.com/yungbote/careercoach-backend/internal/http/response"
)

const maxPlanBytes = 1 << 20

type OnboardingHandler struct {
	onboarding domainagg.OnboardingAggregate
}

func NewOnboardingHandler(onboarding domainagg.OnboardingAggregate) *OnboardingHandler {
	return &OnboardingHandler{onboarding: onboarding}
}

type completeOnboardingRequest struct {
	Plan           goals.GeneratedPlan   `json:"plan"`
	ConfirmedGoals []goals.ConfirmedGoal `json:"confirmed_goals"`
	TargetRole     string                `json:"target_role"`
	Timeline       string                `json:"timeline"`
}

type completeOnboardingResponse struct {
	BaselineActionCount int        `json:"baseline_action_count"`
	WeeklyGoalCount     int        `json:"weekly_goal_count"`
	WeekStart           string     `json:"week_start"`
	TargetDate          *time.Time `json:"target_date,omitempty"`
}

// POST /api/onboarding/complete
func (h *OnboardingHandler) Complete(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxPlanBytes)
	var req completeOnboardingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	res, err := h.onboarding.Materialize(c.Request.Context(), domainagg.MaterializeInput{
		UserID:         userID,
		Plan:           req.Plan,
		ConfirmedGoals: req.ConfirmedGoals,
		TargetRole:     req.TargetRole,
		Timeline:       req.Timeline,
	})
	if err != nil {
		response.RespondAggregateError(c, err)
		return
	}
	response.RespondOK(c, completeOnboardingResponse{
		BaselineActionCount: res.BaselineActionCount,
		WeeklyGoalCount:     res.WeeklyGoalCount,
		WeekStart:           res.WeekStart,
		TargetDate:          res.TargetDate,
	})
}
