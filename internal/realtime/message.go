package realtime

import (
	"strings"

	"github.com/google/uuid"
)

type SSEEvent string

const (
	SSEEventGoalsUpdated     SSEEvent = "GoalsUpdated"
	SSEEventBaselineComplete SSEEvent = "BaselineAllComplete"
	SSEEventPlanMaterialized SSEEvent = "PlanMaterialized"
)

type SSEMessage struct {
	Channel string   `json:"channel"`
	Event   SSEEvent `json:"event"`
	Data    any      `json:"data,omitempty"`
}

// UserChannel is the per-user channel every goal notification is published on.
func UserChannel(userID uuid.UUID) string {
	return "user:" + userID.String()
}

// UserFromChannel is the inverse of UserChannel.
func UserFromChannel(channel string) (uuid.UUID, bool) {
	raw, ok := strings.CutPrefix(strings.TrimSpace(channel), "user:")
	if !ok {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}
