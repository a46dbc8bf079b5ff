package aggregates

import (
	"fmt"

	"github.com/google/uuid"

	domainagg "github.com/yungbote/careercoach-backend/internal/domain/aggregates"
)

// Guards shared by the goal aggregates. Each returns nil when the check passes.

func requireUser(op string, userID uuid.UUID) error {
	if userID == uuid.Nil {
		return domainagg.NewError(domainagg.CodeValidation, op, "missing user_id", nil)
	}
	return nil
}

func requireID(op, field, id string) error {
	if id == "" {
		return domainagg.NewError(domainagg.CodeValidation, op, "missing "+field, nil)
	}
	return nil
}

func requireNonNegative(op, field string, v int) error {
	if v < 0 {
		return domainagg.NewError(domainagg.CodeValidation, op, fmt.Sprintf("%s must not be negative: %d", field, v), nil)
	}
	return nil
}

// requireFound reports a missing target row as not_found.
func requireFound(op string, found bool, kind, id string) error {
	if found {
		return nil
	}
	return domainagg.NewError(domainagg.CodeNotFound, op, fmt.Sprintf("%s not found: %s", kind, id), nil)
}

// requireRowsChanged fails a guarded update that matched no row after the row was read
// in the same transaction.
func requireRowsChanged(n int64, message string) error {
	if n > 0 {
		return nil
	}
	return InvariantError(message)
}

func requireConfigured(op string, ok bool, what string) error {
	if ok {
		return nil
	}
	return domainagg.NewError(domainagg.CodeInternal, op, what+" not configured", nil)
}
