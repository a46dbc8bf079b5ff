package aggregates

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	domainagg "github.com/yungbote/careercoach-backend/internal/domain/aggregates"
)

func TestMapError_Validation(t *testing.T) {
	err := MapError("op", ValidationError("bad input"))
	if !domainagg.IsCode(err, domainagg.CodeValidation) {
		t.Fatalf("expected validation code, got %q (%v)", domainagg.CodeOf(err), err)
	}
}

func TestMapError_NotFound(t *testing.T) {
	err := MapError("op", gorm.ErrRecordNotFound)
	if !domainagg.IsCode(err, domainagg.CodeNotFound) {
		t.Fatalf("expected not_found code, got %q (%v)", domainagg.CodeOf(err), err)
	}
}

func TestMapError_PassthroughAggregateError(t *testing.T) {
	in := domainagg.NewError(domainagg.CodeRetryable, "op", "retry", errors.New("boom"))
	out := MapError("other", in)
	if out != in {
		t.Fatalf("expected passthrough aggregate error")
	}
}

func TestMapError_StoreCodes(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want domainagg.ErrorCode
	}{
		{"pg unique", &pgconn.PgError{Code: "23505"}, domainagg.CodeConflict},
		{"pg fk", &pgconn.PgError{Code: "23503"}, domainagg.CodePreconditionFailed},
		{"pg serialization", &pgconn.PgError{Code: "40001"}, domainagg.CodeRetryable},
		{"gorm duplicate", gorm.ErrDuplicatedKey, domainagg.CodeConflict},
		{"sqlite unique", errors.New("UNIQUE constraint failed: weekly_goal_progress.user_id"), domainagg.CodeConflict},
		{"sqlite locked", errors.New("database is locked"), domainagg.CodeRetryable},
		{"canceled", context.Canceled, domainagg.CodeRetryable},
		{"other", errors.New("syntax error near SELECT"), domainagg.CodeInternal},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := MapError("op", tc.err)
			if !domainagg.IsCode(err, tc.want) {
				t.Fatalf("want %q got %q (%v)", tc.want, domainagg.CodeOf(err), err)
			}
			if !domainagg.IsStorageFailure(err) && tc.want != domainagg.CodePreconditionFailed {
				t.Fatalf("store error should count as storage failure: %v", err)
			}
		})
	}
}
