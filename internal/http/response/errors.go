package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	domainagg "github.com/yungbote/careercoach-backend/internal/domain/aggregates"
	"github.com/yungbote/careercoach-backend/internal/platform/apierr"
)

// FromAggregate translates an aggregate failure into an API error.
func FromAggregate(err error) *apierr.Error {
	if err == nil {
		return nil
	}
	var ae *apierr.Error
	if errors.As(err, &ae) {
		return ae
	}
	switch domainagg.CodeOf(err) {
	case domainagg.CodeNotFound:
		return apierr.New(http.StatusNotFound, string(domainagg.CodeNotFound), err)
	case domainagg.CodeValidation:
		return apierr.New(http.StatusBadRequest, string(domainagg.CodeValidation), err)
	case domainagg.CodeConflict:
		return apierr.New(http.StatusInternalServerError, "storage_conflict", err)
	case domainagg.CodeRetryable:
		return apierr.New(http.StatusInternalServerError, "storage_unavailable", err)
	default:
		return apierr.New(http.StatusInternalServerError, "internal", err)
	}
}

// RespondAggregateError writes err with the status its aggregate code maps to.
// Internal causes are not echoed to the client.
func RespondAggregateError(c *gin.Context, err error) {
	ae := FromAggregate(err)
	if ae == nil {
		return
	}
	_ = c.Error(err)
	if apierr.StatusOf(ae) >= http.StatusInternalServerError {
		RespondError(c, ae.Status, ae.Code, errors.New("storage failure"))
		return
	}
	msg := ae.Err
	var aggErr *domainagg.Error
	if errors.As(ae.Err, &aggErr) && aggErr.Message != "" {
		msg = errors.New(aggErr.Message)
	}
	RespondError(c, ae.Status, ae.Code, msg)
}
