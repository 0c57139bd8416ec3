package apperr_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/i474232898/pin-forecast/internal/apperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindOf(t *testing.T) {
	t.Run("wrapped error keeps its kind", func(t *testing.T) {
		err := fmt.Errorf("handler: %w", apperr.RouteUnavailable("no route"))

		assert.Equal(t, apperr.KindRouteUnavailable, apperr.KindOf(err))
	})

	t.Run("plain error is unknown", func(t *testing.T) {
		assert.Equal(t, apperr.KindUnknown, apperr.KindOf(assert.AnError))
	})
}

func TestError(t *testing.T) {
	t.Run("message includes op and cause", func(t *testing.T) {
		err := apperr.Upstream(http.StatusTooManyRequests, "rate limited", assert.AnError).WithOp("distance.GetDistance")

		assert.Equal(t, "distance.GetDistance: rate limited: "+assert.AnError.Error(), err.Error())
		require.ErrorIs(t, err, assert.AnError)
		assert.Equal(t, http.StatusTooManyRequests, err.UpstreamStatus)
	})

	t.Run("every kind renders as bad request", func(t *testing.T) {
		errs := []*apperr.Error{
			apperr.Validation("bad", "lat is required"),
			apperr.Configuration("missing key"),
			apperr.Upstream(http.StatusBadGateway, "down", nil),
			apperr.RouteUnavailable("no route"),
			apperr.Internal("broken", nil),
		}
		for _, e := range errs {
			assert.Equal(t, http.StatusBadRequest, e.HTTPStatus(), e.Kind.String())
		}
	})

	t.Run("as finds typed error", func(t *testing.T) {
		e, ok := apperr.As(fmt.Errorf("wrap: %w", apperr.Validation("bad", "lng is required")))

		require.True(t, ok)
		assert.Equal(t, []string{"lng is required"}, e.Details)
	})
}
