package httpapi

import (
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/i474232898/pin-forecast/internal/apperr"
	"github.com/i474232898/pin-forecast/internal/metrics"
)

const appName = "pin-forecast"

// Deps are the collaborators of the HTTP layer.
type Deps struct {
	Log      *slog.Logger
	Weather  WeatherService
	Distance DistanceService
	Metrics  *metrics.Metrics
	Gatherer prometheus.Gatherer // served on /metrics when set

	// CORSOrigins is a comma-separated origin list, "*" when empty.
	CORSOrigins string
}

// errorBody is the JSON shape of every failed request.
type errorBody struct {
	Error   string   `json:"error"`
	Details []string `json:"details,omitempty"`
}

// NewApp builds the Fiber app with middleware and routes.
func NewApp(d Deps) *fiber.App {
	if d.Log == nil {
		d.Log = slog.Default()
	}

	app := fiber.New(fiber.Config{
		AppName:               appName,
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          30 * time.Second,
		ErrorHandler:          errorHandler(d.Log, d.Metrics),
	})

	origins := strings.TrimSpace(d.CORSOrigins)
	if origins == "" {
		origins = "*"
	}

	app.Use(recover.New())
	app.Use(requestid.New(requestid.Config{Generator: uuid.NewString}))
	app.Use(logger.New(logger.Config{
		Format: "${time} ${locals:requestid} ${status} - ${latency} ${method} ${path}\n",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: origins,
		AllowMethods: "GET,OPTIONS",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": appName,
		})
	})

	RegisterRoutes(app, d)

	return app
}

// errorHandler renders classified failures as 400 {error, details?}.
// Anything unclassified is reported without leaking its text.
func errorHandler(log *slog.Logger, m *metrics.Metrics) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			return c.Status(fe.Code).JSON(errorBody{Error: fe.Message})
		}

		reqID, _ := c.Locals("requestid").(string)

		e, ok := apperr.As(err)
		if !ok {
			e = apperr.Internal("internal error", err)
		}

		if m != nil {
			m.RequestErrors.WithLabelValues(e.Kind.String()).Inc()
		}

		attrs := []any{
			slog.String("request_id", reqID),
			slog.String("path", c.Path()),
			slog.String("kind", e.Kind.String()),
			slog.String("error", err.Error()),
		}
		if e.Kind == apperr.KindInternal {
			log.Error("request failed", attrs...)
		} else {
			log.Info("request rejected", attrs...)
		}

		return c.Status(e.HTTPStatus()).JSON(errorBody{Error: e.Message, Details: e.Details})
	}
}
