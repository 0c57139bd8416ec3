package httpapi

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/i474232898/pin-forecast/internal/distance"
	"github.com/i474232898/pin-forecast/internal/geo"
	"github.com/i474232898/pin-forecast/internal/weather"
)

// WeatherService is implemented by *weather.Service.
type WeatherService interface {
	GetWeather(ctx context.Context, in geo.Input) (*weather.Snapshot, error)
}

// DistanceService is implemented by *distance.Service.
type DistanceService interface {
	GetDistance(ctx context.Context, origin, destination geo.Input) (*distance.Result, error)
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, d Deps) {
	if d.Gatherer != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{})))
	}

	api := app.Group("/api")

	api.Get("/weather", func(c *fiber.Ctx) error {
		snap, err := d.Weather.GetWeather(c.UserContext(), geo.Pair(c.Query("lat"), c.Query("lng")))
		if err != nil {
			return err
		}
		return c.JSON(snap)
	})

	api.Get("/distance", func(c *fiber.Ctx) error {
		origin := geo.Pair(c.Query("origin[lat]"), c.Query("origin[lng]"))
		destination := geo.Pair(c.Query("destination[lat]"), c.Query("destination[lng]"))

		res, err := d.Distance.GetDistance(c.UserContext(), origin, destination)
		if err != nil {
			return err
		}
		return c.JSON(res)
	})
}
