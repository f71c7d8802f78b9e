package routes

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/kuyua/kuyua-api/logging"
	"github.com/kuyua/kuyua-api/metrics"
	"go.uber.org/zap"
)

// Use installs the middleware chain shared by every route.
func Use(app *fiber.App, opts Options) {
	log := opts.Log
	if log == nil {
		log = zap.NewNop()
	}
	origins := opts.CORSOrigins
	if origins == "" {
		origins = "*"
	}

	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: origins,
		AllowMethods: "GET,HEAD,OPTIONS",
	}))
	app.Use(logging.AccessLog(log))
	app.Use(observe(opts.Metrics))
}

func observe(m *metrics.Collector) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			status = fiber.StatusInternalServerError
			var fe *fiber.Error
			if errors.As(err, &fe) {
				status = fe.Code
			}
		}
		// Label values outlive the request; fiber strings point into reused buffers.
		m.ObserveRequest(utils.CopyString(c.Route().Path), utils.CopyString(c.Method()), status, time.Since(start))
		return err
	}
}
