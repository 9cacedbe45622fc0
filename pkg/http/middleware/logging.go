package middleware

import (
	"log"
	"time"

	"github.com/labstack/echo/v4"
)

// RequestLogging writes one line per request: method, path, client IP,
// committed status and latency. It sits inside Recover, so panicking
// handlers are logged with the 500 the recovery wrote.
func RequestLogging() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)

			log.Printf("%s %s from %s -> %d in %s",
				c.Request().Method,
				c.Request().URL.Path,
				c.RealIP(),
				c.Response().Status,
				time.Since(start).Round(time.Microsecond),
			)

			return err
		}
	}
}
