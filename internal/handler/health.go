package handler // declare the package name; contains HTTP handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Live is the root liveness banner used by uptime checks.
func Live(c echo.Context) error {
	return c.String(http.StatusOK, "Ocean Hazard Reporting API is live!")
}

// Health is the health-check endpoint used by load balancers and
// monitoring systems to verify that the service is running.
func Health(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}
