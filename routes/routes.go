// SPDX-License-Identifier: GPL-3.0-only

package routes

import (
	"net/http"

	"deletion-server/commons"
	"deletion-server/handlers"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

func RegisterRoutes(e *echo.Echo, h *handlers.DeletionHandler, allowedOrigins []string) {
	commons.Logger.Debug("Registering deletion routes")
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: allowedOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderAuthorization, echo.HeaderContentType, "apikey", "x-client-info"},
		MaxAge:       86400,
	}))
	e.POST("/issue", h.IssueHandler)
	e.POST("/confirm", h.ConfirmHandler)
	e.GET("/confirm", h.ConfirmHandler)
	commons.Logger.Infof("Deletion routes registered successfully (origins: %v)", allowedOrigins)
}
