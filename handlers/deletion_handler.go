// SPDX-License-Identifier: GPL-3.0-only

package handlers

import (
	"context"
	"errors"
	"net/http"

	"deletion-server/deletion"
	"deletion-server/models"

	"github.com/labstack/echo/v4"
)

type TokenIssuer interface {
	Issue(ctx context.Context, req deletion.IssueRequest) (*models.DeletionToken, error)
}

type TokenConfirmer interface {
	Confirm(ctx context.Context, value string) (*deletion.ConfirmResult, error)
}

type DeletionHandler struct {
	issuer    TokenIssuer
	confirmer TokenConfirmer
}

func NewDeletionHandler(issuer TokenIssuer, confirmer TokenConfirmer) *DeletionHandler {
	return &DeletionHandler{issuer: issuer, confirmer: confirmer}
}

// IssueHandler godoc
// @Summary      Request account deletion
// @Description  Re-authenticates the user and emails a single-use confirmation link valid for 24 hours.
// @Tags         deletion
// @Accept       json
// @Produce      json
// @Param        issueRequest  body  IssueRequest  true  "Issue request payload"
// @Success      200 {object} OKResponse         "Confirmation email sent"
// @Failure      400 {object} echo.HTTPError     "Bad request, missing required fields"
// @Failure      401 {object} echo.HTTPError     "Unauthorized"
// @Failure      429 {object} echo.HTTPError     "Too many requests"
// @Failure      500 {object} echo.HTTPError     "Internal server error"
// @Failure      502 {object} echo.HTTPError     "Confirmation email could not be sent"
// @Router       /issue [post]
func (h *DeletionHandler) IssueHandler(c echo.Context) error {
	logger := c.Logger()

	var req IssueRequest
	if err := c.Bind(&req); err != nil {
		logger.Error("Invalid issue request payload:", err)
		return echo.ErrBadRequest
	}

	userAgent := c.Request().UserAgent()
	realIP := c.RealIP()
	_, err := h.issuer.Issue(c.Request().Context(), deletion.IssueRequest{
		Email:     req.Email,
		Password:  req.Password,
		Reason:    req.Reason,
		Nickname:  req.Nickname,
		IP:        &realIP,
		UserAgent: &userAgent,
	})
	if err != nil {
		switch {
		case errors.Is(err, deletion.ErrInvalidInput):
			return &echo.HTTPError{Code: http.StatusBadRequest, Message: "email and password fields are required"}
		case errors.Is(err, deletion.ErrUnauthorized):
			logger.Warn("Deletion request rejected: credentials did not verify")
			return &echo.HTTPError{Code: http.StatusUnauthorized, Message: "Credentials are incorrect, please check your email and password"}
		case errors.Is(err, deletion.ErrRateLimited):
			return &echo.HTTPError{Code: http.StatusTooManyRequests, Message: "Too many deletion requests, please try again later"}
		case errors.Is(err, deletion.ErrDelivery):
			logger.Errorf("Failed to deliver deletion email: %v", err)
			return &echo.HTTPError{Code: http.StatusBadGateway, Message: "Failed to send the confirmation email"}
		case errors.Is(err, deletion.ErrPersistence):
			logger.Errorf("Failed to store deletion token: %v", err)
			return &echo.HTTPError{Code: http.StatusInternalServerError, Message: "Failed to create the deletion request"}
		default:
			logger.Errorf("Unexpected issue failure: %v", err)
			return echo.ErrInternalServerError
		}
	}

	return c.JSON(http.StatusOK, OKResponse{OK: true})
}

// ConfirmHandler godoc
// @Summary      Confirm account deletion
// @Description  Consumes the token from the confirmation link and deletes the account. Accepts the token as JSON body or as the token query parameter.
// @Tags         deletion
// @Accept       json
// @Produce      json
// @Param        confirmRequest  body   ConfirmRequest  false  "Confirm request payload"
// @Param        token           query  string          false  "Deletion token"
// @Success      200 {object} ConfirmResponse    "Account deleted"
// @Failure      400 {object} echo.HTTPError     "Missing, unknown, expired or used token"
// @Failure      500 {object} echo.HTTPError     "Internal server error"
// @Router       /confirm [post]
// @Router       /confirm [get]
func (h *DeletionHandler) ConfirmHandler(c echo.Context) error {
	logger := c.Logger()

	var req ConfirmRequest
	if err := c.Bind(&req); err != nil {
		logger.Error("Invalid confirm request payload:", err)
		return echo.ErrBadRequest
	}
	if req.Token == "" {
		req.Token = c.QueryParam("token")
	}

	res, err := h.confirmer.Confirm(c.Request().Context(), req.Token)
	if err != nil {
		switch {
		case errors.Is(err, deletion.ErrInvalidInput):
			return &echo.HTTPError{Code: http.StatusBadRequest, Message: "token field is required"}
		case errors.Is(err, deletion.ErrInvalidToken):
			return &echo.HTTPError{Code: http.StatusBadRequest, Message: "Invalid token"}
		case errors.Is(err, deletion.ErrExpired):
			return &echo.HTTPError{Code: http.StatusBadRequest, Message: "Token has expired"}
		case errors.Is(err, deletion.ErrAlreadyUsed):
			return &echo.HTTPError{Code: http.StatusBadRequest, Message: "Token has already been used"}
		case errors.Is(err, deletion.ErrDeletionFailed):
			logger.Errorf("Account deletion failed after token consumption: %v", err)
			return &echo.HTTPError{Code: http.StatusInternalServerError, Message: "Account deletion failed, please contact support"}
		case errors.Is(err, deletion.ErrStore):
			logger.Errorf("Token store unavailable: %v", err)
			return &echo.HTTPError{Code: http.StatusInternalServerError, Message: "Failed to look up the token"}
		default:
			logger.Errorf("Unexpected confirm failure: %v", err)
			return echo.ErrInternalServerError
		}
	}

	return c.JSON(http.StatusOK, ConfirmResponse{OK: true, Email: res.Email})
}
