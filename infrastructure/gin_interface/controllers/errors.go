package controllers

import (
	"errors"
	"github.com/gin-gonic/gin"
	"net/http"
	"storybook-generator/application/ports/outbound"
	"storybook-generator/domain"
	"storybook-generator/infrastructure/gin_interface/dto"
	"strconv"
)

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidRequest), errors.Is(err, domain.ErrUnknownVoice):
		return http.StatusBadRequest
	case domain.IsEntityNotFound(err), errors.Is(err, domain.ErrVideoAuthorizationRequired):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrNoStory), errors.Is(err, domain.ErrPageNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrGenerationInProgress), errors.Is(err, domain.ErrAudioNotReady):
		return http.StatusConflict
	case errors.Is(err, domain.ErrNothingToPlay):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrExportDisabled):
		return http.StatusServiceUnavailable
	case errors.Is(err, domain.ErrProviderOperation), errors.Is(err, domain.ErrMalformedResponse),
		errors.Is(err, domain.ErrPageCountMismatch), errors.Is(err, domain.ErrMissingMedia):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// abortWithError answers with the localized message; the raw error only reaches the log.
func abortWithError(c *gin.Context, logger outbound.LoggerPort, locale string, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		logger.ErrorWithFields(err, "request failed", map[string]interface{}{
			"path":   c.FullPath(),
			"status": status,
		})
	} else {
		logger.DebugWithFields("request rejected", map[string]interface{}{
			"path":  c.FullPath(),
			"error": err.Error(),
		})
	}
	c.AbortWithStatusJSON(status, dto.ErrorResponse{Error: domain.UserMessage(err, locale)})
}

func pageParam(c *gin.Context) (int, error) {
	n, err := strconv.Atoi(c.Param("page"))
	if err != nil || n < 1 {
		return 0, domain.ErrInvalidRequest
	}
	return n, nil
}
