package handler

import (
	"net/http"
	"strconv"

	"buyinbuyout/internal/middleware"
	"buyinbuyout/pkg/apperror"
	"buyinbuyout/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const (
	msgInternal       = "Internal server error."
	msgInvalidPayload = "Invalid request payload"
)

// respondError writes the envelope for err. Business failures keep their
// status and message; anything else is logged and reported as a bare 500.
func respondError(c *gin.Context, log logrus.FieldLogger, op string, err error) {
	if appErr, ok := apperror.As(err); ok {
		if appErr.Err != nil {
			log.WithFields(logrus.Fields{
				"op":         op,
				"request_id": middleware.RequestID(c),
			}).WithError(appErr.Err).Debug(appErr.Message)
		}
		c.JSON(appErr.Status, response.Error(appErr.Status, appErr.Message))
		return
	}

	log.WithFields(logrus.Fields{
		"op":         op,
		"request_id": middleware.RequestID(c),
	}).WithError(err).Error("request failed")
	c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, msgInternal))
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, message))
}

// parseID reads a positive numeric :id path parameter
func parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 0)
	if err != nil || id == 0 {
		badRequest(c, "Invalid id")
		return 0, false
	}
	return uint(id), true
}

// currentUser reads the caller id set by middleware.RequireAuth
func currentUser(c *gin.Context) (uint, bool) {
	id, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "User ID not found in context"))
		return 0, false
	}
	return id, true
}
