package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/7FIl/freepass-2026/middlewares"
	"github.com/7FIl/freepass-2026/services"
	"github.com/7FIl/freepass-2026/utils"
)

func requireActor(c *gin.Context) (services.Actor, bool) {
	actor, ok := middlewares.CurrentActor(c)
	if !ok {
		utils.RespondError(c, http.StatusUnauthorized, errors.New("Authentication required"))
		return services.Actor{}, false
	}
	return actor, true
}

// pathID reads a UUID path parameter and answers 400 when it is malformed.
func pathID(c *gin.Context, param, field string) (string, bool) {
	raw := c.Param(param)
	id, err := uuid.Parse(raw)
	if err != nil {
		utils.RespondAppError(c, utils.NewValidationError("Validation error",
			utils.FieldError{Field: field, Message: field + " must be a valid UUID"}))
		return "", false
	}
	return id.String(), true
}

func queryInt(c *gin.Context, key string) int {
	n, err := strconv.Atoi(c.Query(key))
	if err != nil {
		return 0
	}
	return n
}
