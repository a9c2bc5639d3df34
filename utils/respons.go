package utils

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type JSONResponse struct {
	Status     bool         `json:"status"`
	Message    string       `json:"message"`
	Data       interface{}  `json:"data,omitempty"`
	Pagination *Pagination  `json:"pagination,omitempty"`
	Errors     []FieldError `json:"errors,omitempty"`
}

type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
}

func NewPagination(page, limit int, total int64) *Pagination {
	pages := 0
	if limit > 0 {
		pages = int((total + int64(limit) - 1) / int64(limit))
	}
	return &Pagination{Page: page, Limit: limit, Total: total, TotalPages: pages}
}

func RespondJSON(c *gin.Context, code int, message string, data interface{}) {
	c.JSON(code, JSONResponse{
		Status:  code >= 200 && code < 300,
		Message: message,
		Data:    data,
	})
}

func RespondPage(c *gin.Context, message string, data interface{}, page *Pagination) {
	c.JSON(http.StatusOK, JSONResponse{
		Status:     true,
		Message:    message,
		Data:       data,
		Pagination: page,
	})
}

func RespondError(c *gin.Context, code int, err error) {
	c.JSON(code, JSONResponse{
		Status:  false,
		Message: err.Error(),
	})
}

// RespondAppError maps service errors onto the JSON envelope. Unknown errors
// are logged and hidden behind a generic 500.
func RespondAppError(c *gin.Context, err error) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		c.JSON(appErr.StatusCode(), JSONResponse{
			Status:  false,
			Message: appErr.Message,
			Errors:  appErr.Fields,
		})
		return
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		RespondError(c, http.StatusConflict, errors.New("Resource already exists"))
		return
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		RespondError(c, http.StatusNotFound, errors.New("Resource not found"))
		return
	}

	if ErrorLogger != nil {
		ErrorLogger.WithFields(logrus.Fields{
			"method": c.Request.Method,
			"path":   c.Request.URL.Path,
		}).Error(err)
	}
	RespondError(c, http.StatusInternalServerError, errors.New("Internal server error"))
}

// RespondBindError renders request binding failures. Validator errors are
// expanded into one entry per field.
func RespondBindError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		c.JSON(http.StatusBadRequest, JSONResponse{
			Status:  false,
			Message: "Validation error",
			Errors:  []FieldError{{Field: "body", Message: err.Error()}},
		})
		return
	}

	fields := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, FieldError{
			Field:   lowerFirst(fe.Field()),
			Message: fieldMessage(fe),
		})
	}
	c.JSON(http.StatusBadRequest, JSONResponse{
		Status:  false,
		Message: "Validation error",
		Errors:  fields,
	})
}

func fieldMessage(fe validator.FieldError) string {
	name := lowerFirst(fe.Field())
	switch fe.Tag() {
	case "required":
		return name + " is required"
	case "min":
		if fe.Kind().String() == "string" {
			return name + " must be at least " + fe.Param() + " characters"
		}
		return name + " must be at least " + fe.Param()
	case "max":
		if fe.Kind().String() == "string" {
			return name + " must be at most " + fe.Param() + " characters"
		}
		return name + " must be at most " + fe.Param()
	case "gt":
		return name + " must be greater than " + fe.Param()
	case "gte":
		return name + " must be greater than or equal to " + fe.Param()
	case "lte":
		return name + " must be less than or equal to " + fe.Param()
	case "password":
		return name + " must have at least 8 characters with an uppercase letter, a lowercase letter and a number"
	case "email":
		return name + " must be a valid email"
	case "uuid", "uuid4":
		return name + " must be a valid UUID"
	case "oneof":
		return name + " must be one of: " + fe.Param()
	case "username":
		return name + " can only contain letters, numbers and underscores"
	}
	return name + " is invalid"
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
