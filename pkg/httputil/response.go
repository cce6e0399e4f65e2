package httputil

import (
	stderrors "errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/clinic-api/pkg/errors"
)

// Response wraps all API responses
type Response struct {
	Success  bool        `json:"success"`
	Data     interface{} `json:"data,omitempty"`
	Error    *Error      `json:"error,omitempty"`
	Redirect string      `json:"redirect,omitempty"`
}

// Error represents API error
type Error struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// RespondWithSuccess sends a success response
func RespondWithSuccess(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    data,
	})
}

func RespondWithCreated(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{
		Success: true,
		Data:    data,
	})
}

// RespondWithRedirect sends a success response telling the client where to go next
func RespondWithRedirect(c *gin.Context, status int, data interface{}, redirect string) {
	c.JSON(status, Response{
		Success:  true,
		Data:     data,
		Redirect: redirect,
	})
}

// RespondWithStatus sends an error response with an explicit status
func RespondWithStatus(c *gin.Context, status int, message string, details interface{}) {
	c.AbortWithStatusJSON(status, Response{
		Success: false,
		Error: &Error{
			Code:    status,
			Message: message,
			Details: details,
		},
	})
}

// RespondWithErrorRedirect aborts with an error that tells the client where to go
func RespondWithErrorRedirect(c *gin.Context, status int, message, redirect string) {
	c.Header("Location", redirect)
	c.AbortWithStatusJSON(status, Response{
		Success:  false,
		Error:    &Error{Code: status, Message: message},
		Redirect: redirect,
	})
}

// RespondWithError sends an error response. Errors that know their HTTP
// status are reported with it and their message; anything else is a 500.
func RespondWithError(c *gin.Context, err error) {
	status := StatusOf(err)
	message := "Internal server error"
	if status < http.StatusInternalServerError || status == http.StatusServiceUnavailable {
		message = err.Error()
		var appErr *errors.AppError
		if stderrors.As(err, &appErr) {
			message = appErr.Message
		}
	}

	RespondWithStatus(c, status, message, nil)
}

// StatusOf returns the HTTP status carried by err, or 500
func StatusOf(err error) int {
	var coded interface{ StatusCode() int }
	if stderrors.As(err, &coded) {
		return coded.StatusCode()
	}
	return http.StatusInternalServerError
}
