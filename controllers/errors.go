package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/table-order/ordering"
	"github.com/yeremiapane/table-order/utils"
)

var (
	ErrNoPermission = &CustomError{"You do not have permission"}
	ErrTableInUse   = &CustomError{"Table still has orders and cannot be deleted"}
	ErrInvalidID    = &CustomError{"Invalid ID format"}
	ErrBadCreds     = &CustomError{"invalid credentials"}
)

type CustomError struct {
	Message string
}

func (e *CustomError) Error() string {
	return e.Message
}

// statusFor memetakan error workflow ke HTTP status
func statusFor(err error) int {
	switch {
	case errors.Is(err, ordering.ErrInvalidTableID),
		errors.Is(err, ordering.ErrInvalidOrderID),
		errors.Is(err, ordering.ErrEmptyCart),
		errors.Is(err, ordering.ErrInvalidQuantity),
		errors.Is(err, ErrInvalidID):
		return http.StatusBadRequest
	case errors.Is(err, ordering.ErrTableNotFound),
		errors.Is(err, ordering.ErrOrderNotFound):
		return http.StatusNotFound
	case errors.Is(err, ordering.ErrStaleOrder),
		errors.Is(err, ordering.ErrOrderLocked),
		errors.Is(err, ErrTableInUse):
		return http.StatusConflict
	case errors.Is(err, ordering.ErrInvalidTransition),
		errors.Is(err, ordering.ErrUnknownStatus),
		errors.Is(err, ordering.ErrNotPayable),
		errors.Is(err, ordering.ErrItemUnavailable):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ordering.ErrRelationMissing):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func respondServiceError(c *gin.Context, err error) {
	code := statusFor(err)
	if code >= http.StatusInternalServerError {
		utils.ErrorLogger.Printf("%s %s failed: %v", c.Request.Method, c.Request.URL.Path, err)
	}
	utils.RespondError(c, code, err)
}
