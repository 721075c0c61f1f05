package bizerror

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sigem/misc"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/jinzhu/gorm"
	"github.com/sirupsen/logrus"
)

var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")
	ErrInvalidPassword = errors.New("invalid password")
	ErrNotFound        = errors.New("record not found")

	ErrInvalidRating         = errors.New("rating must be an integer between 1 and 3")
	ErrMissionEndDateMissing = errors.New("end date is required for a concluded mission")
	ErrMissionUnknownStatus  = errors.New("unknown mission status")

	ErrFunctionExisted    = errors.New("a function with this name already exists in the mission")
	ErrFunctionReferenced = errors.New("function is referenced by assignments")
	ErrFunctionMismatch   = errors.New("function does not belong to the given mission")

	ErrAssignmentExisted = errors.New("officer already holds this function in this mission")

	ErrUnitReferenced = errors.New("unit is referenced by officers or subordinate units")
	ErrUnitCycle      = errors.New("unit cannot be subordinated to its own subtree")

	ErrOfficerNotLinked      = errors.New("user has no linked officer")
	ErrRequestPendingExisted = errors.New("a pending request for this function already exists")
	ErrAlreadyAssigned       = errors.New("officer already holds this assignment")
	ErrAlreadyEvaluated      = errors.New("request has already been evaluated")
)

type BizError interface {
	Respond() *BizErrorDetail
}

type BizErrorDetail struct {
	Status  int
	Code    string
	Message string

	Data  interface{}
	Cause error
}

type ErrBadParam struct {
	Cause error
}

func (e *ErrBadParam) Unwrap() error {
	return e.Cause
}
func (e *ErrBadParam) Error() string {
	if e.Cause != nil {
		return e.Cause.Error()
	}
	return "common.bad_param"
}
func (e *ErrBadParam) Respond() *BizErrorDetail {
	message := "common.bad_param"
	if e.Cause != nil {
		message = e.Cause.Error()
	}
	return &BizErrorDetail{Status: http.StatusBadRequest, Code: "common.bad_param", Message: message, Data: nil}
}

func ErrorHandling() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer handle(c)
		c.Next()
	}
}

func handle(c *gin.Context) {
	if ret := recover(); ret != nil {
		err, ok := ret.(error)
		if !ok {
			err = errors.New(fmt.Sprintf("%s", ret))
		}
		HandleError(c, err)
	} else {
		if err := c.Errors.Last(); err != nil {
			HandleError(c, err)
		}
	}
}

// mapping of business errors to http status and error codes
var errorResponds = []struct {
	Err    error
	Status int
	Code   string
}{
	{ErrUnauthenticated, http.StatusUnauthorized, "common.unauthenticated"},
	{ErrForbidden, http.StatusForbidden, "security.forbidden"},
	{ErrInvalidPassword, http.StatusForbidden, "account.invalid_password"},
	{ErrInvalidRating, http.StatusBadRequest, "complexity.invalid_rating"},
	{ErrMissionEndDateMissing, http.StatusBadRequest, "mission.end_date_missing"},
	{ErrMissionUnknownStatus, http.StatusBadRequest, "mission.unknown_status"},
	{ErrFunctionExisted, http.StatusConflict, "function.name_existed"},
	{ErrFunctionReferenced, http.StatusConflict, "function.referenced"},
	{ErrFunctionMismatch, http.StatusBadRequest, "function.mission_mismatch"},
	{ErrAssignmentExisted, http.StatusConflict, "assignment.existed"},
	{ErrUnitReferenced, http.StatusConflict, "unit.referenced"},
	{ErrUnitCycle, http.StatusBadRequest, "unit.superior_cycle"},
	{ErrOfficerNotLinked, http.StatusBadRequest, "request.officer_not_linked"},
	{ErrRequestPendingExisted, http.StatusConflict, "request.pending_existed"},
	{ErrAlreadyAssigned, http.StatusConflict, "request.already_assigned"},
	{ErrAlreadyEvaluated, http.StatusConflict, "request.already_evaluated"},
}

func HandleError(c *gin.Context, err error) {
	logrus.Error(err)

	genericErr := err
	var ginErr *gin.Error
	if errors.As(err, &ginErr) {
		genericErr = ginErr.Err
	}

	if bizErr, ok := genericErr.(BizError); ok {
		respond := bizErr.Respond()
		c.JSON(respond.Status, &misc.ErrorBody{Code: respond.Code, Message: respond.Message, Data: respond.Data})
		c.Abort()
		return
	}

	// bad request: io.EOF (no body)
	if errors.Is(genericErr, io.EOF) {
		c.JSON(http.StatusBadRequest, &misc.ErrorBody{Code: "bad_request.body_not_found", Message: "body not found"})
		c.Abort()
		return
	}
	// bad request: json syntax error
	if syntaxErr, ok := genericErr.(*json.SyntaxError); ok {
		c.JSON(http.StatusBadRequest, &misc.ErrorBody{Code: "bad_request.invalid_body_format", Message: "invalid body format", Data: syntaxErr.Error()})
		c.Abort()
		return
	}
	// validation failed
	if validationErr, ok := genericErr.(validator.ValidationErrors); ok {
		c.JSON(http.StatusBadRequest, &misc.ErrorBody{Code: "bad_request.validation_failed", Message: "validation failed", Data: validationErr.Error()})
		c.Abort()
		return
	}

	for _, m := range errorResponds {
		if errors.Is(genericErr, m.Err) {
			c.JSON(m.Status, &misc.ErrorBody{Code: m.Code, Message: m.Err.Error()})
			c.Abort()
			return
		}
	}

	if errors.Is(genericErr, gorm.ErrRecordNotFound) || errors.Is(genericErr, ErrNotFound) {
		c.JSON(http.StatusNotFound, &misc.ErrorBody{Code: "common.record_not_found", Message: "record not found"})
		c.Abort()
		return
	}

	c.JSON(http.StatusInternalServerError, &misc.ErrorBody{Code: "common.internal_server_error", Message: err.Error()})
	c.Abort()
}
