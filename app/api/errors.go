package api

import (
	"fmt"
	"log/slog"

	"policylens/types"

	"github.com/gofiber/fiber/v2"
)

// ErrorHandler is fiber's central error handler. Typed API errors and
// validation errors keep their status; anything else becomes a fiber
// error response.
func ErrorHandler(c *fiber.Ctx, err error) error {
	if apiError, ok := err.(Error); ok {
		return c.Status(apiError.Code).JSON(apiError)
	}
	if valError, ok := err.(types.ValidationError); ok {
		return c.Status(valError.Status).JSON(valError)
	}

	code := fiber.StatusInternalServerError
	if fiberErr, ok := err.(*fiber.Error); ok {
		code = fiberErr.Code
	}
	apiError := NewError(code, err.Error())
	slog.Error("request failed", "code", apiError.Code, "error", apiError.Message)
	return c.Status(apiError.Code).JSON(apiError)
}

type Error struct {
	Code    int    `json:"code"`
	Message string `json:"error"`
}

// Error implements the error interface.
func (e Error) Error() string {
	return e.Message
}

func NewError(code int, err string) Error {
	return Error{
		Code:    code,
		Message: err,
	}
}

func ErrBadRequest() Error {
	return Error{
		Code:    fiber.StatusBadRequest,
		Message: "invalid JSON request",
	}
}

func ErrInvalidID() Error {
	return Error{
		Code:    fiber.StatusBadRequest,
		Message: "invalid id given",
	}
}

func ErrNotFound[T any](arg T, resource string) Error {
	return Error{
		Code:    fiber.StatusNotFound,
		Message: fmt.Sprintf("%s with %v not found", resource, arg),
	}
}

// ErrInvalidPolicy is the user-facing failure for model output that did
// not validate against the analysis schema.
func ErrInvalidPolicy() Error {
	return Error{
		Code:    fiber.StatusBadRequest,
		Message: "the provided input does not appear to be a valid privacy policy; please provide the full text of a policy",
	}
}

func ErrModelDown() Error {
	return Error{
		Code:    fiber.StatusServiceUnavailable,
		Message: "the analysis model is currently unavailable, please try again",
	}
}
