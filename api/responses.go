package api

import (
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
)

// APIResponse is the uniform envelope every endpoint returns.
type APIResponse struct {
	Success   bool        `json:"success"`
	Data      interface{} `json:"data,omitempty"`
	Error     *APIError   `json:"error,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func sendJSON(c *fiber.Ctx, statusCode int, data interface{}) error {
	return c.Status(statusCode).JSON(data)
}

func sendSuccess(c *fiber.Ctx, data interface{}) error {
	return sendJSON(c, http.StatusOK, &APIResponse{
		Success:   true,
		Data:      data,
		Timestamp: time.Now().UTC(),
	})
}

func sendError(c *fiber.Ctx, statusCode int, code, message string) error {
	return sendJSON(c, statusCode, &APIResponse{
		Success:   false,
		Error:     &APIError{Code: code, Message: message},
		Timestamp: time.Now().UTC(),
	})
}

func sendBadRequest(c *fiber.Ctx, message string) error {
	return sendError(c, http.StatusBadRequest, "BAD_REQUEST", message)
}

func sendNotFound(c *fiber.Ctx, message string) error {
	return sendError(c, http.StatusNotFound, "NOT_FOUND", message)
}

func sendConflict(c *fiber.Ctx, code, message string) error {
	return sendError(c, http.StatusConflict, code, message)
}

func sendInternalServerError(c *fiber.Ctx, message string) error {
	return sendError(c, http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", message)
}
