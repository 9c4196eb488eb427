package handler

import "github.com/labstack/echo/v4"

// Envelope is the body of every API response.
type Envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func respond(c echo.Context, code int, message string, data any) error {
	return c.JSON(code, Envelope{Success: true, Message: message, Data: data})
}

// Fail writes a failure envelope.
func Fail(c echo.Context, code int, message string) error {
	return c.JSON(code, Envelope{Success: false, Message: message})
}
