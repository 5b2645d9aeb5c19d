// Package handlers implements the HTTP layer: JSON endpoints over the
// workflow service and repositories. Every response uses the same envelope
// and every workflow error kind maps to a fixed HTTP status.
package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/avissapr/projectdesk/internal/workflow"
)

// Response is the JSON envelope returned by all endpoints.
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
}

// ok writes a 200 envelope with data.
func ok(c *fiber.Ctx, data interface{}) error {
	return c.JSON(Response{Success: true, Data: data})
}

// created writes a 201 envelope with data.
func created(c *fiber.Ctx, data interface{}) error {
	return c.Status(fiber.StatusCreated).JSON(Response{Success: true, Data: data})
}

// fail writes an error envelope with the given status and message.
func fail(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(Response{Success: false, Message: message})
}

// workflowError maps a workflow error kind to its HTTP status:
// validation and referential failures are 400, missing entities 404,
// authority failures 403, state conflicts 409. Anything untyped is a 500
// whose details stay out of the response body.
func workflowError(c *fiber.Ctx, err error) error {
	switch workflow.KindOf(err) {
	case workflow.KindValidation, workflow.KindNotAssigned:
		return fail(c, fiber.StatusBadRequest, err.Error())
	case workflow.KindNotFound:
		return fail(c, fiber.StatusNotFound, err.Error())
	case workflow.KindNotMember, workflow.KindForbidden:
		return fail(c, fiber.StatusForbidden, err.Error())
	case workflow.KindInvalidTransition, workflow.KindIncompleteWork,
		workflow.KindAlreadyInState, workflow.KindAlreadyAcknowledged:
		return fail(c, fiber.StatusConflict, err.Error())
	default:
		return fail(c, fiber.StatusInternalServerError, "internal server error")
	}
}
