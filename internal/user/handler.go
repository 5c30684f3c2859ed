package user

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/firstfear1412/my-app-backend/pkg/response"
)

// User-facing messages, kept byte-for-byte stable for API consumers.
const (
	msgSaved   = "User saved successfully"
	msgUpdated = "User updated successfully"
	msgDeleted = "User deleted successfully"

	msgDuplicateEmail = "Email already exists"
	msgNotFound       = "User not found"

	msgSaveFailed   = "Failed to save data. Please try again."
	msgFetchFailed  = "Failed to fetch data. Please try again."
	msgUpdateFailed = "Failed to update data. Please try again."
	msgDeleteFailed = "Failed to delete data. Please try again."

	codeDuplicateEmail = "DUPLICATE_EMAIL"
	codeNotFound       = "USER_NOT_FOUND"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(app *fiber.App) {
	app.Post("/users", h.createUser)
	app.Get("/users", h.getUsers)
	app.Get("/users/:id", h.getUser)
	app.Put("/users/:id", h.updateUser)
	app.Delete("/users/:id", h.deleteUser)
}

func (h *Handler) createUser(c *fiber.Ctx) error {
	input := new(Input)
	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(response.Fail(msgSaveFailed, err.Error()))
	}

	created, err := h.service.Create(c.Context(), *input)
	if err != nil {
		if errors.Is(err, ErrDuplicateEmail) {
			return c.Status(fiber.StatusBadRequest).JSON(response.Fail(msgDuplicateEmail, codeDuplicateEmail))
		}
		return c.Status(fiber.StatusBadRequest).JSON(response.Fail(msgSaveFailed, err.Error()))
	}

	return c.JSON(response.OK(&created.ID, msgSaved, NewPayload(created)))
}

func (h *Handler) getUser(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(response.Fail(msgNotFound, codeNotFound))
	}

	u, err := h.service.GetByID(c.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(response.Fail(msgNotFound, codeNotFound))
		}
		return c.Status(fiber.StatusNotFound).JSON(response.Fail(msgFetchFailed, err.Error()))
	}

	return c.JSON(response.OK(&u.ID, "", NewPayload(u)))
}

// getUsers always answers 200; an empty store is a success with an empty
// list and even a storage failure keeps the 200 status of the envelope.
func (h *Handler) getUsers(c *fiber.Ctx) error {
	users, err := h.service.GetAll(c.Context())
	if err != nil {
		return c.JSON(response.Fail(msgFetchFailed, err.Error()))
	}

	payloads := make([]Payload, 0, len(users))
	for _, u := range users {
		payloads = append(payloads, NewPayload(u))
	}

	return c.JSON(response.OK(nil, "", payloads))
}

func (h *Handler) updateUser(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(response.Fail(msgNotFound, codeNotFound))
	}

	input := new(Input)
	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(response.Fail(msgUpdateFailed, err.Error()))
	}

	updated, err := h.service.Update(c.Context(), id, *input)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			return c.Status(fiber.StatusNotFound).JSON(response.Fail(msgNotFound, codeNotFound))
		case errors.Is(err, ErrDuplicateEmail):
			return c.Status(fiber.StatusBadRequest).JSON(response.Fail(msgDuplicateEmail, codeDuplicateEmail))
		default:
			return c.Status(fiber.StatusBadRequest).JSON(response.Fail(msgUpdateFailed, err.Error()))
		}
	}

	return c.JSON(response.OK(&updated.ID, msgUpdated, NewPayload(updated)))
}

func (h *Handler) deleteUser(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(response.Fail(msgNotFound, codeNotFound))
	}

	if err := h.service.Delete(c.Context(), id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(response.Fail(msgNotFound, codeNotFound))
		}
		return c.Status(fiber.StatusNotFound).JSON(response.Fail(msgDeleteFailed, err.Error()))
	}

	return c.JSON(response.OK(nil, msgDeleted, nil))
}
