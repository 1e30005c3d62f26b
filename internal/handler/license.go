package handler

import (
	"errors"
	"log"
	"time"

	"license-validation-service/internal/license"
	"license-validation-service/internal/service"
	"license-validation-service/internal/store"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// Handler adapts the core operations to HTTP. It holds everything it
// needs; there is no package-level state.
type Handler struct {
	store     *store.Store
	checker   *license.Checker
	validate  *validator.Validate
	sheetSync *service.SheetSync
}

// New wires a handler. sheetSync may be nil when mirroring is off.
func New(s *store.Store, c *license.Checker, sheetSync *service.SheetSync) *Handler {
	return &Handler{
		store:     s,
		checker:   c,
		validate:  validator.New(),
		sheetSync: sheetSync,
	}
}

type validateRequest struct {
	License string `json:"license"`
}

// HandleValidate answers whether a presented license key is currently
// valid. It is the only endpoint not behind the admin gate.
func (h *Handler) HandleValidate(c *fiber.Ctx) error {
	req := new(validateRequest)
	if err := c.BodyParser(req); err != nil || req.License == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"valid":   false,
			"message": "no license key supplied",
		})
	}

	outcome, err := h.checker.Check(req.License, time.Now())
	if err != nil {
		if errors.Is(err, license.ErrBadExpiration) {
			log.Printf("stored expiration for key %q is malformed: %v", req.License, err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "date format error",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "license lookup failed",
		})
	}

	return c.JSON(outcome)
}
