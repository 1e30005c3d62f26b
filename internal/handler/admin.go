package handler

import (
	"errors"

	"license-validation-service/internal/model"
	"license-validation-service/internal/store"

	"github.com/gofiber/fiber/v2"
)

// HandleLicenseUpsert creates the license for a new key or fully
// replaces the fields of the existing one. 201 on insert, 200 on
// update.
func (h *Handler) HandleLicenseUpsert(c *fiber.Ctx) error {
	input := new(model.LicenseInput)
	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}
	if err := h.validate.Struct(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	rec := input.Record()
	created, err := h.store.Upsert(rec)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to save license",
		})
	}

	h.mirror(rec)

	status := fiber.StatusOK
	message := "license updated"
	if created {
		status = fiber.StatusCreated
		message = "license created"
	}
	return c.Status(status).JSON(fiber.Map{
		"created": created,
		"message": message,
		"license": rec,
	})
}

// HandleLicenseDeactivate revokes a license without deleting it.
func (h *Handler) HandleLicenseDeactivate(c *fiber.Ctx) error {
	key := c.Params("key")
	if key == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "license key required",
		})
	}

	found, err := h.store.Deactivate(key)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to deactivate license",
		})
	}
	if !found {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "license not found",
		})
	}

	if rec, err := h.store.FindByKey(key); err == nil {
		h.mirror(rec)
	}

	return c.JSON(fiber.Map{
		"message": "license deactivated",
	})
}

// HandleGetAllLicenses lists every record, active or not, by id.
func (h *Handler) HandleGetAllLicenses(c *fiber.Ctx) error {
	licenses, err := h.store.ListAll()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to list licenses",
		})
	}
	return c.JSON(fiber.Map{
		"licenses": licenses,
	})
}

// HandleGetLicense returns a single record by key.
func (h *Handler) HandleGetLicense(c *fiber.Ctx) error {
	key := c.Params("key")
	if key == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "license key required",
		})
	}

	rec, err := h.store.FindByKey(key)
	if errors.Is(err, store.ErrNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "license not found",
		})
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "license lookup failed",
		})
	}
	return c.JSON(rec)
}

// mirror pushes the record to the sheet in the background, best
// effort. Failures are logged by the sync service, never surfaced to
// the API caller.
func (h *Handler) mirror(rec *model.License) {
	if h.sheetSync == nil {
		return
	}
	snapshot := *rec
	go h.sheetSync.SyncLicense(&snapshot)
}
