package handlers

import (
	"errors"
	"log/slog"
	"strings"

	"github.com/gofiber/fiber/v3"

	"github.com/zdziszkee/swift-registry/internal/models"
	service "github.com/zdziszkee/swift-registry/internal/services"
	"github.com/zdziszkee/swift-registry/internal/validation"
)

// bankResponse is the outward shape of a headquarters or branch. Branches is
// always present for headquarters and omitted for branches.
type bankResponse struct {
	Address       string          `json:"address"`
	BankName      string          `json:"bankName"`
	CountryISO2   string          `json:"countryISO2"`
	CountryName   string          `json:"countryName,omitempty"`
	IsHeadquarter bool            `json:"isHeadquarter"`
	SwiftCode     string          `json:"swiftCode"`
	Branches      *[]bankResponse `json:"branches,omitempty"`
}

type countryResponse struct {
	CountryISO2 string         `json:"countryISO2"`
	CountryName string         `json:"countryName"`
	SwiftCodes  []bankResponse `json:"swiftCodes"`
}

// SwiftHandler handles API requests for SWIFT codes
type SwiftHandler struct {
	service service.SwiftService
	logger  *slog.Logger
}

// NewSwiftHandler creates a new handler instance
func NewSwiftHandler(service service.SwiftService, logger *slog.Logger) *SwiftHandler {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &SwiftHandler{service: service, logger: logger}
}

// GetByCode handles requests for a specific SWIFT code
func (h *SwiftHandler) GetByCode(c fiber.Ctx) error {
	code := pathCode(c, "swiftCode")
	if code == "" {
		return message(c, fiber.StatusBadRequest, "SWIFT code is required")
	}

	detail, err := h.service.GetSwiftCodeDetails(c.Context(), code)
	if err != nil {
		return h.handleError(c, err)
	}

	resp := toBankResponse(detail.Bank, detail.CountryName)
	if detail.Bank.IsHeadquarter() {
		branches := make([]bankResponse, 0, len(detail.Branches))
		for _, b := range detail.Branches {
			branches = append(branches, toBankResponse(b, ""))
		}
		resp.Branches = &branches
	}
	return c.Status(fiber.StatusOK).JSON(resp)
}

// GetByCountry handles requests for all SWIFT codes by country
func (h *SwiftHandler) GetByCountry(c fiber.Ctx) error {
	countryCode := pathCode(c, "countryISO2code")
	if countryCode == "" {
		return message(c, fiber.StatusBadRequest, "country ISO2 code is required")
	}

	result, err := h.service.GetSwiftCodesByCountry(c.Context(), countryCode)
	if err != nil {
		return h.handleError(c, err)
	}

	codes := make([]bankResponse, 0, len(result.Banks))
	for _, b := range result.Banks {
		codes = append(codes, toBankResponse(b, ""))
	}
	return c.Status(fiber.StatusOK).JSON(countryResponse{
		CountryISO2: result.Country.ISO2,
		CountryName: result.Country.Name,
		SwiftCodes:  codes,
	})
}

// Create handles creation of a new SWIFT code
func (h *SwiftHandler) Create(c fiber.Ctx) error {
	var candidate validation.Candidate

	if err := c.Bind().JSON(&candidate); err != nil {
		return message(c, fiber.StatusBadRequest, "Invalid request body")
	}

	bank, err := h.service.CreateSwiftCode(c.Context(), candidate)
	if err != nil {
		return h.handleError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "SWIFT code " + bank.FullCode() + " created successfully",
	})
}

// Delete handles deletion of a SWIFT code
func (h *SwiftHandler) Delete(c fiber.Ctx) error {
	code := pathCode(c, "swiftCode")
	if code == "" {
		return message(c, fiber.StatusBadRequest, "SWIFT code is required")
	}

	if err := h.service.DeleteSwiftCode(c.Context(), code); err != nil {
		return h.handleError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "SWIFT code " + code + " deleted successfully",
	})
}

func (h *SwiftHandler) handleError(c fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		return message(c, fiber.StatusBadRequest, invalidInputMessage(err))
	case errors.Is(err, service.ErrAlreadyExists):
		return message(c, fiber.StatusConflict, "SWIFT code already exists")
	case errors.Is(err, service.ErrConflict):
		return message(c, fiber.StatusConflict, "Country is already registered under a different name")
	case errors.Is(err, service.ErrNotFound):
		return message(c, fiber.StatusNotFound, "SWIFT code not found")
	default:
		h.logger.ErrorContext(c.Context(), "request failed",
			slog.String("method", c.Method()),
			slog.String("path", c.Path()),
			slog.Any("error", err))
		return message(c, fiber.StatusInternalServerError, "Internal server error")
	}
}

// invalidInputMessage names the offending field or rule without exposing
// anything beyond what the caller sent.
func invalidInputMessage(err error) string {
	var missing *validation.MissingFieldsError
	if errors.As(err, &missing) {
		return "Missing required fields: " + strings.Join(missing.Fields, ", ")
	}
	var field *validation.FieldError
	if errors.As(err, &field) {
		return "Invalid " + field.Field + ": " + field.Reason
	}
	var mismatch *validation.FlagMismatchError
	if errors.As(err, &mismatch) {
		return "Invalid isHeadquarter: " + mismatch.Detail()
	}
	return "Invalid input provided"
}

func toBankResponse(b models.Bank, countryName string) bankResponse {
	return bankResponse{
		Address:       b.Address,
		BankName:      b.BankName,
		CountryISO2:   b.CountryISO2,
		CountryName:   countryName,
		IsHeadquarter: b.IsHeadquarter(),
		SwiftCode:     b.FullCode(),
	}
}

func pathCode(c fiber.Ctx, name string) string {
	return strings.ToUpper(strings.TrimSpace(c.Params(name)))
}

func message(c fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(fiber.Map{"message": msg})
}
