package handlers

import (
	"atlasbank/internal/models"
	"atlasbank/internal/services/card"
	"atlasbank/internal/utils"

	"github.com/gofiber/fiber/v2"
)

type CardHandler struct {
	cardService card.Service
}

func NewCardHandler(cardService card.Service) *CardHandler {
	return &CardHandler{cardService: cardService}
}

func cardDTO(dc *models.DebitCard) fiber.Map {
	return fiber.Map{
		"card_number":           dc.CardNumber,
		"card_holder_name":      dc.CardHolderName,
		"expiry_date":           dc.ExpiryDate.Format("01/06"),
		"active":                dc.Active,
		"online_enabled":        dc.OnlineEnabled,
		"international_enabled": dc.InternationalEnabled,
	}
}

func (h *CardHandler) GetCard(c *fiber.Ctx) error {
	claims, err := callerClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}
	accountID, err := accountIDParam(c)
	if err != nil {
		return utils.BadRequest(c, "invalid account id")
	}

	dc, err := h.cardService.GetCard(c.Context(), claims.Username, accountID)
	if err != nil {
		return respondDomainError(c, err)
	}
	return utils.Success(c, fiber.Map{"card": cardDTO(dc)})
}

// GetCardCVV is a separate endpoint so the CVV never rides along with the
// card payload.
func (h *CardHandler) GetCardCVV(c *fiber.Ctx) error {
	claims, err := callerClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}
	accountID, err := accountIDParam(c)
	if err != nil {
		return utils.BadRequest(c, "invalid account id")
	}

	cvv, err := h.cardService.GetCardCVV(c.Context(), claims.Username, accountID)
	if err != nil {
		return respondDomainError(c, err)
	}
	return utils.Success(c, fiber.Map{"cvv": cvv})
}

func (h *CardHandler) ToggleOption(c *fiber.Ctx) error {
	claims, err := callerClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}
	accountID, err := accountIDParam(c)
	if err != nil {
		return utils.BadRequest(c, "invalid account id")
	}

	var input struct {
		Option string `json:"option"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "invalid request format")
	}

	dc, err := h.cardService.ToggleOption(c.Context(), claims.Username, accountID, input.Option)
	if err != nil {
		return respondDomainError(c, err)
	}
	return utils.Success(c, fiber.Map{"card": cardDTO(dc)})
}
