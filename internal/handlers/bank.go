package handlers

import (
	"atlasbank/internal/services/account"
	"atlasbank/internal/utils"

	"github.com/gofiber/fiber/v2"
)

type BankHandler struct {
	accountService account.Service
}

func NewBankHandler(accountService account.Service) *BankHandler {
	return &BankHandler{accountService: accountService}
}

func (h *BankHandler) ListBanks(c *fiber.Ctx) error {
	banks, err := h.accountService.ListBanks(c.Context())
	if err != nil {
		return respondDomainError(c, err)
	}

	out := make([]fiber.Map, 0, len(banks))
	for _, b := range banks {
		out = append(out, fiber.Map{"id": b.ID, "name": b.Name})
	}
	return utils.Success(c, fiber.Map{"banks": out})
}

// OpenAccount opens an account for the caller at the requested bank,
// issuing its debit card and crediting the signup bonus.
func (h *BankHandler) OpenAccount(c *fiber.Ctx) error {
	claims, err := callerClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	var input struct {
		BankID uint `json:"bank_id"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "invalid request format")
	}
	if input.BankID == 0 {
		return utils.BadRequest(c, "bank_id is required")
	}

	acct, err := h.accountService.OpenAccount(c.Context(), claims.Username, input.BankID)
	if err != nil {
		return respondDomainError(c, err)
	}

	resp := fiber.Map{
		"id":             acct.ID,
		"account_number": acct.AccountNumber,
		"balance":        acct.Balance.StringFixed(2),
	}
	if acct.Bank != nil {
		resp["bank"] = acct.Bank.Name
	}
	return utils.Respond(c, fiber.StatusCreated, fiber.Map{"account": resp})
}
