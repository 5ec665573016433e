package handlers

import (
	"strconv"

	"atlasbank/internal/services/account"
	"atlasbank/internal/services/activity"
	"atlasbank/internal/services/export"
	"atlasbank/internal/services/ledger"
	"atlasbank/internal/utils"
	"atlasbank/internal/validation"

	"github.com/gofiber/fiber/v2"
)

type AccountHandler struct {
	ledgerService   ledger.Service
	accountService  account.Service
	activityService activity.Service
	exportService   export.Service
}

func NewAccountHandler(
	ledgerService ledger.Service,
	accountService account.Service,
	activityService activity.Service,
	exportService export.Service,
) *AccountHandler {
	return &AccountHandler{
		ledgerService:   ledgerService,
		accountService:  accountService,
		activityService: activityService,
		exportService:   exportService,
	}
}

func accountIDParam(c *fiber.Ctx) (uint, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}

func (h *AccountHandler) ListAccounts(c *fiber.Ctx) error {
	claims, err := callerClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	accounts, err := h.accountService.ListAccounts(c.Context(), claims.Username)
	if err != nil {
		return respondDomainError(c, err)
	}

	out := make([]fiber.Map, 0, len(accounts))
	for _, a := range accounts {
		entry := fiber.Map{
			"id":             a.ID,
			"account_number": a.AccountNumber,
			"balance":        a.Balance.StringFixed(2),
			"nickname":       a.Nickname,
		}
		if a.Bank != nil {
			entry["bank"] = a.Bank.Name
		}
		out = append(out, entry)
	}
	return utils.Success(c, fiber.Map{"accounts": out})
}

func (h *AccountHandler) SetNickname(c *fiber.Ctx) error {
	claims, err := callerClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}
	accountID, err := accountIDParam(c)
	if err != nil {
		return utils.BadRequest(c, "invalid account id")
	}

	var input struct {
		Nickname string `json:"nickname"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "invalid request format")
	}

	if err := h.accountService.SetNickname(c.Context(), claims.Username, accountID, input.Nickname); err != nil {
		return respondDomainError(c, err)
	}
	return utils.Success(c, fiber.Map{"message": "nickname updated"})
}

func (h *AccountHandler) Deposit(c *fiber.Ctx) error {
	claims, err := callerClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	var input struct {
		AccountID uint   `json:"account_id"`
		Amount    string `json:"amount"`
		Source    string `json:"source"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "invalid request format")
	}

	amount, err := validation.ParseAmount(input.Amount)
	if err != nil {
		return respondDomainError(c, err)
	}

	tx, err := h.ledgerService.Deposit(c.Context(), claims.Username, input.AccountID, amount, input.Source)
	if err != nil {
		return respondDomainError(c, err)
	}
	return utils.Success(c, fiber.Map{"transaction": toTransactionDTO(tx)})
}

func (h *AccountHandler) Transfer(c *fiber.Ctx) error {
	claims, err := callerClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	var input struct {
		SourceAccountID        uint   `json:"source_account_id"`
		RecipientAccountNumber string `json:"recipient_account_number"`
		Amount                 string `json:"amount"`
		Pin                    string `json:"pin"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "invalid request format")
	}

	amount, err := validation.ParseAmount(input.Amount)
	if err != nil {
		return respondDomainError(c, err)
	}

	result, err := h.ledgerService.Transfer(c.Context(), claims.Username,
		input.SourceAccountID, input.RecipientAccountNumber, amount, input.Pin)
	if err != nil {
		return respondDomainError(c, err)
	}
	return utils.Success(c, fiber.Map{
		"transaction": toTransactionDTO(result.Debit),
		"balance":     result.SourceBalance.StringFixed(2),
	})
}

func (h *AccountHandler) SelfTransfer(c *fiber.Ctx) error {
	claims, err := callerClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	var input struct {
		SourceAccountID      uint   `json:"source_account_id"`
		DestinationAccountID uint   `json:"destination_account_id"`
		Amount               string `json:"amount"`
		Pin                  string `json:"pin"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "invalid request format")
	}

	amount, err := validation.ParseAmount(input.Amount)
	if err != nil {
		return respondDomainError(c, err)
	}

	result, err := h.ledgerService.SelfTransfer(c.Context(), claims.Username,
		input.SourceAccountID, input.DestinationAccountID, amount, input.Pin)
	if err != nil {
		return respondDomainError(c, err)
	}
	return utils.Success(c, fiber.Map{
		"transaction": toTransactionDTO(result.Debit),
		"balance":     result.SourceBalance.StringFixed(2),
	})
}

func (h *AccountHandler) PayBill(c *fiber.Ctx) error {
	claims, err := callerClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	var input struct {
		AccountID  uint   `json:"account_id"`
		BillerName string `json:"biller_name"`
		Amount     string `json:"amount"`
		Pin        string `json:"pin"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "invalid request format")
	}
	if input.BillerName == "" {
		return utils.BadRequest(c, "biller name is required")
	}

	amount, err := validation.ParseAmount(input.Amount)
	if err != nil {
		return respondDomainError(c, err)
	}

	tx, err := h.ledgerService.PayBill(c.Context(), claims.Username,
		input.AccountID, input.BillerName, amount, input.Pin)
	if err != nil {
		return respondDomainError(c, err)
	}
	return utils.Success(c, fiber.Map{"transaction": toTransactionDTO(tx)})
}

func (h *AccountHandler) GetBalance(c *fiber.Ctx) error {
	claims, err := callerClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}
	accountID, err := accountIDParam(c)
	if err != nil {
		return utils.BadRequest(c, "invalid account id")
	}

	// Ownership for reads is enforced here, at the caller layer.
	if err := h.ownAccount(c, claims.Username, accountID); err != nil {
		return respondDomainError(c, err)
	}

	balance, err := h.ledgerService.GetBalance(c.Context(), accountID)
	if err != nil {
		return respondDomainError(c, err)
	}
	return utils.Success(c, fiber.Map{"balance": balance.StringFixed(2)})
}

func (h *AccountHandler) GetRecentTransactions(c *fiber.Ctx) error {
	claims, err := callerClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}
	accountID, err := accountIDParam(c)
	if err != nil {
		return utils.BadRequest(c, "invalid account id")
	}

	if err := h.ownAccount(c, claims.Username, accountID); err != nil {
		return respondDomainError(c, err)
	}

	txs, err := h.ledgerService.GetRecentTransactions(c.Context(), accountID)
	if err != nil {
		return respondDomainError(c, err)
	}
	return utils.Success(c, fiber.Map{"transactions": toTransactionDTOs(txs)})
}

func (h *AccountHandler) VerifyRecipient(c *fiber.Ctx) error {
	accountNumber := c.Query("account_number")
	if accountNumber == "" {
		return utils.BadRequest(c, "account_number is required")
	}

	name, err := h.ledgerService.VerifyRecipient(c.Context(), accountNumber)
	if err != nil {
		return respondDomainError(c, err)
	}
	return utils.Success(c, fiber.Map{"recipient_name": name})
}

func (h *AccountHandler) GetActivity(c *fiber.Ctx) error {
	claims, err := callerClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}
	accountID, err := accountIDParam(c)
	if err != nil {
		return utils.BadRequest(c, "invalid account id")
	}

	logs, err := h.activityService.ListForAccount(c.Context(), claims.Username, accountID)
	if err != nil {
		return respondDomainError(c, err)
	}

	out := make([]fiber.Map, 0, len(logs))
	for _, entry := range logs {
		out = append(out, fiber.Map{
			"type":        entry.ActivityType,
			"description": entry.Description,
			"timestamp":   entry.CreatedAt,
		})
	}
	return utils.Success(c, fiber.Map{"activity": out})
}

func (h *AccountHandler) ExportTransactions(c *fiber.Ctx) error {
	claims, err := callerClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}
	accountID, err := accountIDParam(c)
	if err != nil {
		return utils.BadRequest(c, "invalid account id")
	}

	c.Set("Content-Type", "text/csv")
	c.Set("Content-Disposition", "attachment; filename=transactions.csv")
	if err := h.exportService.WriteTransactionsCSV(c.Context(), c.Response().BodyWriter(), claims.Username, accountID); err != nil {
		return respondDomainError(c, err)
	}
	return nil
}

func (h *AccountHandler) ownAccount(c *fiber.Ctx, username string, accountID uint) error {
	_, err := h.accountService.GetAccount(c.Context(), username, accountID)
	return err
}
