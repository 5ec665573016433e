// Package handlers contains the fiber HTTP handlers. Handlers parse
// request DTOs, call services and translate typed domain failures into
// status codes; no business rules live here.
package handlers

import (
	"errors"

	"atlasbank/internal/models"
	"atlasbank/internal/services/account"
	"atlasbank/internal/services/auth"
	"atlasbank/internal/services/card"
	"atlasbank/internal/services/ledger"
	"atlasbank/internal/utils"
	"atlasbank/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// callerClaims pulls the authenticated caller out of the request context.
func callerClaims(c *fiber.Ctx) (*models.UserClaims, error) {
	claims, ok := c.Locals("claims").(*models.UserClaims)
	if !ok || claims == nil {
		return nil, fiber.ErrUnauthorized
	}
	return claims, nil
}

// respondDomainError maps the shared error taxonomy onto status codes.
// Anything unmapped is an internal error; its detail stays out of the
// response body.
func respondDomainError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, ledger.ErrAccountNotFound):
		return utils.NotFound(c, "account not found")
	case errors.Is(err, ledger.ErrAccountOwnership):
		return utils.Forbidden(c, "you do not own this account")
	case errors.Is(err, ledger.ErrSameAccount):
		return utils.BadRequest(c, "source and destination accounts are the same")
	case errors.Is(err, ledger.ErrInsufficientFunds):
		return utils.Conflict(c, "insufficient funds")
	case errors.Is(err, ledger.ErrInvalidAmount), errors.Is(err, validation.ErrMalformedAmount):
		return utils.BadRequest(c, "invalid amount")
	case errors.Is(err, auth.ErrPinNotSet):
		return utils.Unauthorized(c, "pin not set; create a pin in your profile")
	case errors.Is(err, auth.ErrInvalidPin):
		return utils.Unauthorized(c, "invalid pin")
	case errors.Is(err, auth.ErrAuthentication):
		return utils.Unauthorized(c, "invalid credentials")
	case errors.Is(err, card.ErrInvalidOption):
		return utils.BadRequest(c, "invalid card option")
	case errors.Is(err, card.ErrNoDebitCard):
		return utils.NotFound(c, "no debit card for this account")
	case errors.Is(err, account.ErrDuplicateAccount):
		return utils.Conflict(c, "you already have an account at this bank")
	case errors.Is(err, account.ErrBankNotFound):
		return utils.NotFound(c, "bank not found")
	case errors.Is(err, account.ErrUserNotFound):
		return utils.NotFound(c, "user not found")
	default:
		return utils.InternalError(c, "internal error")
	}
}

// transactionDTO is the wire shape of one ledger entry.
type transactionDTO struct {
	ID          uint   `json:"id"`
	Type        string `json:"type"`
	Amount      string `json:"amount"`
	Description string `json:"description"`
	Timestamp   string `json:"timestamp"`
}

func toTransactionDTO(tx *models.Transaction) transactionDTO {
	return transactionDTO{
		ID:          tx.ID,
		Type:        tx.Type,
		Amount:      tx.Amount.StringFixed(2),
		Description: tx.Description,
		Timestamp:   tx.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
	}
}

func toTransactionDTOs(txs []models.Transaction) []transactionDTO {
	out := make([]transactionDTO, 0, len(txs))
	for i := range txs {
		out = append(out, toTransactionDTO(&txs[i]))
	}
	return out
}
