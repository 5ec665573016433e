// Package card reads debit-card details and toggles the three card
// switches. Every toggle appends one activity entry scoped to the
// account.
package card

import (
	"context"
	"errors"
	"fmt"
	"log"

	"atlasbank/internal/models"
	"atlasbank/internal/repositories"
	"atlasbank/internal/services/ledger"
)

var (
	// ErrInvalidOption rejects toggle options outside master/online/
	// international.
	ErrInvalidOption = errors.New("invalid card option")

	// ErrNoDebitCard means the account has no linked card.
	ErrNoDebitCard = errors.New("no debit card for this account")
)

// Toggle options.
const (
	OptionMaster        = "master"
	OptionOnline        = "online"
	OptionInternational = "international"
)

type Service interface {
	GetCard(ctx context.Context, username string, accountID uint) (*models.DebitCard, error)
	GetCardCVV(ctx context.Context, username string, accountID uint) (string, error)
	ToggleOption(ctx context.Context, username string, accountID uint, option string) (*models.DebitCard, error)
}

type service struct {
	accounts repositories.AccountRepository
	activity ledger.ActivityRecorder
}

func NewService(accounts repositories.AccountRepository, activity ledger.ActivityRecorder) Service {
	if accounts == nil {
		panic("account repository is required")
	}
	return &service{accounts: accounts, activity: activity}
}

// cardAccount resolves an account with its card and checks ownership.
func (s *service) cardAccount(ctx context.Context, username string, accountID uint) (*models.Account, error) {
	account, err := s.accounts.GetByIDWithCard(ctx, accountID)
	if err != nil {
		if errors.Is(err, repositories.ErrAccountNotFound) {
			return nil, ledger.ErrAccountNotFound
		}
		return nil, err
	}
	if account.User == nil || account.User.Username != username {
		return nil, ledger.ErrAccountOwnership
	}
	if account.DebitCard == nil {
		return nil, ErrNoDebitCard
	}
	return account, nil
}

func (s *service) GetCard(ctx context.Context, username string, accountID uint) (*models.DebitCard, error) {
	account, err := s.cardAccount(ctx, username, accountID)
	if err != nil {
		return nil, err
	}
	return account.DebitCard, nil
}

func (s *service) GetCardCVV(ctx context.Context, username string, accountID uint) (string, error) {
	account, err := s.cardAccount(ctx, username, accountID)
	if err != nil {
		return "", err
	}
	return account.DebitCard.CVV, nil
}

// ToggleOption flips exactly one switch on the card and records the new
// state in the activity log.
func (s *service) ToggleOption(ctx context.Context, username string, accountID uint, option string) (*models.DebitCard, error) {
	account, err := s.cardAccount(ctx, username, accountID)
	if err != nil {
		return nil, err
	}
	card := account.DebitCard

	var description string
	switch option {
	case OptionMaster:
		card.Active = !card.Active
		if card.Active {
			description = "Unfroze Debit Card (Master)"
		} else {
			description = "Froze Debit Card (Master)"
		}
	case OptionOnline:
		card.OnlineEnabled = !card.OnlineEnabled
		if card.OnlineEnabled {
			description = "Enabled Online Transactions"
		} else {
			description = "Disabled Online Transactions"
		}
	case OptionInternational:
		card.InternationalEnabled = !card.InternationalEnabled
		if card.InternationalEnabled {
			description = "Enabled International Transactions"
		} else {
			description = "Disabled International Transactions"
		}
	default:
		return nil, fmt.Errorf("%w: %s", ErrInvalidOption, option)
	}

	if err := s.accounts.SaveCard(ctx, card); err != nil {
		return nil, err
	}

	if s.activity != nil {
		accID := account.ID
		msg := description + " for Account ending in " + account.LastFour()
		if err := s.activity.Record(ctx, account.UserID, &accID, models.ActivityCardSettingsUpdate, msg); err != nil {
			log.Printf("failed to record card toggle for account %d: %v", account.ID, err)
		}
	}
	return card, nil
}
