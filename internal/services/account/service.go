// Package account handles account lifecycle: opening an account at a bank
// (with its debit card and signup bonus), listing a user's accounts and
// renaming them. Balance mutation after opening belongs to the ledger
// engine, never here.
package account

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"atlasbank/internal/models"
	"atlasbank/internal/repositories"
	"atlasbank/internal/services/ledger"
	"atlasbank/internal/utils"
)

var (
	// ErrDuplicateAccount means the user already holds an account at the
	// given bank.
	ErrDuplicateAccount = errors.New("account at this bank already exists")
	ErrBankNotFound     = errors.New("bank not found")
	ErrUserNotFound     = errors.New("user not found")
)

// numberAttempts bounds the generate-and-retry loop on the account-number
// unique index.
const numberAttempts = 5

const cardValidityYears = 5

type Service interface {
	OpenAccount(ctx context.Context, username string, bankID uint) (*models.Account, error)
	ListAccounts(ctx context.Context, username string) ([]models.Account, error)
	GetAccount(ctx context.Context, username string, accountID uint) (*models.Account, error)
	SetNickname(ctx context.Context, username string, accountID uint, nickname string) error
	ListBanks(ctx context.Context) ([]models.Bank, error)
}

type service struct {
	accounts repositories.AccountRepository
	banks    repositories.BankRepository
	users    repositories.UserRepository
	ledger   ledger.Service
}

func NewService(
	accounts repositories.AccountRepository,
	banks repositories.BankRepository,
	users repositories.UserRepository,
	ledgerSvc ledger.Service,
) Service {
	if accounts == nil {
		panic("account repository is required")
	}
	if banks == nil {
		panic("bank repository is required")
	}
	if users == nil {
		panic("user repository is required")
	}
	if ledgerSvc == nil {
		panic("ledger service is required")
	}
	return &service{accounts: accounts, banks: banks, users: users, ledger: ledgerSvc}
}

// OpenAccount creates an account at bankID for the user, issues its debit
// card and credits the signup bonus. One account per bank per user.
func (s *service) OpenAccount(ctx context.Context, username string, bankID uint) (*models.Account, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	bank, err := s.banks.GetByID(ctx, bankID)
	if err != nil {
		if errors.Is(err, repositories.ErrBankNotFound) {
			return nil, ErrBankNotFound
		}
		return nil, err
	}

	exists, err := s.accounts.ExistsByUserAndBank(ctx, user.ID, bank.ID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrDuplicateAccount
	}

	account, err := s.createWithUniqueNumber(ctx, user, bank)
	if err != nil {
		return nil, err
	}

	if err := s.ledger.CreateInitialDepositTransaction(ctx, account.ID); err != nil {
		// The balance already carries the bonus; a missing bonus row is a
		// ledger defect worth loud logging, not a reason to unwind the
		// account.
		log.Printf("failed to record signup bonus for account %d: %v", account.ID, err)
	}

	account.Bank = bank
	account.User = user
	return account, nil
}

// createWithUniqueNumber retries random number generation until the unique
// index accepts it. The card is created in the same database transaction
// as the account.
func (s *service) createWithUniqueNumber(ctx context.Context, user *models.User, bank *models.Bank) (*models.Account, error) {
	for attempt := 0; attempt < numberAttempts; attempt++ {
		number, err := utils.RandomAccountNumber()
		if err != nil {
			return nil, fmt.Errorf("failed to generate account number: %w", err)
		}

		account := &models.Account{
			AccountNumber: number,
			Balance:       ledger.SignupBonus,
			UserID:        user.ID,
			BankID:        bank.ID,
		}

		err = s.accounts.ExecuteInTransaction(func(r repositories.AccountRepository) error {
			if err := r.Create(ctx, account); err != nil {
				return err
			}
			card, err := generateDebitCard(account.ID, user.FullName)
			if err != nil {
				return err
			}
			return r.SaveCard(ctx, card)
		})
		if err != nil {
			if errors.Is(err, repositories.ErrDuplicateAccount) {
				log.Printf("account number collision on %s, retrying", number)
				continue
			}
			return nil, err
		}
		return account, nil
	}
	return nil, fmt.Errorf("failed to allocate a unique account number after %d attempts", numberAttempts)
}

func generateDebitCard(accountID uint, holderName string) (*models.DebitCard, error) {
	raw, err := utils.RandomDigits(16)
	if err != nil {
		return nil, fmt.Errorf("failed to generate card number: %w", err)
	}
	cvv, err := utils.RandomDigits(3)
	if err != nil {
		return nil, fmt.Errorf("failed to generate cvv: %w", err)
	}
	return &models.DebitCard{
		CardNumber:     raw[0:4] + "-" + raw[4:8] + "-" + raw[8:12] + "-" + raw[12:16],
		CardHolderName: holderName,
		ExpiryDate:     time.Now().AddDate(cardValidityYears, 0, 0),
		CVV:            cvv,
		Active:         true,
		OnlineEnabled:  true,
		AccountID:      accountID,
	}, nil
}

func (s *service) ListAccounts(ctx context.Context, username string) ([]models.Account, error) {
	return s.accounts.ListByUsername(ctx, username)
}

// GetAccount loads an account and verifies the caller owns it.
func (s *service) GetAccount(ctx context.Context, username string, accountID uint) (*models.Account, error) {
	account, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, repositories.ErrAccountNotFound) {
			return nil, ledger.ErrAccountNotFound
		}
		return nil, err
	}
	if account.User == nil || account.User.Username != username {
		return nil, ledger.ErrAccountOwnership
	}
	return account, nil
}

func (s *service) SetNickname(ctx context.Context, username string, accountID uint, nickname string) error {
	if _, err := s.GetAccount(ctx, username, accountID); err != nil {
		return err
	}
	return s.accounts.UpdateNickname(ctx, accountID, nickname)
}

func (s *service) ListBanks(ctx context.Context) ([]models.Bank, error) {
	return s.banks.List(ctx)
}
