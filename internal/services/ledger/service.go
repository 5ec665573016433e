package ledger

import (
	"context"
	"errors"
	"fmt"
	"log"

	"atlasbank/internal/models"
	"atlasbank/internal/repositories"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type service struct {
	repo     repositories.AccountRepository
	pins     PinVerifier
	activity ActivityRecorder
	cache    AccountCache
	locks    *lockTable
	metrics  MetricsCollector
}

// NewService creates the ledger engine. Cache, activity and metrics are
// optional; nil gets a no-op.
func NewService(
	repo repositories.AccountRepository,
	pins PinVerifier,
	activity ActivityRecorder,
	cache AccountCache,
	metrics MetricsCollector,
) Service {
	if repo == nil {
		panic("account repository is required")
	}
	if pins == nil {
		panic("pin verifier is required")
	}
	if cache == nil {
		cache = noopCache{}
	}
	if metrics == nil {
		metrics = &NoopMetricsCollector{}
	}
	return &service{
		repo:     repo,
		pins:     pins,
		activity: activity,
		cache:    cache,
		locks:    newLockTable(),
		metrics:  metrics,
	}
}

// validateAmount enforces the minimum (0.01) and at most two fraction
// digits. Amounts arrive as exact decimals parsed from strings.
func validateAmount(amount decimal.Decimal) error {
	if amount.LessThan(MinAmount) {
		return ErrInvalidAmount
	}
	if amount.Exponent() < -2 {
		return ErrInvalidAmount
	}
	return nil
}

// ownedAccount resolves an account by id and checks the caller owns it.
func ownedAccount(ctx context.Context, repo repositories.AccountRepository, username string, accountID uint) (*models.Account, error) {
	account, err := repo.GetByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, repositories.ErrAccountNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to resolve account: %w", err)
	}
	if account.User == nil || account.User.Username != username {
		return nil, ErrAccountOwnership
	}
	return account, nil
}

func (s *service) Deposit(ctx context.Context, username string, accountID uint, amount decimal.Decimal, source string) (*models.Transaction, error) {
	if err := validateAmount(amount); err != nil {
		return nil, err
	}

	unlock := s.locks.lock(accountID)
	defer unlock()

	account, err := ownedAccount(ctx, s.repo, username, accountID)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	tx := &models.Transaction{
		Type:        models.TransactionTypeDeposit,
		Amount:      amount,
		Description: source,
		Reference:   uuid.NewString(),
		AccountID:   account.ID,
	}

	err = s.repo.ExecuteInTransaction(func(r repositories.AccountRepository) error {
		account.Balance = account.Balance.Add(amount)
		if err := r.UpdateBalance(ctx, account); err != nil {
			return err
		}
		return r.CreateTransaction(ctx, tx)
	})
	if err != nil {
		s.metrics.RecordError("deposit", err.Error())
		return nil, fmt.Errorf("deposit failed: %w", err)
	}

	s.invalidate(ctx, account.ID)
	s.metrics.RecordTransaction(models.TransactionTypeDeposit, amount)
	return tx, nil
}

func (s *service) Transfer(ctx context.Context, username string, sourceAccountID uint, recipientAccountNumber string, amount decimal.Decimal, pin string) (*TransferResult, error) {
	if err := validateAmount(amount); err != nil {
		return nil, err
	}
	if err := s.pins.VerifyPin(ctx, username, pin); err != nil {
		return nil, err
	}

	recipient, err := s.repo.GetByAccountNumber(ctx, recipientAccountNumber)
	if err != nil {
		if errors.Is(err, repositories.ErrAccountNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to resolve recipient: %w", err)
	}
	if recipient.ID == sourceAccountID {
		return nil, ErrSameAccount
	}

	unlock := s.locks.lockPair(sourceAccountID, recipient.ID)
	defer unlock()

	// Re-read both under the locks; balances seen before acquisition are
	// stale by definition.
	source, err := ownedAccount(ctx, s.repo, username, sourceAccountID)
	if err != nil {
		return nil, err
	}
	recipient, err = s.repo.GetByID(ctx, recipient.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve recipient: %w", err)
	}

	debit, credit, err := s.moveFunds(ctx, source, recipient, amount,
		"Transfer to "+recipient.User.FullName,
		"Transfer from "+source.User.FullName)
	if err != nil {
		s.metrics.RecordError("transfer", err.Error())
		return nil, err
	}

	s.invalidate(ctx, source.ID, recipient.ID)
	s.metrics.RecordTransaction(models.TransactionTypeTransfer, amount)
	return &TransferResult{Debit: debit, Credit: credit, SourceBalance: source.Balance}, nil
}

func (s *service) SelfTransfer(ctx context.Context, username string, sourceAccountID, destinationAccountID uint, amount decimal.Decimal, pin string) (*TransferResult, error) {
	// Identical ids are rejected before any other check, PIN included.
	if sourceAccountID == destinationAccountID {
		return nil, ErrSameAccount
	}
	if err := validateAmount(amount); err != nil {
		return nil, err
	}
	if err := s.pins.VerifyPin(ctx, username, pin); err != nil {
		return nil, err
	}

	unlock := s.locks.lockPair(sourceAccountID, destinationAccountID)
	defer unlock()

	source, err := ownedAccount(ctx, s.repo, username, sourceAccountID)
	if err != nil {
		return nil, err
	}
	destination, err := ownedAccount(ctx, s.repo, username, destinationAccountID)
	if err != nil {
		return nil, err
	}

	debit, credit, err := s.moveFunds(ctx, source, destination, amount,
		"Self-transfer to Acc ending "+destination.LastFour(),
		"Self-transfer from Acc ending "+source.LastFour())
	if err != nil {
		s.metrics.RecordError("self_transfer", err.Error())
		return nil, err
	}

	s.invalidate(ctx, source.ID, destination.ID)
	s.metrics.RecordTransaction(models.TransactionTypeTransfer, amount)
	s.record(ctx, source.UserID, nil, models.ActivitySelfTransfer,
		fmt.Sprintf("Transferred %s from Acc ending %s to Acc ending %s",
			amount.StringFixed(2), source.LastFour(), destination.LastFour()))

	return &TransferResult{Debit: debit, Credit: credit, SourceBalance: source.Balance}, nil
}

// moveFunds debits src and credits dst and appends both ledger rows as one
// unit of work. Callers hold both account locks.
func (s *service) moveFunds(ctx context.Context, src, dst *models.Account, amount decimal.Decimal, debitDesc, creditDesc string) (*models.Transaction, *models.Transaction, error) {
	if src.Balance.LessThan(amount) {
		return nil, nil, ErrInsufficientFunds
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	ref := uuid.NewString()
	debit := &models.Transaction{
		Type:        models.TransactionTypeTransfer,
		Amount:      amount.Neg(),
		Description: debitDesc,
		Reference:   ref,
		AccountID:   src.ID,
	}
	credit := &models.Transaction{
		Type:        models.TransactionTypeTransfer,
		Amount:      amount,
		Description: creditDesc,
		Reference:   ref,
		AccountID:   dst.ID,
	}

	err := s.repo.ExecuteInTransaction(func(r repositories.AccountRepository) error {
		src.Balance = src.Balance.Sub(amount)
		dst.Balance = dst.Balance.Add(amount)
		if err := r.UpdateBalance(ctx, src); err != nil {
			return err
		}
		if err := r.UpdateBalance(ctx, dst); err != nil {
			return err
		}
		if err := r.CreateTransaction(ctx, debit); err != nil {
			return err
		}
		return r.CreateTransaction(ctx, credit)
	})
	if err != nil {
		return nil, nil, fmt.Errorf("transfer failed: %w", err)
	}
	return debit, credit, nil
}

func (s *service) PayBill(ctx context.Context, username string, accountID uint, billerName string, amount decimal.Decimal, pin string) (*models.Transaction, error) {
	if err := validateAmount(amount); err != nil {
		return nil, err
	}
	if err := s.pins.VerifyPin(ctx, username, pin); err != nil {
		return nil, err
	}

	unlock := s.locks.lock(accountID)
	defer unlock()

	account, err := ownedAccount(ctx, s.repo, username, accountID)
	if err != nil {
		return nil, err
	}
	if account.Balance.LessThan(amount) {
		return nil, ErrInsufficientFunds
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	tx := &models.Transaction{
		Type:        models.TransactionTypePayment,
		Amount:      amount.Neg(),
		Description: "Paid bill to " + billerName,
		Reference:   uuid.NewString(),
		AccountID:   account.ID,
	}

	err = s.repo.ExecuteInTransaction(func(r repositories.AccountRepository) error {
		account.Balance = account.Balance.Sub(amount)
		if err := r.UpdateBalance(ctx, account); err != nil {
			return err
		}
		return r.CreateTransaction(ctx, tx)
	})
	if err != nil {
		s.metrics.RecordError("pay_bill", err.Error())
		return nil, fmt.Errorf("bill payment failed: %w", err)
	}

	s.invalidate(ctx, account.ID)
	s.metrics.RecordTransaction(models.TransactionTypePayment, amount)
	return tx, nil
}

func (s *service) GetBalance(ctx context.Context, accountID uint) (decimal.Decimal, error) {
	if cached, ok := s.cache.GetAccount(ctx, accountID); ok {
		return cached.Balance, nil
	}

	account, err := s.repo.GetByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, repositories.ErrAccountNotFound) {
			return decimal.Zero, ErrAccountNotFound
		}
		return decimal.Zero, fmt.Errorf("failed to get balance: %w", err)
	}

	if err := s.cache.CacheAccount(ctx, account); err != nil {
		log.Printf("failed to cache account %d: %v", accountID, err)
	}
	return account.Balance, nil
}

func (s *service) GetRecentTransactions(ctx context.Context, accountID uint) ([]models.Transaction, error) {
	if cached, ok := s.cache.GetRecentTransactions(ctx, accountID); ok {
		return cached, nil
	}

	txs, err := s.repo.RecentTransactions(ctx, accountID, RecentTransactionLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to get recent transactions: %w", err)
	}

	if err := s.cache.CacheRecentTransactions(ctx, accountID, txs); err != nil {
		log.Printf("failed to cache transactions for account %d: %v", accountID, err)
	}
	return txs, nil
}

func (s *service) VerifyRecipient(ctx context.Context, accountNumber string) (string, error) {
	account, err := s.repo.GetByAccountNumber(ctx, accountNumber)
	if err != nil {
		if errors.Is(err, repositories.ErrAccountNotFound) {
			return "", ErrAccountNotFound
		}
		return "", fmt.Errorf("failed to verify recipient: %w", err)
	}
	if account.User == nil {
		return "", fmt.Errorf("account %d has no owner loaded", account.ID)
	}
	return account.User.FullName, nil
}

func (s *service) CreateInitialDepositTransaction(ctx context.Context, accountID uint) error {
	tx := &models.Transaction{
		Type:        models.TransactionTypeDeposit,
		Amount:      SignupBonus,
		Description: SignupBonusDescription,
		Reference:   uuid.NewString(),
		AccountID:   accountID,
	}
	if err := s.repo.CreateTransaction(ctx, tx); err != nil {
		return fmt.Errorf("failed to record signup bonus: %w", err)
	}
	return nil
}

// record appends an activity entry; failures are logged, never returned.
func (s *service) record(ctx context.Context, userID uint, accountID *uint, activityType, description string) {
	if s.activity == nil {
		return
	}
	if err := s.activity.Record(ctx, userID, accountID, activityType, description); err != nil {
		log.Printf("failed to record activity %s for user %d: %v", activityType, userID, err)
	}
}

func (s *service) invalidate(ctx context.Context, accountIDs ...uint) {
	for _, id := range accountIDs {
		if err := s.cache.InvalidateAccount(ctx, id); err != nil {
			log.Printf("failed to invalidate cache for account %d: %v", id, err)
		}
	}
}
