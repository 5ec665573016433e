// Package activity is the append-only audit trail of account and user
// events. Writes are best-effort from the caller's point of view; reads
// merge account-scoped and user-scoped entries into one timeline.
package activity

import (
	"context"
	"errors"
	"sort"

	"atlasbank/internal/models"
	"atlasbank/internal/repositories"
	"atlasbank/internal/services/ledger"
)

type Service interface {
	Record(ctx context.Context, userID uint, accountID *uint, activityType, description string) error
	ListForAccount(ctx context.Context, username string, accountID uint) ([]models.ActivityLog, error)
}

type service struct {
	logs     repositories.ActivityRepository
	accounts repositories.AccountRepository
}

func NewService(logs repositories.ActivityRepository, accounts repositories.AccountRepository) Service {
	if logs == nil {
		panic("activity repository is required")
	}
	if accounts == nil {
		panic("account repository is required")
	}
	return &service{logs: logs, accounts: accounts}
}

func (s *service) Record(ctx context.Context, userID uint, accountID *uint, activityType, description string) error {
	return s.logs.Create(ctx, &models.ActivityLog{
		UserID:       userID,
		AccountID:    accountID,
		ActivityType: activityType,
		Description:  description,
	})
}

// ListForAccount returns the merged, time-descending history for an
// account: entries scoped to the account plus the owner's user-level
// entries (password changes and the like).
func (s *service) ListForAccount(ctx context.Context, username string, accountID uint) ([]models.ActivityLog, error) {
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

	accountLogs, err := s.logs.ListByAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}
	userLogs, err := s.logs.ListUserLevel(ctx, account.UserID)
	if err != nil {
		return nil, err
	}

	merged := make([]models.ActivityLog, 0, len(accountLogs)+len(userLogs))
	merged = append(merged, accountLogs...)
	merged = append(merged, userLogs...)
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].CreatedAt.After(merged[j].CreatedAt)
	})
	return merged, nil
}
