// Package export renders an account's full transaction history as CSV.
package export

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"atlasbank/internal/repositories"
	"atlasbank/internal/services/ledger"
)

var csvHeader = []string{"Transaction ID", "Date", "Description", "Type", "Amount"}

type Service interface {
	WriteTransactionsCSV(ctx context.Context, w io.Writer, username string, accountID uint) error
}

type service struct {
	accounts repositories.AccountRepository
}

func NewService(accounts repositories.AccountRepository) Service {
	if accounts == nil {
		panic("account repository is required")
	}
	return &service{accounts: accounts}
}

func (s *service) WriteTransactionsCSV(ctx context.Context, w io.Writer, username string, accountID uint) error {
	account, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, repositories.ErrAccountNotFound) {
			return ledger.ErrAccountNotFound
		}
		return err
	}
	if account.User == nil || account.User.Username != username {
		return ledger.ErrAccountOwnership
	}

	txs, err := s.accounts.AllTransactions(ctx, accountID)
	if err != nil {
		return err
	}

	writer := csv.NewWriter(w)
	if err := writer.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	for _, tx := range txs {
		record := []string{
			strconv.FormatUint(uint64(tx.ID), 10),
			tx.CreatedAt.Format(time.RFC3339),
			tx.Description,
			tx.Type,
			tx.Amount.StringFixed(2),
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write csv record: %w", err)
		}
	}
	writer.Flush()
	return writer.Error()
}
