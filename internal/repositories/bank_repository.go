package repositories

import (
	"context"
	"errors"
	"fmt"

	"atlasbank/internal/models"

	"gorm.io/gorm"
)

var ErrBankNotFound = errors.New("bank not found")

// BankRepository reads the static bank reference data.
type BankRepository interface {
	GetByID(ctx context.Context, id uint) (*models.Bank, error)
	List(ctx context.Context) ([]models.Bank, error)
	Count(ctx context.Context) (int64, error)
	Create(ctx context.Context, bank *models.Bank) error
}

type bankRepository struct {
	db *gorm.DB
}

func NewBankRepository(db *gorm.DB) BankRepository {
	return &bankRepository{db: db}
}

func (r *bankRepository) GetByID(ctx context.Context, id uint) (*models.Bank, error) {
	var bank models.Bank
	if err := r.db.WithContext(ctx).First(&bank, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBankNotFound
		}
		return nil, fmt.Errorf("failed to get bank: %w", err)
	}
	return &bank, nil
}

func (r *bankRepository) List(ctx context.Context) ([]models.Bank, error) {
	var banks []models.Bank
	if err := r.db.WithContext(ctx).Order("name").Find(&banks).Error; err != nil {
		return nil, fmt.Errorf("failed to list banks: %w", err)
	}
	return banks, nil
}

func (r *bankRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Bank{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count banks: %w", err)
	}
	return count, nil
}

func (r *bankRepository) Create(ctx context.Context, bank *models.Bank) error {
	if err := r.db.WithContext(ctx).Create(bank).Error; err != nil {
		return fmt.Errorf("failed to create bank: %w", err)
	}
	return nil
}
