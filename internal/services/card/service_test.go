package card

import (
	"context"
	"errors"
	"testing"

	"atlasbank/internal/models"
	"atlasbank/internal/repositories"
	"atlasbank/internal/services/ledger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeCardRepo serves one account with its card and records saves. The
// unused repository methods fail loudly if anything reaches them.
type fakeCardRepo struct {
	repositories.AccountRepository
	account *models.Account
	saved   []models.DebitCard
	saveErr error
}

func (f *fakeCardRepo) GetByIDWithCard(ctx context.Context, id uint) (*models.Account, error) {
	if f.account == nil || f.account.ID != id {
		return nil, repositories.ErrAccountNotFound
	}
	return f.account, nil
}

func (f *fakeCardRepo) SaveCard(ctx context.Context, card *models.DebitCard) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saved = append(f.saved, *card)
	return nil
}

type fakeRecorder struct {
	entries []string
	scoped  []*uint
}

func (f *fakeRecorder) Record(ctx context.Context, userID uint, accountID *uint, activityType, description string) error {
	f.entries = append(f.entries, description)
	f.scoped = append(f.scoped, accountID)
	return nil
}

func cardAccountFixture() *models.Account {
	return &models.Account{
		ID:            5,
		AccountNumber: "1111229876",
		UserID:        1,
		User:          &models.User{ID: 1, Username: "alice", FullName: "Alice Johnson"},
		DebitCard: &models.DebitCard{
			ID:             12,
			CardNumber:     "1234-5678-9012-3456",
			CardHolderName: "Alice Johnson",
			CVV:            "123",
			Active:         true,
			OnlineEnabled:  true,
			AccountID:      5,
		},
	}
}

func TestGetCard(t *testing.T) {
	repo := &fakeCardRepo{account: cardAccountFixture()}
	svc := NewService(repo, &fakeRecorder{})

	card, err := svc.GetCard(context.Background(), "alice", 5)
	require.NoError(t, err)
	assert.Equal(t, "1234-5678-9012-3456", card.CardNumber)

	_, err = svc.GetCard(context.Background(), "bob", 5)
	assert.ErrorIs(t, err, ledger.ErrAccountOwnership)

	_, err = svc.GetCard(context.Background(), "alice", 99)
	assert.ErrorIs(t, err, ledger.ErrAccountNotFound)
}

func TestGetCardMissing(t *testing.T) {
	account := cardAccountFixture()
	account.DebitCard = nil
	repo := &fakeCardRepo{account: account}
	svc := NewService(repo, &fakeRecorder{})

	_, err := svc.GetCard(context.Background(), "alice", 5)

	assert.ErrorIs(t, err, ErrNoDebitCard)
}

func TestGetCardCVV(t *testing.T) {
	repo := &fakeCardRepo{account: cardAccountFixture()}
	svc := NewService(repo, &fakeRecorder{})

	cvv, err := svc.GetCardCVV(context.Background(), "alice", 5)

	require.NoError(t, err)
	assert.Equal(t, "123", cvv)
}

func TestToggleOption(t *testing.T) {
	tests := []struct {
		name            string
		option          string
		wantDescription string
		check           func(t *testing.T, card *models.DebitCard)
	}{
		{
			name:            "freeze master",
			option:          OptionMaster,
			wantDescription: "Froze Debit Card (Master) for Account ending in 9876",
			check: func(t *testing.T, card *models.DebitCard) {
				assert.False(t, card.Active)
			},
		},
		{
			name:            "disable online",
			option:          OptionOnline,
			wantDescription: "Disabled Online Transactions for Account ending in 9876",
			check: func(t *testing.T, card *models.DebitCard) {
				assert.False(t, card.OnlineEnabled)
			},
		},
		{
			name:            "enable international",
			option:          OptionInternational,
			wantDescription: "Enabled International Transactions for Account ending in 9876",
			check: func(t *testing.T, card *models.DebitCard) {
				assert.True(t, card.InternationalEnabled)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &fakeCardRepo{account: cardAccountFixture()}
			recorder := &fakeRecorder{}
			svc := NewService(repo, recorder)

			card, err := svc.ToggleOption(context.Background(), "alice", 5, tt.option)

			require.NoError(t, err)
			tt.check(t, card)
			require.Len(t, repo.saved, 1)
			require.Len(t, recorder.entries, 1)
			assert.Equal(t, tt.wantDescription, recorder.entries[0])
			require.NotNil(t, recorder.scoped[0], "card toggles are account-scoped entries")
			assert.Equal(t, uint(5), *recorder.scoped[0])
		})
	}
}

func TestToggleOptionRoundTrip(t *testing.T) {
	repo := &fakeCardRepo{account: cardAccountFixture()}
	recorder := &fakeRecorder{}
	svc := NewService(repo, recorder)

	_, err := svc.ToggleOption(context.Background(), "alice", 5, OptionMaster)
	require.NoError(t, err)
	card, err := svc.ToggleOption(context.Background(), "alice", 5, OptionMaster)
	require.NoError(t, err)

	assert.True(t, card.Active, "two toggles return to the original state")
	assert.Equal(t, "Froze Debit Card (Master) for Account ending in 9876", recorder.entries[0])
	assert.Equal(t, "Unfroze Debit Card (Master) for Account ending in 9876", recorder.entries[1])
}

func TestToggleOptionInvalid(t *testing.T) {
	repo := &fakeCardRepo{account: cardAccountFixture()}
	svc := NewService(repo, &fakeRecorder{})

	_, err := svc.ToggleOption(context.Background(), "alice", 5, "contactless")

	assert.ErrorIs(t, err, ErrInvalidOption)
	assert.Empty(t, repo.saved)
}

func TestToggleOptionSaveFailure(t *testing.T) {
	repo := &fakeCardRepo{account: cardAccountFixture(), saveErr: errors.New("db down")}
	recorder := &fakeRecorder{}
	svc := NewService(repo, recorder)

	_, err := svc.ToggleOption(context.Background(), "alice", 5, OptionOnline)

	require.Error(t, err)
	assert.Empty(t, recorder.entries, "nothing is recorded when the save fails")
}
