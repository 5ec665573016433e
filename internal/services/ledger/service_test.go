package ledger

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"atlasbank/internal/models"
	"atlasbank/internal/repositories"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memStore is shared state behind the fake repository. Methods do no
// locking; fakeRepo serializes access the way a database serializes
// transactions.
type memStore struct {
	accounts map[uint]*models.Account
	byNumber map[string]uint
	txs      []models.Transaction
	nextTxID uint

	failCreateTx      error
	failCreateTxAfter int // fail on the nth CreateTransaction call (1-based); 0 means every call
	createTxCalls     int
	failUpdateBalance error
}

func (s *memStore) getByID(id uint) (*models.Account, error) {
	a, ok := s.accounts[id]
	if !ok {
		return nil, repositories.ErrAccountNotFound
	}
	copied := *a
	return &copied, nil
}

func (s *memStore) getByNumber(number string) (*models.Account, error) {
	id, ok := s.byNumber[number]
	if !ok {
		return nil, repositories.ErrAccountNotFound
	}
	return s.getByID(id)
}

func (s *memStore) updateBalance(account *models.Account) error {
	if s.failUpdateBalance != nil {
		return s.failUpdateBalance
	}
	stored, ok := s.accounts[account.ID]
	if !ok {
		return repositories.ErrAccountNotFound
	}
	stored.Balance = account.Balance
	return nil
}

func (s *memStore) createTransaction(tx *models.Transaction) error {
	s.createTxCalls++
	if s.failCreateTx != nil && (s.failCreateTxAfter == 0 || s.createTxCalls == s.failCreateTxAfter) {
		return s.failCreateTx
	}
	s.nextTxID++
	tx.ID = s.nextTxID
	s.txs = append(s.txs, *tx)
	return nil
}

func (s *memStore) recent(accountID uint, limit int) []models.Transaction {
	out := make([]models.Transaction, 0, limit)
	for i := len(s.txs) - 1; i >= 0 && len(out) < limit; i-- {
		if s.txs[i].AccountID == accountID {
			out = append(out, s.txs[i])
		}
	}
	return out
}

type storeSnapshot struct {
	accounts map[uint]models.Account
	txs      []models.Transaction
	nextTxID uint
}

func (s *memStore) snapshot() storeSnapshot {
	accounts := make(map[uint]models.Account, len(s.accounts))
	for id, a := range s.accounts {
		accounts[id] = *a
	}
	txs := make([]models.Transaction, len(s.txs))
	copy(txs, s.txs)
	return storeSnapshot{accounts: accounts, txs: txs, nextTxID: s.nextTxID}
}

func (s *memStore) restore(snap storeSnapshot) {
	for id := range s.accounts {
		if _, ok := snap.accounts[id]; !ok {
			delete(s.accounts, id)
		}
	}
	for id, a := range snap.accounts {
		copied := a
		s.accounts[id] = &copied
	}
	s.txs = snap.txs
	s.nextTxID = snap.nextTxID
}

// fakeRepo implements repositories.AccountRepository against memStore.
// ExecuteInTransaction snapshots state and rolls back when fn fails, so
// atomicity violations in the engine surface as real test failures.
type fakeRepo struct {
	mu sync.Mutex
	s  *memStore
}

func newFakeRepo(s *memStore) *fakeRepo { return &fakeRepo{s: s} }

func (r *fakeRepo) Create(ctx context.Context, account *models.Account) error {
	return errors.New("not implemented")
}

func (r *fakeRepo) GetByID(ctx context.Context, id uint) (*models.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.s.getByID(id)
}

func (r *fakeRepo) GetByIDWithCard(ctx context.Context, id uint) (*models.Account, error) {
	return r.GetByID(ctx, id)
}

func (r *fakeRepo) GetByAccountNumber(ctx context.Context, number string) (*models.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.s.getByNumber(number)
}

func (r *fakeRepo) ListByUsername(ctx context.Context, username string) ([]models.Account, error) {
	return nil, errors.New("not implemented")
}

func (r *fakeRepo) ExistsByUserAndBank(ctx context.Context, userID, bankID uint) (bool, error) {
	return false, errors.New("not implemented")
}

func (r *fakeRepo) UpdateBalance(ctx context.Context, account *models.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.s.updateBalance(account)
}

func (r *fakeRepo) UpdateNickname(ctx context.Context, accountID uint, nickname string) error {
	return errors.New("not implemented")
}

func (r *fakeRepo) SaveCard(ctx context.Context, card *models.DebitCard) error {
	return errors.New("not implemented")
}

func (r *fakeRepo) CreateTransaction(ctx context.Context, tx *models.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.s.createTransaction(tx)
}

func (r *fakeRepo) RecentTransactions(ctx context.Context, accountID uint, limit int) ([]models.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.s.recent(accountID, limit), nil
}

func (r *fakeRepo) AllTransactions(ctx context.Context, accountID uint) ([]models.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []models.Transaction{}
	for _, tx := range r.s.txs {
		if tx.AccountID == accountID {
			out = append(out, tx)
		}
	}
	return out, nil
}

func (r *fakeRepo) ExecuteInTransaction(fn func(repositories.AccountRepository) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	snap := r.s.snapshot()
	if err := fn(&txRepo{s: r.s}); err != nil {
		r.s.restore(snap)
		return err
	}
	return nil
}

// txRepo is the view handed to ExecuteInTransaction callbacks. The outer
// fakeRepo holds the lock for the whole transaction.
type txRepo struct {
	s *memStore
}

func (r *txRepo) Create(ctx context.Context, account *models.Account) error {
	return errors.New("not implemented")
}

func (r *txRepo) GetByID(ctx context.Context, id uint) (*models.Account, error) {
	return r.s.getByID(id)
}

func (r *txRepo) GetByIDWithCard(ctx context.Context, id uint) (*models.Account, error) {
	return r.s.getByID(id)
}

func (r *txRepo) GetByAccountNumber(ctx context.Context, number string) (*models.Account, error) {
	return r.s.getByNumber(number)
}

func (r *txRepo) ListByUsername(ctx context.Context, username string) ([]models.Account, error) {
	return nil, errors.New("not implemented")
}

func (r *txRepo) ExistsByUserAndBank(ctx context.Context, userID, bankID uint) (bool, error) {
	return false, errors.New("not implemented")
}

func (r *txRepo) UpdateBalance(ctx context.Context, account *models.Account) error {
	return r.s.updateBalance(account)
}

func (r *txRepo) UpdateNickname(ctx context.Context, accountID uint, nickname string) error {
	return errors.New("not implemented")
}

func (r *txRepo) SaveCard(ctx context.Context, card *models.DebitCard) error {
	return errors.New("not implemented")
}

func (r *txRepo) CreateTransaction(ctx context.Context, tx *models.Transaction) error {
	return r.s.createTransaction(tx)
}

func (r *txRepo) RecentTransactions(ctx context.Context, accountID uint, limit int) ([]models.Transaction, error) {
	return r.s.recent(accountID, limit), nil
}

func (r *txRepo) AllTransactions(ctx context.Context, accountID uint) ([]models.Transaction, error) {
	return nil, errors.New("not implemented")
}

func (r *txRepo) ExecuteInTransaction(fn func(repositories.AccountRepository) error) error {
	return fn(r)
}

// fakePins accepts one pin per username and counts verifications.
type fakePins struct {
	mu    sync.Mutex
	pins  map[string]string
	err   error
	calls int
}

func (p *fakePins) VerifyPin(ctx context.Context, username, pin string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	if p.err != nil {
		return p.err
	}
	if p.pins[username] != pin {
		return errors.New("invalid pin")
	}
	return nil
}

type recordedActivity struct {
	userID       uint
	accountID    *uint
	activityType string
	description  string
}

type fakeActivity struct {
	mu      sync.Mutex
	entries []recordedActivity
}

func (a *fakeActivity) Record(ctx context.Context, userID uint, accountID *uint, activityType, description string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.entries = append(a.entries, recordedActivity{userID, accountID, activityType, description})
	return nil
}

func money(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// testStore seeds three accounts: two for alice, one for bob.
func testStore() *memStore {
	alice := &models.User{ID: 1, Username: "alice", FullName: "Alice Johnson"}
	bob := &models.User{ID: 2, Username: "bob", FullName: "Bob Smith"}
	return &memStore{
		accounts: map[uint]*models.Account{
			1: {ID: 1, AccountNumber: "1111222233", Balance: money("100.00"), UserID: 1, User: alice},
			2: {ID: 2, AccountNumber: "9999888877", Balance: money("0.00"), UserID: 2, User: bob},
			3: {ID: 3, AccountNumber: "5555666644", Balance: money("25.00"), UserID: 1, User: alice},
		},
		byNumber: map[string]uint{
			"1111222233": 1,
			"9999888877": 2,
			"5555666644": 3,
		},
	}
}

func newTestService(store *memStore) (Service, *fakePins, *fakeActivity) {
	pins := &fakePins{pins: map[string]string{"alice": "4321", "bob": "1111"}}
	activity := &fakeActivity{}
	svc := NewService(newFakeRepo(store), pins, activity, nil, nil)
	return svc, pins, activity
}

func TestDeposit(t *testing.T) {
	tests := []struct {
		name      string
		username  string
		accountID uint
		amount    string
		wantErr   error
	}{
		{name: "valid deposit", username: "alice", accountID: 1, amount: "40.00"},
		{name: "minimum amount", username: "alice", accountID: 1, amount: "0.01"},
		{name: "zero amount", username: "alice", accountID: 1, amount: "0.00", wantErr: ErrInvalidAmount},
		{name: "negative amount", username: "alice", accountID: 1, amount: "-5.00", wantErr: ErrInvalidAmount},
		{name: "three decimal places", username: "alice", accountID: 1, amount: "1.005", wantErr: ErrInvalidAmount},
		{name: "unknown account", username: "alice", accountID: 99, amount: "10.00", wantErr: ErrAccountNotFound},
		{name: "foreign account", username: "alice", accountID: 2, amount: "10.00", wantErr: ErrAccountOwnership},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := testStore()
			svc, _, _ := newTestService(store)
			before := store.accounts[tt.accountID]
			var beforeBalance decimal.Decimal
			if before != nil {
				beforeBalance = before.Balance
			}

			tx, err := svc.Deposit(context.Background(), tt.username, tt.accountID, money(tt.amount), "Salary")

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				if before != nil {
					assert.True(t, store.accounts[tt.accountID].Balance.Equal(beforeBalance),
						"failed deposit must not touch the balance")
				}
				assert.Empty(t, store.txs)
				return
			}

			require.NoError(t, err)
			require.NotNil(t, tx)
			assert.Equal(t, models.TransactionTypeDeposit, tx.Type)
			assert.True(t, tx.Amount.Equal(money(tt.amount)))
			assert.Equal(t, "Salary", tx.Description)
			assert.NotEmpty(t, tx.Reference)
			assert.True(t, store.accounts[tt.accountID].Balance.Equal(beforeBalance.Add(money(tt.amount))))
			require.Len(t, store.txs, 1)
		})
	}
}

func TestDepositDoesNotRequirePin(t *testing.T) {
	store := testStore()
	svc, pins, _ := newTestService(store)

	_, err := svc.Deposit(context.Background(), "alice", 1, money("5.00"), "Cash")

	require.NoError(t, err)
	assert.Zero(t, pins.calls, "deposits are not pin-gated")
}

func TestTransferMovesFunds(t *testing.T) {
	store := testStore()
	svc, _, _ := newTestService(store)

	result, err := svc.Transfer(context.Background(), "alice", 1, "9999888877", money("40.00"), "4321")

	require.NoError(t, err)
	assert.True(t, store.accounts[1].Balance.Equal(money("60.00")))
	assert.True(t, store.accounts[2].Balance.Equal(money("40.00")))
	assert.True(t, result.SourceBalance.Equal(money("60.00")))

	require.Len(t, store.txs, 2)
	debit, credit := store.txs[0], store.txs[1]
	assert.True(t, debit.Amount.Equal(money("-40.00")))
	assert.True(t, credit.Amount.Equal(money("40.00")))
	assert.Equal(t, debit.Reference, credit.Reference, "both legs share one reference")
	assert.Equal(t, models.TransactionTypeTransfer, debit.Type)
	assert.Equal(t, "Transfer to Bob Smith", debit.Description)
	assert.Equal(t, "Transfer from Alice Johnson", credit.Description)
}

func TestTransferInsufficientFunds(t *testing.T) {
	store := testStore()
	store.accounts[1].Balance = money("10.00")
	svc, _, _ := newTestService(store)

	_, err := svc.Transfer(context.Background(), "alice", 1, "9999888877", money("50.00"), "4321")

	require.ErrorIs(t, err, ErrInsufficientFunds)
	assert.True(t, store.accounts[1].Balance.Equal(money("10.00")))
	assert.True(t, store.accounts[2].Balance.Equal(money("0.00")))
	assert.Empty(t, store.txs, "a rejected transfer leaves no ledger rows")
}

func TestTransferExactBalanceDrain(t *testing.T) {
	store := testStore()
	svc, _, _ := newTestService(store)

	_, err := svc.Transfer(context.Background(), "alice", 1, "9999888877", money("100.00"), "4321")

	require.NoError(t, err)
	assert.True(t, store.accounts[1].Balance.Equal(money("0.00")), "draining to exactly zero is allowed")
}

func TestTransferToOwnAccountNumber(t *testing.T) {
	store := testStore()
	svc, _, _ := newTestService(store)

	_, err := svc.Transfer(context.Background(), "alice", 1, "1111222233", money("10.00"), "4321")

	require.ErrorIs(t, err, ErrSameAccount)
}

func TestTransferRejectsBadPin(t *testing.T) {
	store := testStore()
	svc, _, _ := newTestService(store)

	_, err := svc.Transfer(context.Background(), "alice", 1, "9999888877", money("10.00"), "0000")

	require.Error(t, err)
	assert.True(t, store.accounts[1].Balance.Equal(money("100.00")))
	assert.Empty(t, store.txs, "pin rejection happens before any state change")
}

func TestTransferRollsBackOnFailure(t *testing.T) {
	store := testStore()
	// Both balances update first, then the second ledger row fails. The
	// whole unit of work must unwind.
	store.failCreateTx = errors.New("disk full")
	store.failCreateTxAfter = 2
	svc, _, _ := newTestService(store)

	_, err := svc.Transfer(context.Background(), "alice", 1, "9999888877", money("40.00"), "4321")

	require.Error(t, err)
	assert.True(t, store.accounts[1].Balance.Equal(money("100.00")), "debit must be rolled back")
	assert.True(t, store.accounts[2].Balance.Equal(money("0.00")), "credit must be rolled back")
	assert.Empty(t, store.txs)
}

func TestSelfTransfer(t *testing.T) {
	store := testStore()
	svc, _, activity := newTestService(store)

	result, err := svc.SelfTransfer(context.Background(), "alice", 1, 3, money("30.00"), "4321")

	require.NoError(t, err)
	assert.True(t, store.accounts[1].Balance.Equal(money("70.00")))
	assert.True(t, store.accounts[3].Balance.Equal(money("55.00")))
	assert.True(t, result.SourceBalance.Equal(money("70.00")))

	require.Len(t, store.txs, 2)
	assert.Equal(t, "Self-transfer to Acc ending 6644", store.txs[0].Description)
	assert.Equal(t, "Self-transfer from Acc ending 2233", store.txs[1].Description)

	require.Len(t, activity.entries, 1)
	assert.Equal(t, models.ActivitySelfTransfer, activity.entries[0].activityType)
	assert.Nil(t, activity.entries[0].accountID, "self-transfer entries are user-level")
}

func TestSelfTransferSameAccountRejectedBeforePin(t *testing.T) {
	store := testStore()
	svc, pins, _ := newTestService(store)

	_, err := svc.SelfTransfer(context.Background(), "alice", 1, 1, money("10.00"), "wrong")

	require.ErrorIs(t, err, ErrSameAccount)
	assert.Zero(t, pins.calls, "identical accounts are rejected before the pin is checked")
}

func TestSelfTransferRequiresOwnershipOfBoth(t *testing.T) {
	store := testStore()
	svc, _, _ := newTestService(store)

	_, err := svc.SelfTransfer(context.Background(), "alice", 1, 2, money("10.00"), "4321")

	require.ErrorIs(t, err, ErrAccountOwnership)
	assert.True(t, store.accounts[1].Balance.Equal(money("100.00")))
	assert.Empty(t, store.txs)
}

func TestPayBill(t *testing.T) {
	store := testStore()
	svc, _, _ := newTestService(store)

	tx, err := svc.PayBill(context.Background(), "alice", 1, "City Power", money("35.50"), "4321")

	require.NoError(t, err)
	assert.Equal(t, models.TransactionTypePayment, tx.Type)
	assert.True(t, tx.Amount.Equal(money("-35.50")), "payments are debits")
	assert.Equal(t, "Paid bill to City Power", tx.Description)
	assert.True(t, store.accounts[1].Balance.Equal(money("64.50")))
}

func TestPayBillInsufficientFunds(t *testing.T) {
	store := testStore()
	svc, _, _ := newTestService(store)

	_, err := svc.PayBill(context.Background(), "alice", 1, "City Power", money("100.01"), "4321")

	require.ErrorIs(t, err, ErrInsufficientFunds)
	assert.True(t, store.accounts[1].Balance.Equal(money("100.00")))
	assert.Empty(t, store.txs)
}

func TestGetBalance(t *testing.T) {
	store := testStore()
	svc, _, _ := newTestService(store)

	balance, err := svc.GetBalance(context.Background(), 1)

	require.NoError(t, err)
	assert.True(t, balance.Equal(money("100.00")))

	_, err = svc.GetBalance(context.Background(), 99)
	require.ErrorIs(t, err, ErrAccountNotFound)
}

func TestGetRecentTransactionsLimit(t *testing.T) {
	store := testStore()
	svc, _, _ := newTestService(store)

	for i := 0; i < RecentTransactionLimit+5; i++ {
		_, err := svc.Deposit(context.Background(), "alice", 1, money("1.00"), fmt.Sprintf("Deposit %d", i))
		require.NoError(t, err)
	}

	txs, err := svc.GetRecentTransactions(context.Background(), 1)

	require.NoError(t, err)
	assert.Len(t, txs, RecentTransactionLimit)
	assert.Equal(t, fmt.Sprintf("Deposit %d", RecentTransactionLimit+4), txs[0].Description,
		"newest entry first")
}

func TestVerifyRecipient(t *testing.T) {
	store := testStore()
	svc, _, _ := newTestService(store)

	name, err := svc.VerifyRecipient(context.Background(), "9999888877")
	require.NoError(t, err)
	assert.Equal(t, "Bob Smith", name)

	_, err = svc.VerifyRecipient(context.Background(), "0000000000")
	require.ErrorIs(t, err, ErrAccountNotFound)
}

func TestCreateInitialDepositTransaction(t *testing.T) {
	store := testStore()
	svc, _, _ := newTestService(store)

	err := svc.CreateInitialDepositTransaction(context.Background(), 1)

	require.NoError(t, err)
	require.Len(t, store.txs, 1)
	bonus := store.txs[0]
	assert.Equal(t, models.TransactionTypeDeposit, bonus.Type)
	assert.True(t, bonus.Amount.Equal(money("50.00")))
	assert.Equal(t, SignupBonusDescription, bonus.Description)
}

func TestConcurrentTransfersConserveTotal(t *testing.T) {
	store := testStore()
	store.accounts[1].Balance = money("1000.00")
	store.accounts[3].Balance = money("1000.00")
	svc, _, _ := newTestService(store)

	const workers = 8
	const transfersPerWorker = 25

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < transfersPerWorker; i++ {
				var err error
				if w%2 == 0 {
					_, err = svc.SelfTransfer(context.Background(), "alice", 1, 3, money("1.00"), "4321")
				} else {
					_, err = svc.SelfTransfer(context.Background(), "alice", 3, 1, money("1.00"), "4321")
				}
				assert.NoError(t, err)
			}
		}(w)
	}
	wg.Wait()

	total := store.accounts[1].Balance.Add(store.accounts[3].Balance)
	assert.True(t, total.Equal(money("2000.00")), "money is conserved, got total %s", total)
	assert.Len(t, store.txs, workers*transfersPerWorker*2)
}

func TestConcurrentOverdraftPrevented(t *testing.T) {
	store := testStore()
	store.accounts[1].Balance = money("10.00")
	svc, _, _ := newTestService(store)

	// Twenty racing 1.00 debits against a 10.00 balance: exactly ten
	// succeed and the balance never goes negative.
	const attempts = 20
	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded := 0
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Transfer(context.Background(), "alice", 1, "9999888877", money("1.00"), "4321")
			if err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			} else {
				assert.ErrorIs(t, err, ErrInsufficientFunds)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 10, succeeded)
	assert.True(t, store.accounts[1].Balance.Equal(money("0.00")))
	assert.False(t, store.accounts[1].Balance.IsNegative())
}
