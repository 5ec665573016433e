/*
Package ledger implements the account ledger core: the only component
allowed to mutate balances or append transaction rows.

Every money-movement call walks the same sequence: resolve and lock the
account(s), verify authorization, validate business rules, mutate
balances, append ledger entries, then (best-effort) record activity.
Any failure before the mutation leaves all state untouched; the mutation
plus its ledger entries commit as one database transaction.

Concurrency: a per-account lock table serializes mutations on the same
account. Operations touching two accounts take both locks in ascending
account-ID order, so two opposing transfers can never deadlock. Locks are
held across the store write only; cache invalidation and activity logging
happen after release.

Money is decimal.Decimal end to end. No float64 ever carries a balance or
an amount.

Usage:

	svc := ledger.NewService(repo, pins, activity, cache, &ledger.NoopMetricsCollector{})

	tx, err := svc.Deposit(ctx, "alice", accountID, amount, "Salary")
	res, err := svc.Transfer(ctx, "alice", srcID, "9876543210", amount, pin)
	balance, err := svc.GetBalance(ctx, accountID)

Error handling: expected outcomes (unknown account, ownership mismatch,
insufficient funds, bad amount, same-account transfer) are sentinel errors
the caller layer maps to status codes. Store failures are wrapped and
surface as internal errors; they are never folded into a domain sentinel.
*/
package ledger
