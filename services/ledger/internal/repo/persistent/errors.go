package persistent

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrWalletHeld means the wallet was frozen after a hard invariant
	// violation; automated postings must not touch it until audit clears
	// the hold.
	ErrWalletHeld = errors.New("wallet is held pending audit")

	ErrInsufficientBalance = errors.New("insufficient balance")

	// ErrPayoutConflict means a settle/fail was attempted on a payout
	// already settled the other way.
	ErrPayoutConflict = errors.New("payout already settled with a different outcome")
)

// retryable reports whether the whole atomic unit should be retried:
// serialization failures, deadlocks and unique violations (the latter loses
// a post race, and the retry resolves to the winner's entry).
func retryable(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "40001", "40P01", "23505":
			return true
		}
	}
	return false
}
