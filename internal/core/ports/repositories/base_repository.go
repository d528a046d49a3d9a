package repositories

import (
	"context"
)

// TransactionManager runs a function inside a single database transaction.
// The transaction rides the context: repository methods invoked from fn join
// it automatically, and nested RunInTx calls reuse the outer transaction.
type TransactionManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}
