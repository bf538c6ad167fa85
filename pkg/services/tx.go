package services

import "context"

// TxRunner runs fn inside a database transaction whose scope is carried by the
// context passed to fn. *database.DB implements it.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
}
