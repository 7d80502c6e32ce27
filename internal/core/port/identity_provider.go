package port

import "context"

// IdentityProvider creates and deletes account records on behalf of the
// engine. Deletion exists solely as the compensating action when profile
// creation fails after the account was provisioned.
type IdentityProvider interface {
	CreateAccount(ctx context.Context, email string) (string, error)
	DeleteAccount(ctx context.Context, accountID string) error
}
