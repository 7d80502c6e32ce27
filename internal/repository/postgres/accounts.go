package postgres

import (
	"context"
	"fmt"
	"time"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/atelierhq/crm-access/internal/core/port"
)

// AccountRepository implements port.IdentityProvider over the local accounts
// table. In deployments with an external identity service this type is
// replaced by a client adapter; the engine only needs create and the
// compensating delete.
type AccountRepository struct {
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewAccountRepository constructs an account repository backed by any executor
// that satisfies pgExecutor.
func NewAccountRepository(exec pgExecutor) *AccountRepository {
	return &AccountRepository{
		exec:    exec,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// CreateAccount provisions a new account and returns its id.
func (r *AccountRepository) CreateAccount(ctx context.Context, email string) (string, error) {
	accountID := uuid.NewString()

	stmt, args, err := r.builder.Insert("crm.accounts").
		Columns("id", "email", "is_active", "created_at").
		Values(accountID, email, true, time.Now().UTC()).
		ToSql()
	if err != nil {
		return "", fmt.Errorf("build insert account sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		return "", fmt.Errorf("insert account: %w", err)
	}

	return accountID, nil
}

// DeleteAccount removes an account row. Used only to roll back provisioning
// when the follow-up profile insert fails, so a missing row is not an error.
func (r *AccountRepository) DeleteAccount(ctx context.Context, accountID string) error {
	stmt, args, err := r.builder.Delete("crm.accounts").
		Where(squirrel.Eq{"id": accountID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete account sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("delete account: %w", err)
	}

	return nil
}

var _ port.IdentityProvider = (*AccountRepository)(nil)
