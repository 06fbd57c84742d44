package repository

import (
	"context"

	"github.com/oksasatya/go-course-platform/internal/domain/entity"
)

// IdentityResult carries the user-facing reasons a mutation was refused.
type IdentityResult struct {
	Errors []string
}

func (r IdentityResult) Succeeded() bool { return len(r.Errors) == 0 }

// Failed builds a refused result.
func Failed(reasons ...string) IdentityResult {
	return IdentityResult{Errors: reasons}
}

// CredentialStore owns identities, password hashes and role assignments.
// The returned error is reserved for infrastructure failures; policy or
// uniqueness refusals are reported through IdentityResult.
type CredentialStore interface {
	// CreateIdentity hashes password, persists ident and assigns the default
	// role for its kind. On success ident.Base().ID is populated.
	CreateIdentity(ctx context.Context, ident entity.Identity, password string) (IdentityResult, error)
	VerifyPassword(ctx context.Context, ident entity.Identity, password string) (bool, error)
	// FindByEmail returns ErrNotFound when no identity has that email.
	FindByEmail(ctx context.Context, email string) (entity.Identity, error)
	ChangePassword(ctx context.Context, ident entity.Identity, current, next string) (IdentityResult, error)
	UpdateIdentity(ctx context.Context, ident entity.Identity) (IdentityResult, error)
	DeleteIdentity(ctx context.Context, ident entity.Identity) (IdentityResult, error)
	RolesOf(ctx context.Context, ident entity.Identity) ([]string, error)
}
