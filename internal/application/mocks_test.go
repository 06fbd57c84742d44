package application

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"

	"github.com/oksasatya/go-course-platform/internal/domain/entity"
	repo "github.com/oksasatya/go-course-platform/internal/domain/repository"
	"github.com/oksasatya/go-course-platform/pkg/mailer"
)

type mockStore struct{ mock.Mock }

func (m *mockStore) CreateIdentity(ctx context.Context, ident entity.Identity, password string) (repo.IdentityResult, error) {
	args := m.Called(ctx, ident, password)
	return args.Get(0).(repo.IdentityResult), args.Error(1)
}

func (m *mockStore) VerifyPassword(ctx context.Context, ident entity.Identity, password string) (bool, error) {
	args := m.Called(ctx, ident, password)
	return args.Bool(0), args.Error(1)
}

func (m *mockStore) FindByEmail(ctx context.Context, email string) (entity.Identity, error) {
	args := m.Called(ctx, email)
	ident, _ := args.Get(0).(entity.Identity)
	return ident, args.Error(1)
}

func (m *mockStore) ChangePassword(ctx context.Context, ident entity.Identity, current, next string) (repo.IdentityResult, error) {
	args := m.Called(ctx, ident, current, next)
	return args.Get(0).(repo.IdentityResult), args.Error(1)
}

func (m *mockStore) UpdateIdentity(ctx context.Context, ident entity.Identity) (repo.IdentityResult, error) {
	args := m.Called(ctx, ident)
	return args.Get(0).(repo.IdentityResult), args.Error(1)
}

func (m *mockStore) DeleteIdentity(ctx context.Context, ident entity.Identity) (repo.IdentityResult, error) {
	args := m.Called(ctx, ident)
	return args.Get(0).(repo.IdentityResult), args.Error(1)
}

func (m *mockStore) RolesOf(ctx context.Context, ident entity.Identity) ([]string, error) {
	args := m.Called(ctx, ident)
	roles, _ := args.Get(0).([]string)
	return roles, args.Error(1)
}

type mockNotifier struct{ mock.Mock }

func (m *mockNotifier) Notify(ctx context.Context, job mailer.EmailJob) error {
	return m.Called(ctx, job).Error(0)
}

type mockPictures struct{ mock.Mock }

func (m *mockPictures) Upload(ctx context.Context, objectPath, contentType string, r io.Reader) (string, error) {
	args := m.Called(ctx, objectPath, contentType, r)
	return args.String(0), args.Error(1)
}

var _ repo.CredentialStore = (*mockStore)(nil)
