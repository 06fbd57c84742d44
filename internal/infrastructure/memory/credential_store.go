package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/oksasatya/go-course-platform/internal/domain/entity"
	"github.com/oksasatya/go-course-platform/internal/domain/repository"
	"github.com/oksasatya/go-course-platform/pkg/helpers"
)

type credential struct {
	ident entity.Identity
	hash  string
	roles []string
}

// CredentialStore keeps identities in process. Callers always receive copies.
type CredentialStore struct {
	mu         sync.RWMutex
	byID       map[string]*credential
	Policy     helpers.PasswordPolicy
	BcryptCost int
	now        func() time.Time
}

func NewCredentialStore(policy helpers.PasswordPolicy, bcryptCost int) *CredentialStore {
	return &CredentialStore{
		byID:       map[string]*credential{},
		Policy:     policy,
		BcryptCost: bcryptCost,
		now:        time.Now,
	}
}

func (s *CredentialStore) CreateIdentity(_ context.Context, ident entity.Identity, password string) (repository.IdentityResult, error) {
	acc := ident.Base()
	var reasons []string
	if acc.UserName == "" {
		reasons = append(reasons, "Username cannot be empty.")
	}

	s.mu.RLock()
	reasons = append(reasons, s.takenLocked(acc.Email, acc.UserName, "")...)
	s.mu.RUnlock()
	reasons = append(reasons, s.Policy.Validate(password)...)
	if len(reasons) > 0 {
		return repository.Failed(reasons...), nil
	}

	hash, err := helpers.HashPasswordWithCost(password, s.BcryptCost)
	if err != nil {
		return repository.IdentityResult{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	// re-check under the write lock; hashing ran unlocked
	if taken := s.takenLocked(acc.Email, acc.UserName, ""); len(taken) > 0 {
		return repository.Failed(taken...), nil
	}
	now := s.now().UTC()
	acc.ID = uuid.NewString()
	acc.CreatedAt = now
	acc.UpdatedAt = now
	s.byID[acc.ID] = &credential{
		ident: clone(ident),
		hash:  hash,
		roles: []string{entity.DefaultRole(ident.Kind())},
	}
	return repository.IdentityResult{}, nil
}

func (s *CredentialStore) VerifyPassword(_ context.Context, ident entity.Identity, password string) (bool, error) {
	s.mu.RLock()
	c, ok := s.byID[ident.Base().ID]
	var hash string
	if ok {
		hash = c.hash
	}
	s.mu.RUnlock()
	if !ok {
		return false, nil
	}
	return helpers.CompareHashAndPassword(hash, password), nil
}

func (s *CredentialStore) FindByEmail(_ context.Context, email string) (entity.Identity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.byID {
		if strings.EqualFold(c.ident.Base().Email, email) {
			return clone(c.ident), nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *CredentialStore) ChangePassword(ctx context.Context, ident entity.Identity, current, next string) (repository.IdentityResult, error) {
	ok, err := s.VerifyPassword(ctx, ident, current)
	if err != nil {
		return repository.IdentityResult{}, err
	}
	if !ok {
		return repository.Failed("Incorrect password."), nil
	}
	if reasons := s.Policy.Validate(next); len(reasons) > 0 {
		return repository.Failed(reasons...), nil
	}
	hash, err := helpers.HashPasswordWithCost(next, s.BcryptCost)
	if err != nil {
		return repository.IdentityResult{}, err
	}

	acc := ident.Base()
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.byID[acc.ID]
	if !ok {
		return repository.Failed(userMissing(acc)), nil
	}
	c.hash = hash
	acc.UpdatedAt = s.now().UTC()
	c.ident.Base().UpdatedAt = acc.UpdatedAt
	return repository.IdentityResult{}, nil
}

// UpdateIdentity replaces the stored profile. Email and kind stay as they were.
func (s *CredentialStore) UpdateIdentity(_ context.Context, ident entity.Identity) (repository.IdentityResult, error) {
	acc := ident.Base()
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.byID[acc.ID]
	if !ok {
		return repository.Failed(userMissing(acc)), nil
	}
	if c.ident.Kind() != ident.Kind() {
		return repository.Failed("User kind cannot be changed."), nil
	}
	if taken := s.takenLocked("", acc.UserName, acc.ID); len(taken) > 0 {
		return repository.Failed(taken...), nil
	}

	stored := c.ident.Base()
	next := clone(ident)
	base := next.Base()
	base.Email = stored.Email
	base.CreatedAt = stored.CreatedAt
	base.UpdatedAt = s.now().UTC()
	acc.UpdatedAt = base.UpdatedAt
	c.ident = next
	return repository.IdentityResult{}, nil
}

func (s *CredentialStore) DeleteIdentity(_ context.Context, ident entity.Identity) (repository.IdentityResult, error) {
	acc := ident.Base()
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[acc.ID]; !ok {
		return repository.Failed(userMissing(acc)), nil
	}
	delete(s.byID, acc.ID)
	return repository.IdentityResult{}, nil
}

func (s *CredentialStore) RolesOf(_ context.Context, ident entity.Identity) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.byID[ident.Base().ID]
	if !ok {
		return []string{}, nil
	}
	roles := append([]string(nil), c.roles...)
	sort.Strings(roles)
	return roles, nil
}

// GrantRole adds role to the identity. Used by seeding and tests.
func (s *CredentialStore) GrantRole(ident entity.Identity, role string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.byID[ident.Base().ID]
	if !ok {
		return repository.ErrNotFound
	}
	for _, r := range c.roles {
		if r == role {
			return nil
		}
	}
	c.roles = append(c.roles, role)
	return nil
}

func (s *CredentialStore) takenLocked(email, userName, exceptID string) []string {
	var reasons []string
	var emailHit, nameHit bool
	for id, c := range s.byID {
		acc := c.ident.Base()
		if email != "" && strings.EqualFold(acc.Email, email) {
			emailHit = true
		}
		if userName != "" && id != exceptID && strings.EqualFold(acc.UserName, userName) {
			nameHit = true
		}
	}
	if emailHit {
		reasons = append(reasons, fmt.Sprintf("Email '%s' is already taken.", email))
	}
	if nameHit {
		reasons = append(reasons, fmt.Sprintf("Username '%s' is already taken.", userName))
	}
	return reasons
}

func clone(ident entity.Identity) entity.Identity {
	switch u := ident.(type) {
	case *entity.RegularUser:
		cp := *u
		return &cp
	case *entity.CompanyUser:
		cp := *u
		return &cp
	default:
		return ident
	}
}

func userMissing(acc *entity.Account) string {
	return fmt.Sprintf("User '%s' does not exist.", acc.Email)
}

var _ repository.CredentialStore = (*CredentialStore)(nil)
