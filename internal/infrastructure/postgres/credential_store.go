package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/samber/oops"

	"github.com/oksasatya/go-course-platform/internal/domain/entity"
	"github.com/oksasatya/go-course-platform/internal/domain/repository"
	"github.com/oksasatya/go-course-platform/pkg/helpers"
)

const userColumns = `id, kind, email, user_name, phone_number, picture_url, street, city, country,
		first_name, last_name, bio, company_name, website, industry, created_at, updated_at`

// CredentialStore keeps identities in users, roles and user_roles.
type CredentialStore struct {
	db         Pool
	Policy     helpers.PasswordPolicy
	BcryptCost int
	now        func() time.Time
}

func NewCredentialStore(db Pool, policy helpers.PasswordPolicy, bcryptCost int) *CredentialStore {
	return &CredentialStore{db: db, Policy: policy, BcryptCost: bcryptCost, now: time.Now}
}

func (s *CredentialStore) CreateIdentity(ctx context.Context, ident entity.Identity, password string) (repository.IdentityResult, error) {
	acc := ident.Base()
	var reasons []string
	if acc.UserName == "" {
		reasons = append(reasons, "Username cannot be empty.")
	}
	taken, err := s.taken(ctx, acc.Email, acc.UserName, "")
	if err != nil {
		return repository.IdentityResult{}, err
	}
	reasons = append(reasons, taken...)
	reasons = append(reasons, s.Policy.Validate(password)...)
	if len(reasons) > 0 {
		return repository.Failed(reasons...), nil
	}

	hash, err := helpers.HashPasswordWithCost(password, s.BcryptCost)
	if err != nil {
		return repository.IdentityResult{}, oops.With("operation", "hash password").Wrap(err)
	}

	now := s.now().UTC()
	id := uuid.NewString()
	values := append([]any{id, string(ident.Kind())}, profileValues(ident)...)
	values = append(values, hash, now, now)

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return repository.IdentityResult{}, oops.With("operation", "begin create identity").Wrap(err)
	}
	if _, err := tx.Exec(ctx, `
		INSERT INTO users (id, kind, email, user_name, phone_number, picture_url, street, city, country,
			first_name, last_name, bio, company_name, website, industry, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
	`, values...); err != nil {
		_ = tx.Rollback(ctx)
		if reason, ok := duplicateReason(err, acc); ok {
			return repository.Failed(reason), nil
		}
		return repository.IdentityResult{}, oops.With("operation", "insert user").With("email", acc.Email).Wrap(err)
	}

	role := entity.DefaultRole(ident.Kind())
	tag, err := tx.Exec(ctx, `
		INSERT INTO user_roles (user_id, role_id)
		SELECT $1, id FROM roles WHERE name = $2
	`, id, role)
	if err != nil {
		_ = tx.Rollback(ctx)
		return repository.IdentityResult{}, oops.With("operation", "assign role").With("role", role).Wrap(err)
	}
	if tag.RowsAffected() == 0 {
		_ = tx.Rollback(ctx)
		return repository.Failed(fmt.Sprintf("Role %s does not exist.", role)), nil
	}
	if err := tx.Commit(ctx); err != nil {
		return repository.IdentityResult{}, oops.With("operation", "commit create identity").Wrap(err)
	}

	acc.ID = id
	acc.CreatedAt = now
	acc.UpdatedAt = now
	return repository.IdentityResult{}, nil
}

func (s *CredentialStore) VerifyPassword(ctx context.Context, ident entity.Identity, password string) (bool, error) {
	var hash string
	err := s.db.QueryRow(ctx, `SELECT password_hash FROM users WHERE id = $1`, ident.Base().ID).Scan(&hash)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, oops.With("operation", "load password hash").Wrap(err)
	}
	return helpers.CompareHashAndPassword(hash, password), nil
}

func (s *CredentialStore) FindByEmail(ctx context.Context, email string) (entity.Identity, error) {
	row := s.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE lower(email) = lower($1)`, email)
	ident, err := scanIdentity(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, oops.With("operation", "find user by email").With("email", email).Wrap(err)
	}
	return ident, nil
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
		return repository.IdentityResult{}, oops.With("operation", "hash password").Wrap(err)
	}

	acc := ident.Base()
	now := s.now().UTC()
	tag, err := s.db.Exec(ctx, `UPDATE users SET password_hash = $1, updated_at = $2 WHERE id = $3`, hash, now, acc.ID)
	if err != nil {
		return repository.IdentityResult{}, oops.With("operation", "update password").Wrap(err)
	}
	if tag.RowsAffected() == 0 {
		return repository.Failed(userMissing(acc)), nil
	}
	acc.UpdatedAt = now
	return repository.IdentityResult{}, nil
}

// UpdateIdentity rewrites the profile columns. Email, kind and password are
// not touched.
func (s *CredentialStore) UpdateIdentity(ctx context.Context, ident entity.Identity) (repository.IdentityResult, error) {
	acc := ident.Base()
	taken, err := s.taken(ctx, "", acc.UserName, acc.ID)
	if err != nil {
		return repository.IdentityResult{}, err
	}
	if len(taken) > 0 {
		return repository.Failed(taken...), nil
	}

	now := s.now().UTC()
	values := profileValues(ident)[1:]
	values = append(values, now, acc.ID)
	tag, err := s.db.Exec(ctx, `
		UPDATE users SET user_name = $1, phone_number = $2, picture_url = $3, street = $4, city = $5,
			country = $6, first_name = $7, last_name = $8, bio = $9, company_name = $10, website = $11,
			industry = $12, updated_at = $13
		WHERE id = $14
	`, values...)
	if err != nil {
		if reason, ok := duplicateReason(err, acc); ok {
			return repository.Failed(reason), nil
		}
		return repository.IdentityResult{}, oops.With("operation", "update user").With("email", acc.Email).Wrap(err)
	}
	if tag.RowsAffected() == 0 {
		return repository.Failed(userMissing(acc)), nil
	}
	acc.UpdatedAt = now
	return repository.IdentityResult{}, nil
}

// DeleteIdentity removes the user; role assignments cascade.
func (s *CredentialStore) DeleteIdentity(ctx context.Context, ident entity.Identity) (repository.IdentityResult, error) {
	acc := ident.Base()
	tag, err := s.db.Exec(ctx, `DELETE FROM users WHERE id = $1`, acc.ID)
	if err != nil {
		return repository.IdentityResult{}, oops.With("operation", "delete user").With("email", acc.Email).Wrap(err)
	}
	if tag.RowsAffected() == 0 {
		return repository.Failed(userMissing(acc)), nil
	}
	return repository.IdentityResult{}, nil
}

func (s *CredentialStore) RolesOf(ctx context.Context, ident entity.Identity) ([]string, error) {
	rows, err := s.db.Query(ctx, `
		SELECT r.name FROM roles r
		JOIN user_roles ur ON ur.role_id = r.id
		WHERE ur.user_id = $1
		ORDER BY r.name
	`, ident.Base().ID)
	if err != nil {
		return nil, oops.With("operation", "get roles").Wrap(err)
	}
	defer rows.Close()

	roles := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, oops.With("operation", "scan role").Wrap(err)
		}
		roles = append(roles, name)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.With("operation", "iterate roles").Wrap(err)
	}
	return roles, nil
}

// EnsureRoles inserts the given role names when missing.
func (s *CredentialStore) EnsureRoles(ctx context.Context, names ...string) error {
	for _, name := range names {
		if _, err := s.db.Exec(ctx, `
			INSERT INTO roles (id, name) VALUES ($1, $2)
			ON CONFLICT (name) DO NOTHING
		`, uuid.NewString(), name); err != nil {
			return oops.With("operation", "ensure role").With("role", name).Wrap(err)
		}
	}
	return nil
}

// taken checks email and user name uniqueness, ignoring the user exceptID.
// Empty values are not checked.
func (s *CredentialStore) taken(ctx context.Context, email, userName, exceptID string) ([]string, error) {
	var reasons []string
	if email != "" {
		var exists bool
		if err := s.db.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM users WHERE lower(email) = lower($1))`, email,
		).Scan(&exists); err != nil {
			return nil, oops.With("operation", "check email").Wrap(err)
		}
		if exists {
			reasons = append(reasons, emailTaken(email))
		}
	}
	if userName != "" {
		var exists bool
		if err := s.db.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM users WHERE lower(user_name) = lower($1) AND id <> $2)`, userName, exceptID,
		).Scan(&exists); err != nil {
			return nil, oops.With("operation", "check user name").Wrap(err)
		}
		if exists {
			reasons = append(reasons, userNameTaken(userName))
		}
	}
	return reasons, nil
}

// profileValues lists email followed by the editable profile columns in
// table order.
func profileValues(ident entity.Identity) []any {
	acc := ident.Base()
	var first, last, bio, company, website, industry string
	switch u := ident.(type) {
	case *entity.RegularUser:
		first, last, bio = u.FirstName, u.LastName, u.Bio
	case *entity.CompanyUser:
		company, website, industry = u.CompanyName, u.Website, u.Industry
	}
	return []any{
		acc.Email, acc.UserName, acc.PhoneNumber, acc.PictureURL,
		acc.Address.Street, acc.Address.City, acc.Address.Country,
		first, last, bio, company, website, industry,
	}
}

func scanIdentity(row pgx.Row) (entity.Identity, error) {
	var acc entity.Account
	var kind string
	var first, last, bio, company, website, industry string
	if err := row.Scan(&acc.ID, &kind, &acc.Email, &acc.UserName, &acc.PhoneNumber, &acc.PictureURL,
		&acc.Address.Street, &acc.Address.City, &acc.Address.Country,
		&first, &last, &bio, &company, &website, &industry, &acc.CreatedAt, &acc.UpdatedAt); err != nil {
		return nil, err
	}
	switch entity.UserKind(kind) {
	case entity.KindRegular:
		return &entity.RegularUser{Account: acc, FirstName: first, LastName: last, Bio: bio}, nil
	case entity.KindCompany:
		return &entity.CompanyUser{Account: acc, CompanyName: company, Website: website, Industry: industry}, nil
	default:
		return nil, oops.With("kind", kind).Errorf("unknown user kind")
	}
}

func duplicateReason(err error, acc *entity.Account) (string, bool) {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != pgerrcode.UniqueViolation {
		return "", false
	}
	if strings.Contains(pgErr.ConstraintName, "email") {
		return emailTaken(acc.Email), true
	}
	return userNameTaken(acc.UserName), true
}

func emailTaken(email string) string   { return fmt.Sprintf("Email '%s' is already taken.", email) }
func userNameTaken(name string) string { return fmt.Sprintf("Username '%s' is already taken.", name) }

func userMissing(acc *entity.Account) string {
	return fmt.Sprintf("User '%s' does not exist.", acc.Email)
}

var _ repository.CredentialStore = (*CredentialStore)(nil)
