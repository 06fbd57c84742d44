package application

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-course-platform/internal/domain/entity"
	repo "github.com/oksasatya/go-course-platform/internal/domain/repository"
	"github.com/oksasatya/go-course-platform/pkg/helpers"
	"github.com/oksasatya/go-course-platform/pkg/mailer"
	mailtpl "github.com/oksasatya/go-course-platform/pkg/mailer/templates"
)

// TokenIssuer mints access tokens; *helpers.TokenIssuer implements it.
type TokenIssuer interface {
	Issue(sub helpers.Subject, roles []string) (string, time.Time, error)
}

// Notifier hands an email job to the delivery pipeline.
type Notifier interface {
	Notify(ctx context.Context, job mailer.EmailJob) error
}

// PictureStorage stores an uploaded image and returns its public URL.
type PictureStorage interface {
	Upload(ctx context.Context, objectPath, contentType string, r io.Reader) (string, error)
}

type AuthService struct {
	Store    repo.CredentialStore
	Tokens   TokenIssuer
	Pictures PictureStorage
	Notifier Notifier
	Logger   *logrus.Logger
}

func NewAuthService(store repo.CredentialStore, tokens TokenIssuer, pictures PictureStorage, notifier Notifier, logger *logrus.Logger) *AuthService {
	return &AuthService{
		Store:    store,
		Tokens:   tokens,
		Pictures: pictures,
		Notifier: notifier,
		Logger:   logger,
	}
}

// variant binds an identity type to the shape its login result takes.
type variant[U entity.Identity, R any] struct {
	kind    entity.UserKind
	project func(u U, token string, exp time.Time) R
}

var regularUsers = variant[*entity.RegularUser, LoggedInUser]{
	kind: entity.KindRegular,
	project: func(u *entity.RegularUser, token string, exp time.Time) LoggedInUser {
		return LoggedInUser{
			LoggedInBase: loggedInBase(&u.Account, token, exp),
			FirstName:    u.FirstName,
			LastName:     u.LastName,
		}
	},
}

var companyUsers = variant[*entity.CompanyUser, LoggedInCompany]{
	kind: entity.KindCompany,
	project: func(u *entity.CompanyUser, token string, exp time.Time) LoggedInCompany {
		return LoggedInCompany{
			LoggedInBase: loggedInBase(&u.Account, token, exp),
			CompanyName:  u.CompanyName,
			Website:      u.Website,
		}
	},
}

func (s *AuthService) LoginRegularUser(ctx context.Context, in LoginInput) (LoggedInUser, error) {
	return login(ctx, s, regularUsers, in)
}

func (s *AuthService) LoginCompany(ctx context.Context, in LoginInput) (LoggedInCompany, error) {
	return login(ctx, s, companyUsers, in)
}

func (s *AuthService) RegisterRegularUser(ctx context.Context, in RegisterUserInput) error {
	u := &entity.RegularUser{
		Account:   in.account(),
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Bio:       in.Bio,
	}
	return register(ctx, s, u, in.Password)
}

func (s *AuthService) RegisterCompanyUser(ctx context.Context, in RegisterCompanyInput) error {
	u := &entity.CompanyUser{
		Account:     in.account(),
		CompanyName: in.CompanyName,
		Website:     in.Website,
		Industry:    in.Industry,
	}
	return register(ctx, s, u, in.Password)
}

func login[U entity.Identity, R any](ctx context.Context, s *AuthService, v variant[U, R], in LoginInput) (R, error) {
	var zero R
	ident, err := s.Store.FindByEmail(ctx, in.Email)
	if errors.Is(err, repo.ErrNotFound) {
		return zero, &UserNotFoundError{Email: in.Email}
	}
	if err != nil {
		s.logError(err, in.Email, "login", "lookup failed")
		return zero, err
	}
	u, ok := ident.(U)
	if !ok {
		// the account exists but is of the other kind
		s.logInfo(in.Email, "login", "variant mismatch", logrus.Fields{"want": v.kind, "got": ident.Kind()})
		return zero, &UserNotFoundError{Email: in.Email}
	}

	valid, err := s.Store.VerifyPassword(ctx, u, in.Password)
	if err != nil {
		s.logError(err, in.Email, "login", "verify password failed")
		return zero, err
	}
	if !valid {
		return zero, ErrInvalidCredentials
	}

	roles, err := s.Store.RolesOf(ctx, u)
	if err != nil {
		s.logError(err, in.Email, "login", "resolve roles failed")
		return zero, err
	}
	acc := u.Base()
	token, exp, err := s.Tokens.Issue(helpers.Subject{
		ID:       acc.ID,
		Email:    acc.Email,
		UserName: acc.UserName,
		Kind:     string(v.kind),
	}, roles)
	if err != nil {
		s.logError(err, in.Email, "login", "issue token failed")
		return zero, err
	}
	return v.project(u, token, exp), nil
}

func register[U entity.Identity](ctx context.Context, s *AuthService, u U, password string) error {
	acc := u.Base()
	res, err := s.Store.CreateIdentity(ctx, u, password)
	if err != nil {
		s.logError(err, acc.Email, "register", "create identity failed")
		return err
	}
	if !res.Succeeded() {
		return refused(ErrRegistrationFailed, res.Errors)
	}
	s.notify(ctx, acc.Email, mailtpl.Welcome, map[string]any{
		"UserName": acc.UserName,
		"Kind":     string(u.Kind()),
	})
	return nil
}

// UpdatePassword changes the password of the account identified by email.
func (s *AuthService) UpdatePassword(ctx context.Context, email, current, next string) error {
	u, err := s.requireUser(ctx, email, "update_password")
	if err != nil {
		return err
	}
	res, err := s.Store.ChangePassword(ctx, u, current, next)
	if err != nil {
		s.logError(err, email, "update_password", "change password failed")
		return err
	}
	if !res.Succeeded() {
		return refused(ErrPasswordUpdateFailed, res.Errors)
	}
	s.notify(ctx, email, mailtpl.PasswordChanged, map[string]any{"UserName": u.Base().UserName})
	return nil
}

func (s *AuthService) DeleteUser(ctx context.Context, email string) error {
	u, err := s.requireUser(ctx, email, "delete_user")
	if err != nil {
		return err
	}
	res, err := s.Store.DeleteIdentity(ctx, u)
	if err != nil {
		s.logError(err, email, "delete_user", "delete identity failed")
		return err
	}
	if !res.Succeeded() {
		return refused(ErrDeletionFailed, res.Errors)
	}
	s.notify(ctx, email, mailtpl.AccountDeleted, map[string]any{"UserName": u.Base().UserName})
	return nil
}

// UpdatePicture uploads a profile picture and stores its URL on the account.
func (s *AuthService) UpdatePicture(ctx context.Context, email string, r io.Reader, filename, contentType string) (string, error) {
	u, err := s.requireUser(ctx, email, "update_picture")
	if err != nil {
		return "", err
	}
	if s.Pictures == nil {
		return "", ErrStorageNotEnabled
	}
	acc := u.Base()
	ext := strings.ToLower(filepath.Ext(filename))
	objectPath := filepath.ToSlash(filepath.Join("pictures", acc.ID, uuid.NewString()+ext))
	url, err := s.Pictures.Upload(ctx, objectPath, contentType, r)
	if err != nil {
		s.logError(err, email, "update_picture", "upload failed")
		return "", err
	}

	acc.PictureURL = url
	res, err := s.Store.UpdateIdentity(ctx, u)
	if err != nil {
		s.logError(err, email, "update_picture", "update identity failed")
		return "", err
	}
	if !res.Succeeded() {
		return "", refused(ErrProfileUpdateFailed, res.Errors)
	}
	return url, nil
}

func (s *AuthService) requireUser(ctx context.Context, email, op string) (entity.Identity, error) {
	if email == "" {
		helpers.LogError(s.Logger, "called without caller email", ErrCallerContract, logrus.Fields{"op": op})
		return nil, ErrCallerContract
	}
	u, err := s.Store.FindByEmail(ctx, email)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, &UserNotFoundError{Email: email}
	}
	if err != nil {
		s.logError(err, email, op, "lookup failed")
		return nil, err
	}
	return u, nil
}

// notify never fails the calling operation.
func (s *AuthService) notify(ctx context.Context, to, template string, data map[string]any) {
	if s.Notifier == nil {
		return
	}
	job := mailer.EmailJob{To: to, Template: template, Data: data}
	if err := s.Notifier.Notify(ctx, job); err != nil {
		s.logError(err, to, "notify", "enqueue email failed")
	}
}

func (s *AuthService) logError(err error, email, op, msg string) {
	helpers.LogError(s.Logger, msg, err, logrus.Fields{"email": email, "op": op})
}

func (s *AuthService) logInfo(email, op, msg string, extra logrus.Fields) {
	fields := logrus.Fields{"email": email, "op": op}
	for k, v := range extra {
		fields[k] = v
	}
	helpers.LogInfo(s.Logger, msg, fields)
}
