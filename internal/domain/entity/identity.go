package entity

import (
	"time"
)

// UserKind tags the concrete account variant. It is chosen at registration
// and never changes afterwards.
type UserKind string

const (
	KindRegular UserKind = "regular"
	KindCompany UserKind = "company"
)

func (k UserKind) Valid() bool {
	return k == KindRegular || k == KindCompany
}

type Address struct {
	Street  string
	City    string
	Country string
}

// Account is the identity shape shared by every variant.
// The password hash and the role set are owned by the credential store and
// are intentionally not carried here.
type Account struct {
	ID          string
	Email       string
	UserName    string
	PhoneNumber string
	PictureURL  string
	Address     Address
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Base gives variants access to the shared account fields.
func (a *Account) Base() *Account { return a }

// Identity is implemented by *RegularUser and *CompanyUser only.
type Identity interface {
	Kind() UserKind
	Base() *Account
}

// RegularUser is a learner account.
type RegularUser struct {
	Account
	FirstName string
	LastName  string
	Bio       string
}

func (*RegularUser) Kind() UserKind { return KindRegular }

// CompanyUser is an organization account that publishes courses.
type CompanyUser struct {
	Account
	CompanyName string
	Website     string
	Industry    string
}

func (*CompanyUser) Kind() UserKind { return KindCompany }

var (
	_ Identity = (*RegularUser)(nil)
	_ Identity = (*CompanyUser)(nil)
)
