package application

import (
	"time"

	"github.com/oksasatya/go-course-platform/internal/domain/entity"
)

type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type AddressDTO struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	Country string `json:"country"`
}

func (a AddressDTO) entity() entity.Address {
	return entity.Address{Street: a.Street, City: a.City, Country: a.Country}
}

func addressDTO(a entity.Address) AddressDTO {
	return AddressDTO{Street: a.Street, City: a.City, Country: a.Country}
}

// RegisterBase holds the fields every registration carries. Password rules
// are enforced by the credential store, not by binding.
type RegisterBase struct {
	Email       string     `json:"email" binding:"required,email"`
	UserName    string     `json:"user_name" binding:"required,username"`
	Password    string     `json:"password" binding:"required"`
	PhoneNumber string     `json:"phone_number" binding:"omitempty,phone"`
	Address     AddressDTO `json:"address"`
}

func (r RegisterBase) account() entity.Account {
	return entity.Account{
		Email:       r.Email,
		UserName:    r.UserName,
		PhoneNumber: r.PhoneNumber,
		Address:     r.Address.entity(),
	}
}

type RegisterUserInput struct {
	RegisterBase
	FirstName string `json:"first_name" binding:"required"`
	LastName  string `json:"last_name" binding:"required"`
	Bio       string `json:"bio"`
}

type RegisterCompanyInput struct {
	RegisterBase
	CompanyName string `json:"company_name" binding:"required"`
	Website     string `json:"website" binding:"omitempty,url"`
	Industry    string `json:"industry"`
}

type UpdatePasswordInput struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required"`
}

// LoggedInBase is the part of a login result shared by both variants.
type LoggedInBase struct {
	UserName   string     `json:"user_name"`
	Email      string     `json:"email"`
	PictureURL string     `json:"picture_url,omitempty"`
	Address    AddressDTO `json:"address"`
	Token      string     `json:"token"`
	ExpiresAt  time.Time  `json:"expires_at"`
}

type LoggedInUser struct {
	LoggedInBase
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type LoggedInCompany struct {
	LoggedInBase
	CompanyName string `json:"company_name"`
	Website     string `json:"website,omitempty"`
}

func loggedInBase(a *entity.Account, token string, exp time.Time) LoggedInBase {
	return LoggedInBase{
		UserName:   a.UserName,
		Email:      a.Email,
		PictureURL: a.PictureURL,
		Address:    addressDTO(a.Address),
		Token:      token,
		ExpiresAt:  exp,
	}
}
