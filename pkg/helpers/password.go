package helpers

import (
	"fmt"
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

// PasswordPolicy lists the rules a new password must satisfy.
type PasswordPolicy struct {
	MinLength              int
	RequireDigit           bool
	RequireLowercase       bool
	RequireUppercase       bool
	RequireNonAlphanumeric bool
}

func DefaultPasswordPolicy() PasswordPolicy {
	return PasswordPolicy{
		MinLength:              4,
		RequireDigit:           true,
		RequireLowercase:       true,
		RequireUppercase:       true,
		RequireNonAlphanumeric: true,
	}
}

// Validate returns the violated rules as user-facing sentences, always in the
// same order. A nil result means the password is acceptable.
func (p PasswordPolicy) Validate(pw string) []string {
	var digit, lower, upper, other bool
	n := 0
	for _, r := range pw {
		n++
		switch {
		case unicode.IsDigit(r):
			digit = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		case !unicode.IsLetter(r):
			other = true
		}
	}

	var reasons []string
	if n < p.MinLength {
		reasons = append(reasons, fmt.Sprintf("Passwords must be at least %d characters.", p.MinLength))
	}
	if p.RequireNonAlphanumeric && !other {
		reasons = append(reasons, "Passwords must have at least one non alphanumeric character.")
	}
	if p.RequireDigit && !digit {
		reasons = append(reasons, "Passwords must have at least one digit ('0'-'9').")
	}
	if p.RequireLowercase && !lower {
		reasons = append(reasons, "Passwords must have at least one lowercase ('a'-'z').")
	}
	if p.RequireUppercase && !upper {
		reasons = append(reasons, "Passwords must have at least one uppercase ('A'-'Z').")
	}
	return reasons
}

// HashPassword hashes the plain text password using bcrypt
func HashPassword(plain string) (string, error) {
	return HashPasswordWithCost(plain, bcrypt.DefaultCost)
}

// HashPasswordWithCost is HashPassword with an explicit bcrypt cost.
// Costs outside bcrypt's range fall back to the default.
func HashPasswordWithCost(plain string, cost int) (string, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	b, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// CompareHashAndPassword compares a bcrypt hash with a plain password
func CompareHashAndPassword(hash string, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
