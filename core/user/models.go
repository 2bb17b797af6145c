package user

import (
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"

	"github.com/mwangaza/darasa/core"
)

// Roles
const (
	RoleTeacher = "teacher"
	RoleAdmin   = "admin"
)

type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	Role         string    `json:"role"`
	SchoolID     string    `json:"schoolId"`
	IsActive     bool      `json:"isActive"`
	PasswordHash []byte    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"` // UTC
	UpdatedAt    time.Time `json:"updatedAt"` // UTC
}

func (u *User) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return nil
}

func (u *User) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(pwd))
}

func (u *User) IsTeacher() bool {
	return u.Role == RoleTeacher
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

func (u *User) Identity() Identity {
	return Identity{UserID: u.ID, Role: u.Role, SchoolID: u.SchoolID}
}

// Identity is the authenticated caller extracted from a verified credential.
// It is the only thing the domain services trust for tenancy & ownership checks.
type Identity struct {
	UserID   string
	Role     string
	SchoolID string
}

// NewUser contains information needed to create a new User.
type NewUser struct {
	Email    string `json:"email" validate:"required,email"`
	Name     string `json:"name" validate:"required"`
	Role     string `json:"role" validate:"required,oneof=teacher admin"`
	SchoolID string `json:"schoolId" validate:"required,uuid4"`
	Password string `json:"password" validate:"required"`
}

func (nu *NewUser) Validate(validate *validator.Validate) error {
	nu.Email = core.CleanString(nu.Email, true /* lower */)
	nu.Name = core.CleanString(nu.Name)
	nu.Role = core.CleanString(nu.Role, true /* lower */)
	return validate.Struct(nu)
}
