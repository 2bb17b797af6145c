package user

import (
	"context"
	"errors"
	"time"

	"github.com/mwangaza/darasa/core"
)

var (
	// errors
	ErrNotFound    = errors.New("user not found")
	ErrEmailExists = errors.New("a user with this email already exists")
)

type (
	Repository interface {
		CreateUser(ctx context.Context, usr User) (User, error)
		GetUserByID(ctx context.Context, id string) (User, error)
		GetUserByEmail(ctx context.Context, email string) (User, error)
		// UpdateOrCreateUser matches on User.Email.
		UpdateOrCreateUser(ctx context.Context, usr User) (User, error)
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) Create(ctx context.Context, nu NewUser) (User, error) {
	now := time.Now().UTC()
	usr := User{
		Email:     nu.Email,
		Name:      nu.Name,
		Role:      nu.Role,
		SchoolID:  nu.SchoolID,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := usr.SetPassword(nu.Password); err != nil {
		return User{}, err
	}
	return svc.repo.CreateUser(ctx, usr)
}

func (svc *Service) GetByID(ctx context.Context, id string) (User, error) {
	return svc.repo.GetUserByID(ctx, id)
}

func (svc *Service) GetByEmail(ctx context.Context, email string) (User, error) {
	return svc.repo.GetUserByEmail(ctx, core.CleanString(email, true /* lower */))
}

// Authenticate resolves the account for a login attempt.
//
// NOTE: password verification is a placeholder; any password is accepted for a
// known active account. User.CheckPassword exists and must be wired in here
// before this runs anywhere beyond prototyping.
func (svc *Service) Authenticate(ctx context.Context, email, _ string) (User, error) {
	usr, err := svc.GetByEmail(ctx, email)
	if err != nil {
		return User{}, err
	}
	if !usr.IsActive {
		// deactivated accounts are indistinguishable from unknown ones
		return User{}, ErrNotFound
	}
	return usr, nil
}
