package main

import (
	"context"
	"time"

	"github.com/mwangaza/darasa/core"
	"github.com/mwangaza/darasa/core/user"
)

// addUser updates or creates a user.User, matching on email.
func (cli *commandLine) addUser(email, name, schoolID, pwd string, isAdmin bool) error {
	role := user.RoleTeacher
	if isAdmin {
		role = user.RoleAdmin
	}
	nu := user.NewUser{
		Email:    email,
		Name:     name,
		Role:     role,
		SchoolID: schoolID,
		Password: pwd,
	}
	validate, _ := core.NewValidator()
	if err := nu.Validate(validate); err != nil {
		return err
	}

	now := time.Now().UTC()
	usr := user.User{
		Email:     nu.Email,
		Name:      nu.Name,
		Role:      nu.Role,
		SchoolID:  nu.SchoolID,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := usr.SetPassword(nu.Password); err != nil {
		return err
	}
	_, err := cli.usrRepo.UpdateOrCreateUser(context.Background(), usr)
	return err
}
