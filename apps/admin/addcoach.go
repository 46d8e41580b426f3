package main

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/mwongozo/backend/core"
	"github.com/mwongozo/backend/core/user"
)

// addCoach updates or creates a coach account.
func (cli *commandLine) addCoach(name, email, pwd string, isAdmin bool) error {
	ctx := context.Background()
	email = core.CleanString(email, true /* lower */)

	now := time.Now().UTC()
	create := false
	usr, err := cli.usrRepo.GetUser(ctx, user.GetFilter{Email: email})
	if err != nil {
		if errors.Cause(err) != user.ErrNotFound {
			return err
		}
		create = true
		usr = user.User{
			Name:      core.CleanString(name),
			Email:     email,
			CreatedAt: now,
		}
	}

	usr.Roles = user.CoachRoles
	if isAdmin {
		usr.Roles = append(usr.Roles, user.AdminRoles...)
	}
	active := true
	usr.IsActive = &active
	usr.UpdatedAt = now
	if err := usr.SetPassword(pwd); err != nil {
		return err
	}

	if create {
		_, err = cli.usrRepo.CreateUser(ctx, usr)
	} else {
		_, err = cli.usrRepo.UpdateUser(ctx, usr)
	}
	return err
}
