package main

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/mwongozo/backend/core/user"
)

// resetPassword replaces the password of the account matching uname,
// which may be a username or an email address.
func (cli *commandLine) resetPassword(uname, pwd string) error {
	ctx := context.Background()
	usr, err := cli.usrRepo.GetUser(ctx, user.GetFilter{UsernameOrEmail: uname})
	if err != nil {
		return errors.Wrapf(err, "looking up %q", uname)
	}
	if err = usr.SetPassword(pwd); err != nil {
		return err
	}
	usr.UpdatedAt = time.Now().UTC()
	_, err = cli.usrRepo.UpdateUser(ctx, usr)
	return err
}
