package main

import (
	"time"

	"github.com/bunkmate-io/bunkmate/core"
	"github.com/bunkmate-io/bunkmate/core/user"
)

// addUser updates or creates a user.User
func (cli *commandLine) addUser(uname, email, pwd string, isAdmin bool) error {
	uname = core.CleanString(uname, true /* lower */)
	email = core.CleanString(email, true /* lower */)

	usr, err := cli.usrRepo.GetUserByUsernameOrEmail(uname)
	if err != nil {
		if err != user.ErrNotFound {
			return err
		}
		usr = user.User{
			Name:     uname,
			Username: uname,
			Email:    email,
			Roles:    []string{user.RoleStudent},
		}
	}
	if isAdmin {
		usr.Roles = user.AllRoles
	}
	if err := usr.SetPassword(pwd); err != nil {
		return err
	}

	now := time.Now().UTC()
	usr.UpdatedAt = now
	isActive := true
	if usr.ID == "" {
		usr.IsActive = true
		usr.CreatedAt = now
		_, err = cli.usrRepo.CreateUser(usr)
		return err
	}
	_, err = cli.usrRepo.UpdateUser(usr, &isActive)
	return err
}
