package main

import (
	"context"
	"fmt"

	"github.com/AI-Fit-GMS/gms/core"
	"github.com/AI-Fit-GMS/gms/core/user"
)

// addUser creates an active user; admins get the owner role.
func (cli *commandLine) addUser(name, email, pwd string, isAdmin bool) error {
	email = core.CleanString(email, true /* lower */)
	if name = core.CleanString(name); name == "" {
		name = email
	}
	roles := []string{user.RoleMember}
	if isAdmin {
		roles = []string{user.RoleAdminOwner}
	}

	usr, err := cli.usrSvc.Create(context.Background(), user.NewUser{
		Name:            name,
		Email:           email,
		Password:        pwd,
		PasswordConfirm: pwd,
		Roles:           roles,
	})
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(cli.out, "user %s created (%s)\n", usr.Email, usr.ID)
	return err
}

func (cli *commandLine) resetPassword(email, pwd string) error {
	ctx := context.Background()
	usr, err := cli.usrSvc.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	return cli.usrSvc.SetPassword(ctx, usr.ID, pwd)
}
