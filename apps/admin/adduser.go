package main

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/trezcool/gradeportal/core/user"
)

// addUser updates or creates an approved user.User
func (cli *commandLine) addUser(nu user.NewUser) error {
	if err := nu.Validate(cli.validate); err != nil {
		return cli.describe(err)
	}
	if _, err := cli.usrSvc.AddUser(context.Background(), nu); err != nil {
		return err
	}
	return nil
}

// describe turns validation errors into a readable error.
func (cli *commandLine) describe(err error) error {
	vErrs, ok := errors.Cause(err).(validator.ValidationErrors)
	if !ok {
		return err
	}
	msg := "invalid user:"
	for _, vErr := range vErrs {
		msg += " " + vErr.Field() + ": " + vErr.Translate(cli.translator) + ";"
	}
	return errors.New(msg)
}
