package main

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/pkg/errors"

	"github.com/trezcool/gradeportal/core"
	"github.com/trezcool/gradeportal/core/subject"
	"github.com/trezcool/gradeportal/core/user"
)

const defaultAdminUsername = "admin"

var (
	defaultSubjects = []string{
		"Mathematics", "English", "Science", "History",
		"Physical Education", "Computer Science", "Art", "Music",
	}

	seedMaxElapsedTime = 30 * time.Second
)

// seed creates the default admin & subjects. Existing records are left untouched.
// Unavailable storage errors are retried with exponential backoff.
func (cli *commandLine) seed(adminUname, pwd string) error {
	ctx := context.Background()
	_, err := backoff.Retry(
		ctx,
		func() (struct{}, error) {
			err := cli.seedOnce(ctx, adminUname, pwd)
			if err != nil && !core.IsUnavailable(err) {
				return struct{}{}, backoff.Permanent(err)
			}
			return struct{}{}, err
		},
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxElapsedTime(seedMaxElapsedTime),
	)
	return err
}

func (cli *commandLine) seedOnce(ctx context.Context, adminUname, pwd string) error {
	if _, err := cli.usrSvc.GetByUsername(ctx, adminUname); err != nil {
		if errors.Cause(err) != user.ErrNotFound {
			return errors.Wrap(err, "finding default admin")
		}
		err = cli.addUser(user.NewUser{
			Username:  adminUname,
			Password:  pwd,
			FirstName: "System",
			LastName:  "Administrator",
			Role:      user.RoleAdmin,
		})
		if err != nil {
			return errors.Wrap(err, "creating default admin")
		}
		logger.Printf("created admin %q", adminUname)
	}

	for _, name := range defaultSubjects {
		_, created, err := cli.subjectSvc.GetOrCreate(ctx, subject.NewSubject{
			Name:        name,
			Description: "Default " + name + " course",
		})
		if err != nil {
			return errors.Wrapf(err, "creating subject %q", name)
		}
		if created {
			logger.Printf("created subject %q", name)
		}
	}
	return nil
}
