package user_test

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/gradeportal/core/user"
	"github.com/trezcool/gradeportal/tests"
)

func TestNewUser_Validate(t *testing.T) {
	validate, translator := testutil.NewValidator()

	valid := func() user.NewUser {
		return user.NewUser{
			Username:  "jdoe",
			Password:  "S3cure!Pwd",
			FirstName: "John",
			LastName:  "Doe",
			Email:     "jdoe@example.com",
			Role:      user.RoleTeacher,
		}
	}

	tests := []struct {
		name    string
		mutate  func(nu *user.NewUser)
		wantFld string
		wantMsg string
	}{
		{name: "valid"},
		{name: "password too short", mutate: func(nu *user.NewUser) { nu.Password = "a1!" }, wantFld: "password", wantMsg: "password must contain at least 6 characters"},
		{name: "password with whitespace", mutate: func(nu *user.NewUser) { nu.Password = "S3cure Pwd" }, wantFld: "password", wantMsg: "password must not contain whitespace"},
		{name: "numeric password", mutate: func(nu *user.NewUser) { nu.Password = "123456" }, wantFld: "password", wantMsg: "password cannot be entirely numeric"},
		{name: "password similar to username", mutate: func(nu *user.NewUser) { nu.Username = "jdoe2024"; nu.Password = "jdoe2024!" }, wantFld: "password", wantMsg: "password cannot be similar to user attributes"},
		{name: "unknown role", mutate: func(nu *user.NewUser) { nu.Role = "JANITOR" }, wantFld: "role"},
		{name: "missing first name", mutate: func(nu *user.NewUser) { nu.FirstName = "   " }, wantFld: "first_name"},
		{name: "invalid email", mutate: func(nu *user.NewUser) { nu.Email = "not-an-email" }, wantFld: "email"},
		{name: "invalid username", mutate: func(nu *user.NewUser) { nu.Username = "j doe" }, wantFld: "username"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nu := valid()
			if tt.mutate != nil {
				tt.mutate(&nu)
			}
			err := nu.Validate(validate)
			if tt.wantFld == "" {
				assert.NoError(t, err)
				return
			}

			var verrs validator.ValidationErrors
			require.ErrorAs(t, err, &verrs)
			found := false
			for _, fe := range verrs {
				if fe.Field() == tt.wantFld {
					found = true
					if tt.wantMsg != "" {
						assert.Equal(t, tt.wantMsg, fe.Translate(translator))
					}
				}
			}
			assert.True(t, found, "no error on %q: %v", tt.wantFld, err)
		})
	}
}

func TestNewUser_Validate_cleans(t *testing.T) {
	validate, _ := testutil.NewValidator()
	nu := user.NewUser{
		Username:  "  JDoe ",
		Password:  "S3cure!Pwd",
		FirstName: " John ",
		LastName:  "Doe",
		Email:     " JDoe@Example.com ",
		Role:      " STUDENT ",
	}
	require.NoError(t, nu.Validate(validate))
	assert.Equal(t, "JDoe", nu.Username) // case preserved
	assert.Equal(t, "John", nu.FirstName)
	assert.Equal(t, "jdoe@example.com", nu.Email)
	assert.Equal(t, user.RoleStudent, nu.Role)
}
