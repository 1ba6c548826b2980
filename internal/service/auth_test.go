package service

import (
	"context"
	"testing"

	"github.com/sergioamr/farm-management/internal/apperror"
	"github.com/sergioamr/farm-management/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func registerInput() RegisterInput {
	return RegisterInput{
		Username:  "maria",
		Email:     " Maria@Farm.com ",
		Password:  "secret123",
		FirstName: "Maria",
	}
}

func TestRegister(t *testing.T) {
	f := newFixture(t)

	user, err := f.auth.Register(context.Background(), registerInput())
	require.NoError(t, err)

	assert.NotEmpty(t, user.ID)
	assert.Equal(t, "maria@farm.com", user.Email)
	assert.Equal(t, model.RoleUser, user.Role)
	assert.True(t, user.IsActive)
	assert.NotEqual(t, "secret123", user.Password)
}

func TestRegisterDuplicate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.auth.Register(ctx, registerInput())
	require.NoError(t, err)

	var dup *apperror.DuplicateError
	in := registerInput()
	in.Email = "other@farm.com"
	_, err = f.auth.Register(ctx, in)
	assert.ErrorAs(t, err, &dup, "same username")

	in = registerInput()
	in.Username = "someone"
	_, err = f.auth.Register(ctx, in)
	assert.ErrorAs(t, err, &dup, "same email")
}

func TestRegisterValidation(t *testing.T) {
	f := newFixture(t)
	in := registerInput()
	in.Password = "123"
	in.Role = "owner"

	_, err := f.auth.Register(context.Background(), in)
	var ve *apperror.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Len(t, ve.Fields, 2)
}

func TestLogin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	user, err := f.auth.Register(ctx, registerInput())
	require.NoError(t, err)
	require.Nil(t, user.LastLogin)

	res, err := f.auth.Login(ctx, LoginInput{Email: "MARIA@farm.com", Password: "secret123"})
	require.NoError(t, err)
	assert.Equal(t, "token-"+user.ID+"-user", res.Token)
	assert.NotNil(t, res.User.LastLogin)

	profile, err := f.auth.Profile(ctx, user.ID)
	require.NoError(t, err)
	assert.NotNil(t, profile.LastLogin)
}

func TestLoginRejections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	user, err := f.auth.Register(ctx, registerInput())
	require.NoError(t, err)

	_, err = f.auth.Login(ctx, LoginInput{Email: "maria@farm.com", Password: "wrong-password"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = f.auth.Login(ctx, LoginInput{Email: "nobody@farm.com", Password: "secret123"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = f.auth.users.UpdateByID(ctx, user.ID, map[string]interface{}{"is_active": false})
	require.NoError(t, err)
	_, err = f.auth.Login(ctx, LoginInput{Email: "maria@farm.com", Password: "secret123"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = f.auth.Login(ctx, LoginInput{Email: "not-an-email"})
	var ve *apperror.ValidationError
	assert.ErrorAs(t, err, &ve)
}

func TestEnsureAdmin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	in := registerInput()
	in.Username = "admin"
	in.Email = "admin@farm.com"

	user, created, err := f.auth.EnsureAdmin(ctx, in)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, model.RoleAdmin, user.Role)

	_, created, err = f.auth.EnsureAdmin(ctx, in)
	require.NoError(t, err)
	assert.False(t, created)
}
