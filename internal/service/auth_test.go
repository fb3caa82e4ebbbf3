package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/mykafka"
	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/pkg/tokens"
)

func TestRoleNames(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{name: "none", in: nil, want: []string{models.RoleUser}},
		{name: "admin", in: []string{"admin"}, want: []string{models.RoleAdmin}},
		{name: "seller and user", in: []string{"Seller", "user"}, want: []string{models.RoleSeller, models.RoleUser}},
		{name: "unknown", in: []string{"root", "guest"}, want: []string{models.RoleUser}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, service.RoleNames(tt.in))
		})
	}
}

func TestSignupSignin(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	ctx := context.Background()

	res, err := e.Auth.Signup(ctx, transport.SignupRequest{
		Username: "shopper",
		Email:    "shopper@example.com",
		Password: "secret123",
		Roles:    []string{"seller"},
	})
	require.NoError(t, err)
	assert.NotZero(t, res.ID)
	assert.Equal(t, "User registered successfully!", res.Message)
	assert.Equal(t, []string{mykafka.EventUserRegistered}, e.eventTypes(mykafka.TopicUser))

	_, err = e.Auth.Signup(ctx, transport.SignupRequest{Username: "SHOPPER", Email: "other@example.com", Password: "secret123"})
	require.ErrorIs(t, err, service.ErrConflict)
	assert.Contains(t, err.Error(), "Username SHOPPER is already taken")

	_, err = e.Auth.Signup(ctx, transport.SignupRequest{Username: "other", Email: "Shopper@Example.com", Password: "secret123"})
	require.ErrorIs(t, err, service.ErrConflict)

	_, err = e.Auth.Signin(ctx, transport.SigninRequest{Username: "shopper", Password: "wrong"})
	require.ErrorIs(t, err, service.ErrUnauthenticated)
	_, err = e.Auth.Signin(ctx, transport.SigninRequest{Username: "nobody", Password: "secret123"})
	require.ErrorIs(t, err, service.ErrUnauthenticated)

	in, err := e.Auth.Signin(ctx, transport.SigninRequest{Username: "shopper", Password: "secret123"})
	require.NoError(t, err)
	assert.Equal(t, res.ID, in.User.ID)
	assert.Equal(t, []string{models.RoleSeller}, in.User.Roles)

	claims, err := tokens.AccessClaimsFromToken(in.Token, e.Auth.JWTSecret)
	require.NoError(t, err)
	assert.Equal(t, "shopper", claims.Subject)
	assert.Equal(t, []string{models.RoleSeller}, claims.Roles)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt.Time, 5*time.Second)

	id, roles, err := e.Auth.ResolveUser(ctx, claims.Subject)
	require.NoError(t, err)
	assert.Equal(t, res.ID, id)
	assert.Equal(t, []string{models.RoleSeller}, roles)

	me, err := e.Auth.AccountDetails(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "shopper@example.com", me.Email)
}

func TestLogout_RevokesToken(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	ctx := context.Background()

	_, err := e.Auth.Signup(ctx, transport.SignupRequest{Username: "leaver", Email: "leaver@example.com", Password: "secret123"})
	require.NoError(t, err)
	in, err := e.Auth.Signin(ctx, transport.SigninRequest{Username: "leaver", Password: "secret123"})
	require.NoError(t, err)

	revoked, err := e.Denylist.Revoked(ctx, in.Claims.ID)
	require.NoError(t, err)
	require.False(t, revoked)

	require.NoError(t, e.Auth.Logout(ctx, in.Claims))

	revoked, err = e.Denylist.Revoked(ctx, in.Claims.ID)
	require.NoError(t, err)
	assert.True(t, revoked)

	require.NoError(t, e.Auth.Logout(ctx, nil))
}

func TestResolveUser_Missing(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	_, _, err := e.Auth.ResolveUser(context.Background(), "ghost")
	assert.ErrorIs(t, err, service.ErrUnauthenticated)
}
