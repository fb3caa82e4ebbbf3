package service_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/repo/repotest"
	"github.com/Skotchmaster/storefront/internal/service"
)

// requireOneDefault checks the default-address invariant for a user.
func (e *env) requireOneDefault(t *testing.T, userID uint) uuid.UUID {
	t.Helper()

	items, err := e.Repo.ListAddresses(context.Background(), userID)
	require.NoError(t, err)

	var defaults []uuid.UUID
	for _, a := range items {
		if a.DefaultAddress {
			defaults = append(defaults, a.ID)
		}
	}
	if len(items) == 0 {
		require.Empty(t, defaults)
		return uuid.Nil
	}
	require.Len(t, defaults, 1)
	return defaults[0]
}

func TestCreateAddress_FirstBecomesDefault(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	ctx := context.Background()
	u := e.user(t, "uma")

	first, err := e.Address.CreateAddress(ctx, u.ID, addressReq("First 1"))
	require.NoError(t, err)
	assert.True(t, first.DefaultAddress)

	second, err := e.Address.CreateAddress(ctx, u.ID, addressReq("Second 2"))
	require.NoError(t, err)
	assert.False(t, second.DefaultAddress)
	assert.Equal(t, first.ID, e.requireOneDefault(t, u.ID))

	req := addressReq("Third 3")
	req.DefaultAddress = true
	third, err := e.Address.CreateAddress(ctx, u.ID, req)
	require.NoError(t, err)
	assert.True(t, third.DefaultAddress)
	assert.Equal(t, third.ID, e.requireOneDefault(t, u.ID))

	list, err := e.Address.GetAddresses(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, list.TotalAddresses)
	assert.Equal(t, u.ID, list.UserID)

	_, err = e.Address.CreateAddress(ctx, 4242, addressReq("Nobody 0"))
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestSetDefaultAddress_MovesFlag(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	ctx := context.Background()
	u := e.user(t, "vic")

	a, err := e.Address.CreateAddress(ctx, u.ID, addressReq("A street"))
	require.NoError(t, err)
	b, err := e.Address.CreateAddress(ctx, u.ID, addressReq("B street"))
	require.NoError(t, err)
	require.True(t, a.DefaultAddress)
	require.False(t, b.DefaultAddress)

	got, err := e.Address.SetDefaultAddress(ctx, u.ID, b.ID)
	require.NoError(t, err)
	assert.True(t, got.DefaultAddress)
	assert.Equal(t, b.ID, e.requireOneDefault(t, u.ID))

	stored, err := e.Repo.GetAddress(ctx, a.ID)
	require.NoError(t, err)
	assert.False(t, stored.DefaultAddress)

	def, err := e.Address.GetDefaultAddress(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, b.ID, def.ID)
}

func TestSetDefaultAddress_Rejects(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	ctx := context.Background()
	u := e.user(t, "walt")
	other := e.user(t, "xena")

	// user without addresses
	_, err := e.Address.SetDefaultAddress(ctx, u.ID, uuid.New())
	assert.ErrorIs(t, err, service.ErrNotFound)

	mine, err := e.Address.CreateAddress(ctx, u.ID, addressReq("Mine 1"))
	require.NoError(t, err)
	theirs, err := e.Address.CreateAddress(ctx, other.ID, addressReq("Theirs 1"))
	require.NoError(t, err)

	_, err = e.Address.SetDefaultAddress(ctx, u.ID, theirs.ID)
	assert.ErrorIs(t, err, service.ErrNotFound)
	_, err = e.Address.SetDefaultAddress(ctx, 999, mine.ID)
	assert.ErrorIs(t, err, service.ErrNotFound)
	_, err = e.Address.SetDefaultAddress(ctx, u.ID, uuid.New())
	assert.ErrorIs(t, err, service.ErrNotFound)

	assert.Equal(t, mine.ID, e.requireOneDefault(t, u.ID))
	assert.Equal(t, theirs.ID, e.requireOneDefault(t, other.ID))
}

func TestUpdateAddress(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	ctx := context.Background()
	u := e.user(t, "yara")

	a, err := e.Address.CreateAddress(ctx, u.ID, addressReq("Old street"))
	require.NoError(t, err)
	b, err := e.Address.CreateAddress(ctx, u.ID, addressReq("Other street"))
	require.NoError(t, err)

	req := addressReq("New street")
	req.DefaultAddress = true
	up, err := e.Address.UpdateAddress(ctx, u.ID, b.ID, req)
	require.NoError(t, err)
	assert.Equal(t, "New street", up.Street)
	assert.True(t, up.DefaultAddress)
	assert.Equal(t, b.ID, e.requireOneDefault(t, u.ID))

	// clearing the flag on the current default is ignored
	req.DefaultAddress = false
	up, err = e.Address.UpdateAddress(ctx, u.ID, b.ID, req)
	require.NoError(t, err)
	assert.True(t, up.DefaultAddress)
	assert.Equal(t, b.ID, e.requireOneDefault(t, u.ID))

	_, err = e.Address.UpdateAddress(ctx, u.ID, uuid.New(), req)
	assert.ErrorIs(t, err, service.ErrNotFound)

	other := e.user(t, "zack")
	_, err = e.Address.UpdateAddress(ctx, other.ID, a.ID, req)
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestDeleteAddress_PromotesRemaining(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	ctx := context.Background()
	u := e.user(t, "abby")

	a, err := e.Address.CreateAddress(ctx, u.ID, addressReq("Main 1"))
	require.NoError(t, err)
	b, err := e.Address.CreateAddress(ctx, u.ID, addressReq("Main 2"))
	require.NoError(t, err)

	require.NoError(t, e.Address.DeleteAddress(ctx, u.ID, a.ID))
	assert.Equal(t, b.ID, e.requireOneDefault(t, u.ID))

	require.NoError(t, e.Address.DeleteAddress(ctx, u.ID, b.ID))
	assert.Equal(t, uuid.Nil, e.requireOneDefault(t, u.ID))

	err = e.Address.DeleteAddress(ctx, u.ID, b.ID)
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestGetDefaultAddress(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	ctx := context.Background()
	u := e.user(t, "ben")

	_, err := e.Address.GetDefaultAddress(ctx, u.ID)
	require.ErrorIs(t, err, service.ErrNotFound)

	a, err := e.Address.CreateAddress(ctx, u.ID, addressReq("Only 1"))
	require.NoError(t, err)

	// flag removed behind the service's back
	require.NoError(t, e.Repo.DB.Model(&models.Address{}).Where("id = ?", a.ID).Update("default_address", false).Error)

	def, err := e.Address.GetDefaultAddress(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, a.ID, def.ID)
}

func TestPostgres_ConcurrentFirstAddresses(t *testing.T) {
	e := newEnvOn(t, &repo.GormRepo{DB: repotest.OpenPostgres(t)})
	ctx := context.Background()
	u := e.user(t, "xena")

	var wg sync.WaitGroup
	for i := 0; i < 6; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := e.Address.CreateAddress(ctx, u.ID, addressReq(fmt.Sprintf("Race Road %d", i)))
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	list, err := e.Address.GetAddresses(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, 6, list.TotalAddresses)
	e.requireOneDefault(t, u.ID)
}
