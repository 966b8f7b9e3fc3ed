package service

import (
	"context"
	"testing"

	"shareit/internal/domain"
	"shareit/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserServiceCRUD(t *testing.T) {
	db := newTestDB(t)
	logger := zerolog.Nop()
	svc := NewUserService(db, &logger)
	ctx := context.Background()

	alice, err := svc.Create(ctx, &models.User{Name: "Alice", Email: "alice@example.com"})
	require.NoError(t, err)
	assert.NotZero(t, alice.ID)

	got, err := svc.Get(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alice", got.Name)

	_, err = svc.Get(ctx, 9999)
	assert.True(t, domain.IsNotFound(err))

	name := "Alice B"
	updated, err := svc.Update(ctx, alice.ID, models.UserPatch{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Alice B", updated.Name)
	assert.Equal(t, "alice@example.com", updated.Email)

	users, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1)

	require.NoError(t, svc.Delete(ctx, alice.ID))
	assert.True(t, domain.IsNotFound(svc.Delete(ctx, alice.ID)))
}

func TestUserServiceDuplicateEmail(t *testing.T) {
	db := newTestDB(t)
	logger := zerolog.Nop()
	svc := NewUserService(db, &logger)
	ctx := context.Background()

	_, err := svc.Create(ctx, &models.User{Name: "Alice", Email: "alice@example.com"})
	require.NoError(t, err)

	_, err = svc.Create(ctx, &models.User{Name: "Fake", Email: "alice@example.com"})
	assert.True(t, domain.IsDuplicateEmail(err))

	bob, err := svc.Create(ctx, &models.User{Name: "Bob", Email: "bob@example.com"})
	require.NoError(t, err)

	taken := "alice@example.com"
	_, err = svc.Update(ctx, bob.ID, models.UserPatch{Email: &taken})
	assert.True(t, domain.IsDuplicateEmail(err))
}
