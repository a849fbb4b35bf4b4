package users

import (
	"context"
	"testing"

	"github.com/dmitrijs2005/starterkit/internal/common"
	"github.com/dmitrijs2005/starterkit/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()

	u := sampleUser()
	_, err := repo.Create(ctx, u)
	require.NoError(t, err)

	dup := sampleUser()
	dup.ID, dup.Email = "u-2", "ANN@example.org"
	_, err = repo.Create(ctx, dup)
	assert.ErrorIs(t, err, common.ErrAlreadyExists)

	got, err := repo.GetByEmail(ctx, "Ann@Example.org")
	require.NoError(t, err)
	assert.Equal(t, "u-1", got.ID)

	got.Name = "mutated"
	again, err := repo.GetByID(ctx, "u-1")
	require.NoError(t, err)
	assert.Equal(t, "Ann", again.Name, "callers get copies")

	bio := "hello"
	updated, err := repo.Update(ctx, "u-1", models.UserUpdate{Bio: &bio})
	require.NoError(t, err)
	assert.Equal(t, "hello", updated.Bio)
	assert.True(t, updated.UpdatedAt.After(u.UpdatedAt))

	_, err = repo.Update(ctx, "u-9", models.UserUpdate{Bio: &bio})
	assert.ErrorIs(t, err, common.ErrorNotFound)

	require.NoError(t, repo.Delete(ctx, "u-1"))
	_, err = repo.GetByEmail(ctx, u.Email)
	assert.ErrorIs(t, err, common.ErrorNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, "u-1"), common.ErrorNotFound)
}
