package repository

import (
	"context"
	"testing"

	"github.com/Samuel009-alt/heart-rate-app/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryReadingStore_SaveAndFetch(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryReadingStore()

	_, err := s.SaveReading(ctx, "u1", models.Reading{BPM: 70, Timestamp: 1})
	require.NoError(t, err)
	_, err = s.SaveReading(ctx, "u1", models.Reading{BPM: 80, Timestamp: 2})
	require.NoError(t, err)
	_, err = s.SaveReading(ctx, "u2", models.Reading{BPM: 90, Timestamp: 3})
	require.NoError(t, err)

	got, err := s.FetchHistory(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 70, got[0].BPM)
	assert.NotEmpty(t, got[0].ID)

	// 返回副本，修改不影响存储
	got[0].BPM = 0
	again, _ := s.FetchHistory(ctx, "u1")
	assert.Equal(t, 70, again[0].BPM)

	empty, err := s.FetchHistory(ctx, "nobody")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestMemoryUserRepository(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryUserRepository()

	_, err := r.GetUser(ctx, "u1")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, r.SaveUser(ctx, models.UserData{UID: "u1", Email: "a@b.c"}))
	u, err := r.GetUser(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "User", u.FullName)

	addr := "1 Main St"
	u, err = r.UpdateProfile(ctx, "u1", models.ProfilePatch{Address: &addr})
	require.NoError(t, err)
	require.NotNil(t, u.Address)
	assert.Equal(t, "1 Main St", *u.Address)

	_, err = r.UpdateProfile(ctx, "u2", models.ProfilePatch{Address: &addr})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryCredentialRepository(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryCredentialRepository()
	c := Credential{UserID: "u1", Email: "a@b.co", AccountHash: "ah", PasswordHash: "ph"}

	require.NoError(t, r.CreateCredential(ctx, c))
	assert.ErrorIs(t, r.CreateCredential(ctx, c), ErrAlreadyExists)

	got, err := r.GetCredential(ctx, "ah")
	require.NoError(t, err)
	assert.Equal(t, c, *got)

	require.NoError(t, r.DeleteCredential(ctx, "u1"))
	_, err = r.GetCredential(ctx, "ah")
	assert.ErrorIs(t, err, ErrNotFound)

	// 删除后同账号可再注册
	assert.NoError(t, r.CreateCredential(ctx, c))
}
