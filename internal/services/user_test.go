package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/recharge-backend/internal/platform/apierr"
)

func TestEnsureUser(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	u, created, err := h.users.Ensure(ctx, UserInput{Email: " Nurse@Example.com ", Name: "Alex"})
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "nurse@example.com", u.Email)

	again, created, err := h.users.Ensure(ctx, UserInput{Email: "nurse@example.com"})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, u.ID, again.ID)

	_, _, err = h.users.Ensure(ctx, UserInput{Email: "not-an-email"})
	assert.ErrorIs(t, err, apierr.ErrInvalidArgument)
}

func TestEnsureUserWithProfession(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	u, created, err := h.users.Ensure(ctx, UserInput{Email: "kine@example.com", ProfessionSlug: ptr("kine")})
	require.NoError(t, err)
	assert.True(t, created)
	require.NotNil(t, u.ProfessionSlug)
	assert.Equal(t, "kine", *u.ProfessionSlug)

	rows, err := h.assignment.ListUserQuests(ctx, u.ID, "kine")
	require.NoError(t, err)
	assert.Len(t, rows, 2)

	_, _, err = h.users.Ensure(ctx, UserInput{Email: "other@example.com", ProfessionSlug: ptr("astronaute")})
	assert.ErrorIs(t, err, apierr.ErrNotFound)
	_, err = h.users.Get(ctx, uuid.New())
	assert.ErrorIs(t, err, apierr.ErrNotFound)
}
