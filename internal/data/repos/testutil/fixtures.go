package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/recharge-backend/internal/domain"
)

func SeedUser(tb testing.TB, ctx context.Context, tx *gorm.DB, email string) *types.User {
	tb.Helper()
	u := &types.User{
		ID:    uuid.New(),
		Email: email,
		Name:  "A",
	}
	if err := tx.WithContext(ctx).Create(u).Error; err != nil {
		tb.Fatalf("seed user: %v", err)
	}
	return u
}

func SeedProfession(tb testing.TB, ctx context.Context, tx *gorm.DB, slug, label string, order int) *types.Profession {
	tb.Helper()
	p := &types.Profession{
		ID:         uuid.New(),
		Slug:       slug,
		Label:      label,
		OrderIndex: order,
		IsActive:   true,
	}
	if err := tx.WithContext(ctx).Create(p).Error; err != nil {
		tb.Fatalf("seed profession: %v", err)
	}
	return p
}

func SeedQuest(tb testing.TB, ctx context.Context, tx *gorm.DB, professionSlug *string, title string, points int, enabled bool) *types.Quest {
	tb.Helper()
	q := &types.Quest{
		ID:             uuid.New(),
		ProfessionSlug: professionSlug,
		Title:          title,
		Type:           types.QuestTypeDaily,
		PointsReward:   points,
		Level:          1,
		IsEnabled:      enabled,
	}
	if err := tx.WithContext(ctx).Create(q).Error; err != nil {
		tb.Fatalf("seed quest: %v", err)
	}
	return q
}

func SeedMilestone(tb testing.TB, ctx context.Context, tx *gorm.DB, slug string, niveau int, objective string) *types.ProgressionMilestone {
	tb.Helper()
	m := &types.ProgressionMilestone{
		ID:             uuid.New(),
		ProfessionSlug: slug,
		Niveau:         niveau,
		Title:          "Niveau",
		Objective:      objective,
		OrderIndex:     niveau,
	}
	if err := tx.WithContext(ctx).Create(m).Error; err != nil {
		tb.Fatalf("seed milestone: %v", err)
	}
	return m
}

func PtrString(v string) *string { return &v }

func PtrTime(v time.Time) *time.Time { return &v }
