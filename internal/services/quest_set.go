package services

import (
	"sort"

	types "github.com/yungbote/recharge-backend/internal/domain"
)

type QuestSetSource string

const (
	SourceAdminDefined QuestSetSource = "admin_defined"
	SourceSeedFallback QuestSetSource = "seed_fallback"
)

// QuestSet is a profession's quest pool tagged with the catalog it came from.
// The two sources are never merged.
type QuestSet struct {
	Source QuestSetSource
	Quests []types.CatalogQuest
}

func AdminDefined(quests []types.CatalogQuest) QuestSet {
	return QuestSet{Source: SourceAdminDefined, Quests: quests}
}

func SeedFallback(quests []types.CatalogQuest) QuestSet {
	return QuestSet{Source: SourceSeedFallback, Quests: quests}
}

// ResolveQuestSet picks the admin catalog when it holds at least one enabled
// quest, and the seed catalog otherwise.
func ResolveQuestSet(admin []*types.Quest, seed []types.SeedQuest) QuestSet {
	enabled := make([]*types.Quest, 0, len(admin))
	for _, q := range admin {
		if q != nil && q.IsEnabled && q.DeletedAt.Time.IsZero() {
			enabled = append(enabled, q)
		}
	}
	if len(enabled) > 0 {
		sort.SliceStable(enabled, func(i, j int) bool { return enabled[i].OrderIndex < enabled[j].OrderIndex })
		out := make([]types.CatalogQuest, 0, len(enabled))
		for _, q := range enabled {
			out = append(out, types.FromAdminQuest(q))
		}
		return AdminDefined(out)
	}
	out := make([]types.CatalogQuest, 0, len(seed))
	for i, q := range seed {
		out = append(out, types.FromSeedQuest(q, i))
	}
	return SeedFallback(out)
}
