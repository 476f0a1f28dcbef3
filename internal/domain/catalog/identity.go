package catalog

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/yungbote/recharge-backend/internal/normalization"
)

type IdentityKind string

const (
	IdentityCatalog IdentityKind = "catalog"
	IdentitySeed    IdentityKind = "seed"
)

var ErrInvalidQuestIdentity = errors.New("invalid quest identity")

// QuestIdentity is the canonical id of a quest, fixed when the catalog entry
// comes into existence. Exactly one of the two shapes is populated:
// CatalogQuestID(id) or SeedQuestID(profession_slug, normalized_title).
type QuestIdentity struct {
	Kind            IdentityKind
	CatalogID       uuid.UUID
	ProfessionSlug  string
	NormalizedTitle string
}

func CatalogQuestID(id uuid.UUID) QuestIdentity {
	return QuestIdentity{Kind: IdentityCatalog, CatalogID: id}
}

func SeedQuestID(professionSlug, title string) QuestIdentity {
	return QuestIdentity{
		Kind:            IdentitySeed,
		ProfessionSlug:  professionSlug,
		NormalizedTitle: normalization.NormalizeTitle(title),
	}
}

// Key is the string stored on assignment rows and exposed as the quest id.
func (q QuestIdentity) Key() string {
	switch q.Kind {
	case IdentityCatalog:
		return "catalog:" + q.CatalogID.String()
	case IdentitySeed:
		return "seed:" + q.ProfessionSlug + ":" + q.NormalizedTitle
	}
	return ""
}

func (q QuestIdentity) String() string { return q.Key() }

// ParseQuestIdentity accepts "catalog:<uuid>", "seed:<slug>:<title>" or a
// bare uuid as shorthand for a catalog quest.
func ParseQuestIdentity(raw string) (QuestIdentity, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return QuestIdentity{}, fmt.Errorf("%w: empty", ErrInvalidQuestIdentity)
	}
	if id, err := uuid.Parse(raw); err == nil {
		return CatalogQuestID(id), nil
	}
	kind, rest, ok := strings.Cut(raw, ":")
	if !ok {
		return QuestIdentity{}, fmt.Errorf("%w: %q", ErrInvalidQuestIdentity, raw)
	}
	switch IdentityKind(kind) {
	case IdentityCatalog:
		id, err := uuid.Parse(rest)
		if err != nil {
			return QuestIdentity{}, fmt.Errorf("%w: %q", ErrInvalidQuestIdentity, raw)
		}
		return CatalogQuestID(id), nil
	case IdentitySeed:
		slug, title, ok := strings.Cut(rest, ":")
		if !ok || slug == "" || title == "" {
			return QuestIdentity{}, fmt.Errorf("%w: %q", ErrInvalidQuestIdentity, raw)
		}
		return QuestIdentity{
			Kind:            IdentitySeed,
			ProfessionSlug:  slug,
			NormalizedTitle: normalization.NormalizeTitle(title),
		}, nil
	}
	return QuestIdentity{}, fmt.Errorf("%w: unknown kind %q", ErrInvalidQuestIdentity, kind)
}
