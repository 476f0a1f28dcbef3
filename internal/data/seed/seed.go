package seed

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/yungbote/recharge-backend/internal/domain/catalog"
	"github.com/yungbote/recharge-backend/internal/normalization"
)

//go:embed catalog.yaml
var embeddedCatalog []byte

type MilestoneSeed struct {
	Niveau    int    `yaml:"niveau"`
	Title     string `yaml:"title"`
	Icon      string `yaml:"icon"`
	Objective string `yaml:"objective"`
	Reward    string `yaml:"reward"`
}

type ProfessionSeed struct {
	Slug              string              `yaml:"slug"`
	Label             string              `yaml:"label"`
	Icon              string              `yaml:"icon"`
	OrderIndex        int                 `yaml:"order_index"`
	RecommendedQuests []catalog.SeedQuest `yaml:"recommended_quests"`
	Milestones        []MilestoneSeed     `yaml:"milestones"`
}

// Catalog is the read-only baseline catalog.
type Catalog struct {
	Professions []ProfessionSeed `yaml:"professions"`

	bySlug map[string]*ProfessionSeed
}

// Default parses the catalog compiled into the binary.
func Default() (*Catalog, error) {
	return Parse(embeddedCatalog)
}

func Parse(raw []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("decode seed catalog: %w", err)
	}
	c.bySlug = make(map[string]*ProfessionSeed, len(c.Professions))
	for i := range c.Professions {
		p := &c.Professions[i]
		p.Slug = strings.TrimSpace(p.Slug)
		if p.Slug == "" || p.Slug != normalization.Slugify(p.Slug) {
			return nil, fmt.Errorf("seed profession %q: invalid slug", p.Slug)
		}
		if _, dup := c.bySlug[p.Slug]; dup {
			return nil, fmt.Errorf("seed profession %q: duplicate slug", p.Slug)
		}
		seen := map[string]struct{}{}
		for j := range p.RecommendedQuests {
			q := &p.RecommendedQuests[j]
			q.ProfessionSlug = p.Slug
			if q.PointsReward <= 0 {
				return nil, fmt.Errorf("seed quest %q/%q: points_reward must be > 0", p.Slug, q.Title)
			}
			key := normalization.NormalizeTitle(q.Title)
			if key == "" {
				return nil, fmt.Errorf("seed quest in %q: empty title", p.Slug)
			}
			if _, dup := seen[key]; dup {
				return nil, fmt.Errorf("seed quest %q/%q: duplicate title", p.Slug, q.Title)
			}
			seen[key] = struct{}{}
		}
		sort.SliceStable(p.Milestones, func(a, b int) bool { return p.Milestones[a].Niveau < p.Milestones[b].Niveau })
		c.bySlug[p.Slug] = p
	}
	return &c, nil
}

// Quests returns the recommended quests for slug, in catalog order.
func (c *Catalog) Quests(slug string) []catalog.SeedQuest {
	if c == nil {
		return nil
	}
	p, ok := c.bySlug[slug]
	if !ok {
		return nil
	}
	out := make([]catalog.SeedQuest, len(p.RecommendedQuests))
	copy(out, p.RecommendedQuests)
	return out
}

// Quest finds a seed quest by its identity.
func (c *Catalog) Quest(id catalog.QuestIdentity) (catalog.SeedQuest, bool) {
	for _, q := range c.Quests(id.ProfessionSlug) {
		if normalization.NormalizeTitle(q.Title) == id.NormalizedTitle {
			return q, true
		}
	}
	return catalog.SeedQuest{}, false
}

func (c *Catalog) Profession(slug string) (ProfessionSeed, bool) {
	if c == nil {
		return ProfessionSeed{}, false
	}
	p, ok := c.bySlug[slug]
	if !ok {
		return ProfessionSeed{}, false
	}
	return *p, true
}
