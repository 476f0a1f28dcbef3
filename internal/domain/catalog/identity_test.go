package catalog

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuestIdentityKeys(t *testing.T) {
	id := uuid.MustParse("6f1c2f7e-1b7a-4f57-9a55-0e6a4f8f6a11")

	assert.Equal(t, "catalog:6f1c2f7e-1b7a-4f57-9a55-0e6a4f8f6a11", CatalogQuestID(id).Key())
	assert.Equal(t, "seed:infirmier:hydratation_2l_au_service", SeedQuestID("infirmier", "Hydratation 2L au service").Key())
}

func TestParseQuestIdentityRoundTrip(t *testing.T) {
	for _, qi := range []QuestIdentity{
		CatalogQuestID(uuid.New()),
		SeedQuestID("kine", "3 exercices de mobilité personnelle"),
	} {
		got, err := ParseQuestIdentity(qi.Key())
		require.NoError(t, err)
		assert.Equal(t, qi, got)
	}
}

func TestParseQuestIdentityBareUUID(t *testing.T) {
	id := uuid.New()
	got, err := ParseQuestIdentity(id.String())
	require.NoError(t, err)
	assert.Equal(t, CatalogQuestID(id), got)
}

func TestParseQuestIdentityRejectsGarbage(t *testing.T) {
	for _, raw := range []string{"", "nope", "catalog:not-a-uuid", "seed:infirmier", "seed::x", "other:x"} {
		_, err := ParseQuestIdentity(raw)
		assert.ErrorIs(t, err, ErrInvalidQuestIdentity, raw)
	}
}
