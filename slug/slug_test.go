package slug

import (
	"testing"

	"github.com/Dm-vYzion/StoryForge/model"
	"github.com/Dm-vYzion/StoryForge/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	cases := map[string]string{
		"Earth":               "earth",
		" My New World! ":     "my-new-world",
		"UPPER case":          "upper-case",
		"a--b___c":            "a-b-c",
		"--leading-trailing-": "leading-trailing",
		"日本語":                 "",
	}
	for input, want := range cases {
		assert.Equal(t, want, Normalize(input), "input %q", input)
	}
}

func TestGenerateUniqueWorldSlug_FreeBase(t *testing.T) {
	db := testutil.SetupTestDB(t)

	s, err := GenerateUniqueWorldSlug(db, "Earth")
	require.NoError(t, err)
	assert.Equal(t, "earth", s)
}

func TestGenerateUniqueWorldSlug_ProbesSuffixes(t *testing.T) {
	db := testutil.SetupTestDB(t)

	// Creating "Earth" three times yields earth, earth-2, earth-3.
	for _, want := range []string{"earth", "earth-2", "earth-3"} {
		s, err := GenerateUniqueWorldSlug(db, "Earth")
		require.NoError(t, err)
		assert.Equal(t, want, s)
		require.NoError(t, db.Create(&model.World{
			AuthorUserID: 1, Name: "Earth", Slug: s,
		}).Error)
	}
}

func TestGenerateUniqueWorldSlug_SkipsTakenSuffix(t *testing.T) {
	db := testutil.SetupTestDB(t)

	for _, s := range []string{"mars", "mars-2", "mars-3"} {
		require.NoError(t, db.Create(&model.World{
			AuthorUserID: 1, Name: "Mars", Slug: s,
		}).Error)
	}

	s, err := GenerateUniqueWorldSlug(db, "Mars")
	require.NoError(t, err)
	assert.Equal(t, "mars-4", s)
}

func TestGenerateUniqueWorldSlug_EmptyNameFallsBack(t *testing.T) {
	db := testutil.SetupTestDB(t)

	s, err := GenerateUniqueWorldSlug(db, "!!!")
	require.NoError(t, err)
	assert.Equal(t, "world", s)
}
