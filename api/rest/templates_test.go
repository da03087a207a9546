package rest_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNpcTemplates(t *testing.T) {
	r, _ := newServer(t)
	token, _ := registerUser(t, r, "author@example.com")

	w := postJSON(r, "/api/npc-templates", map[string]interface{}{
		"name": "Archmage Velen",
		"race": "Elf",
		"role": "quest-giver",
	}, bearer(token)...)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	data := dataOf(t, w)
	assert.Equal(t, float64(1), data["baselineLevel"])
	npcID := asID(data["id"])

	w2 := getReq(r, "/api/npc-templates/"+npcID)
	assert.Equal(t, http.StatusOK, w2.Code)

	w3 := getReq(r, "/api/npc-templates/mine", bearer(token)...)
	require.Equal(t, http.StatusOK, w3.Code)
	assert.Len(t, envelope(t, w3)["data"], 1)

	w4 := getReq(r, "/api/npc-templates/9999")
	assert.Equal(t, http.StatusNotFound, w4.Code)
	assert.Equal(t, "NPC template not found", errorOf(t, w4))
}

func TestBestiaryEntries(t *testing.T) {
	r, _ := newServer(t)
	token, _ := registerUser(t, r, "author@example.com")

	w := postJSON(r, "/api/bestiary", map[string]interface{}{
		"name":            "Crypt Shambler",
		"category":        "undead",
		"challengeRating": "2",
	}, bearer(token)...)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	data := dataOf(t, w)
	assert.Equal(t, float64(1), data["recommendedLevelMin"])
	assert.Equal(t, float64(20), data["recommendedLevelMax"])

	w2 := getReq(r, "/api/bestiary/9999")
	assert.Equal(t, http.StatusNotFound, w2.Code)
	assert.Equal(t, "Bestiary entry not found", errorOf(t, w2))
}

func TestItemTemplates(t *testing.T) {
	r, _ := newServer(t)
	token, _ := registerUser(t, r, "author@example.com")

	w := postJSON(r, "/api/item-templates", map[string]interface{}{
		"name":     "Lantern of Truth",
		"category": "quest",
		"rarity":   "rare",
	}, bearer(token)...)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	// Category is constrained to the known set.
	w2 := postJSON(r, "/api/item-templates", map[string]interface{}{
		"name":     "Oddity",
		"category": "vehicle",
	}, bearer(token)...)
	assert.Equal(t, http.StatusBadRequest, w2.Code)

	w3 := getReq(r, "/api/item-templates/9999")
	assert.Equal(t, http.StatusNotFound, w3.Code)
	assert.Equal(t, "Item template not found", errorOf(t, w3))
}

func TestEnvironmentTemplates(t *testing.T) {
	r, _ := newServer(t)
	token, _ := registerUser(t, r, "author@example.com")

	w := postJSON(r, "/api/environments", map[string]interface{}{
		"name": "Drowned Crypt",
		"type": "dungeon",
	}, bearer(token)...)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	envID := asID(dataOf(t, w)["id"])

	w2 := getReq(r, "/api/environments/"+envID)
	assert.Equal(t, http.StatusOK, w2.Code)

	w3 := getReq(r, "/api/environments/9999")
	assert.Equal(t, http.StatusNotFound, w3.Code)
	assert.Equal(t, "Environment template not found", errorOf(t, w3))
}

func TestTemplates_CreateRequiresAuth(t *testing.T) {
	r, _ := newServer(t)
	for _, path := range []string{"/api/npc-templates", "/api/bestiary", "/api/item-templates", "/api/environments"} {
		w := postJSON(r, path, map[string]interface{}{"name": "x"})
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)
	}
}
