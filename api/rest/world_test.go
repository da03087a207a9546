package rest_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateWorld_RequiresAuth(t *testing.T) {
	r, _ := newServer(t)
	w := postJSON(r, "/api/worlds", map[string]interface{}{"name": "Nope"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCreateWorld_ExplicitSlug(t *testing.T) {
	r, _ := newServer(t)
	token, _ := registerUser(t, r, "author@example.com")

	w := postJSON(r, "/api/worlds", map[string]interface{}{
		"name":        "Eldertide Realms",
		"slug":        "Eldertide REALMS!",
		"description": "A drowned coastline",
		"defaultTags": []string{"nautical", "mystery"},
	}, bearer(token)...)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	data := dataOf(t, w)
	assert.Equal(t, "eldertide-realms", data["slug"])
	assert.Equal(t, "open", data["licenseMode"])
}

func TestCreateWorld_DuplicateExplicitSlug(t *testing.T) {
	r, _ := newServer(t)
	token, _ := registerUser(t, r, "author@example.com")

	w := postJSON(r, "/api/worlds", map[string]interface{}{
		"name": "First", "slug": "taken",
	}, bearer(token)...)
	require.Equal(t, http.StatusCreated, w.Code)

	w2 := postJSON(r, "/api/worlds", map[string]interface{}{
		"name": "Second", "slug": "taken",
	}, bearer(token)...)
	assert.Equal(t, http.StatusConflict, w2.Code)
	assert.Equal(t, "A world with this slug already exists", errorOf(t, w2))
}

func TestCreateWorld_GeneratedSlugSuffixes(t *testing.T) {
	r, _ := newServer(t)
	token, _ := registerUser(t, r, "author@example.com")

	want := []string{"earth", "earth-2", "earth-3"}
	for _, expected := range want {
		w := postJSON(r, "/api/worlds", map[string]interface{}{"name": "Earth"}, bearer(token)...)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		assert.Equal(t, expected, dataOf(t, w)["slug"])
	}
}

func TestListPublicWorlds(t *testing.T) {
	r, _ := newServer(t)
	token, _ := registerUser(t, r, "author@example.com")

	postJSON(r, "/api/worlds", map[string]interface{}{
		"name": "Open Lands", "licenseMode": "open",
	}, bearer(token)...)
	postJSON(r, "/api/worlds", map[string]interface{}{
		"name": "Gilded Vaults", "licenseMode": "paid", "licensePrice": 1500,
	}, bearer(token)...)

	w := getReq(r, "/api/worlds/public")
	require.Equal(t, http.StatusOK, w.Code)
	data := dataOf(t, w)
	assert.Len(t, data["worlds"], 2)
	pg := data["pagination"].(map[string]interface{})
	assert.Equal(t, float64(2), pg["total"])
	assert.Equal(t, float64(1), pg["page"])

	w2 := getReq(r, "/api/worlds/public?licenseMode=paid")
	require.Equal(t, http.StatusOK, w2.Code)
	worlds := dataOf(t, w2)["worlds"].([]interface{})
	require.Len(t, worlds, 1)
	assert.Equal(t, "Gilded Vaults", worlds[0].(map[string]interface{})["name"])
}

func TestListPublicWorlds_TagFilter(t *testing.T) {
	r, _ := newServer(t)
	token, _ := registerUser(t, r, "author@example.com")

	postJSON(r, "/api/worlds", map[string]interface{}{
		"name": "Seafoam", "defaultTags": []string{"nautical", "mystery"},
	}, bearer(token)...)
	postJSON(r, "/api/worlds", map[string]interface{}{
		"name": "Emberfall", "defaultTags": []string{"volcanic"},
	}, bearer(token)...)

	w := getReq(r, "/api/worlds/public?tags=nautical")
	require.Equal(t, http.StatusOK, w.Code)
	worlds := dataOf(t, w)["worlds"].([]interface{})
	require.Len(t, worlds, 1)
	assert.Equal(t, "Seafoam", worlds[0].(map[string]interface{})["name"])
}

func TestGetWorld_NotFound(t *testing.T) {
	r, _ := newServer(t)
	w := getReq(r, "/api/worlds/9999")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "World not found", errorOf(t, w))
}

func TestLicenseWorld(t *testing.T) {
	r, _ := newServer(t)
	author, _ := registerUser(t, r, "author@example.com")
	buyer, _ := registerUser(t, r, "buyer@example.com")

	w := postJSON(r, "/api/worlds", map[string]interface{}{
		"name": "Gated Realm", "licenseMode": "paid", "licensePrice": 2500,
	}, bearer(author)...)
	require.Equal(t, http.StatusCreated, w.Code)
	worldID := asID(dataOf(t, w)["id"])

	w2 := postJSON(r, "/api/worlds/"+worldID+"/license", nil, bearer(buyer)...)
	require.Equal(t, http.StatusCreated, w2.Code, w2.Body.String())
	data := dataOf(t, w2)
	assert.Equal(t, "World license acquired successfully", data["message"])
	purchase := data["purchase"].(map[string]interface{})
	assert.Equal(t, "world", purchase["assetType"])
	assert.Equal(t, float64(2500), purchase["pricePaid"])

	w3 := postJSON(r, "/api/worlds/"+worldID+"/license", nil, bearer(buyer)...)
	assert.Equal(t, http.StatusConflict, w3.Code)
	assert.Equal(t, "You already have a license for this world", errorOf(t, w3))
}
