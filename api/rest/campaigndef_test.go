package rest_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateCampaignDef_Defaults(t *testing.T) {
	r, _ := newServer(t)
	token, _ := registerUser(t, r, "author@example.com")

	w := postJSON(r, "/api/campaign-defs", map[string]interface{}{
		"title": "Bare Bones",
	}, bearer(token)...)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	data := dataOf(t, w)
	assert.Equal(t, "private", data["visibility"])
	assert.Equal(t, float64(1), data["recommendedLevelMin"])
	assert.Equal(t, float64(20), data["recommendedLevelMax"])
	assert.Equal(t, "USD", data["currency"])
}

func TestCreateCampaignDef_PaidWorldNeedsLicense(t *testing.T) {
	r, _ := newServer(t)
	author, _ := registerUser(t, r, "worldowner@example.com")
	writer, _ := registerUser(t, r, "writer@example.com")

	ww := postJSON(r, "/api/worlds", map[string]interface{}{
		"name": "Gated Realm", "licenseMode": "paid", "licensePrice": 2000,
	}, bearer(author)...)
	require.Equal(t, http.StatusCreated, ww.Code)
	worldID := dataOf(t, ww)["id"].(float64)

	body := map[string]interface{}{
		"title":   "Trespasser",
		"worldId": worldID,
	}
	w := postJSON(r, "/api/campaign-defs", body, bearer(writer)...)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "You need to purchase a license for this world", errorOf(t, w))

	// The world author never needs a license.
	w2 := postJSON(r, "/api/campaign-defs", body, bearer(author)...)
	assert.Equal(t, http.StatusCreated, w2.Code, w2.Body.String())

	// A license unlocks it for everyone else.
	checkout(t, r, writer, "world", worldID)
	w3 := postJSON(r, "/api/campaign-defs", body, bearer(writer)...)
	assert.Equal(t, http.StatusCreated, w3.Code, w3.Body.String())
}

func TestListPublicCampaignDefs(t *testing.T) {
	r, _ := newServer(t)
	token, _ := registerUser(t, r, "author@example.com")

	createCampaign(t, r, token, map[string]interface{}{"title": "Listed", "visibility": "public"})
	createCampaign(t, r, token, map[string]interface{}{"title": "For Sale", "visibility": "marketplace"})
	postJSON(r, "/api/campaign-defs", map[string]interface{}{
		"title": "Hidden", "visibility": "private",
	}, bearer(token)...)

	w := getReq(r, "/api/campaign-defs/public")
	require.Equal(t, http.StatusOK, w.Code)
	data := dataOf(t, w)
	assert.Len(t, data["campaigns"], 2)
}

func TestGetCampaignDef_PrivateOnlyForAuthor(t *testing.T) {
	r, _ := newServer(t)
	author, _ := registerUser(t, r, "author@example.com")
	other, _ := registerUser(t, r, "other@example.com")

	w := postJSON(r, "/api/campaign-defs", map[string]interface{}{
		"title": "Secret Arc",
	}, bearer(author)...)
	require.Equal(t, http.StatusCreated, w.Code)
	defID := asID(dataOf(t, w)["id"])

	w2 := getReq(r, "/api/campaign-defs/"+defID, bearer(author)...)
	assert.Equal(t, http.StatusOK, w2.Code)

	w3 := getReq(r, "/api/campaign-defs/"+defID, bearer(other)...)
	assert.Equal(t, http.StatusForbidden, w3.Code)
	assert.Equal(t, "This campaign is private", errorOf(t, w3))

	w4 := getReq(r, "/api/campaign-defs/"+defID)
	assert.Equal(t, http.StatusForbidden, w4.Code)
}

func TestGetCampaignDef_TeaserUntilPurchased(t *testing.T) {
	r, _ := newServer(t)
	author, _ := registerUser(t, r, "author@example.com")
	buyer, _ := registerUser(t, r, "buyer@example.com")

	defID := createCampaign(t, r, author, map[string]interface{}{
		"isPaid":          true,
		"price":           750,
		"longDescription": "The full secret text",
		"quests":          []map[string]interface{}{{"id": "q1", "name": "Hidden Quest"}},
	})

	w := getReq(r, "/api/campaign-defs/"+defID, bearer(buyer)...)
	require.Equal(t, http.StatusOK, w.Code)
	teaser := dataOf(t, w)
	assert.Equal(t, true, teaser["requiresPurchase"])
	assert.Equal(t, float64(750), teaser["price"])
	_, hasQuests := teaser["quests"]
	assert.False(t, hasQuests, "paid content stays hidden")

	checkout(t, r, buyer, "campaign", mustFloat(defID))

	w2 := getReq(r, "/api/campaign-defs/"+defID, bearer(buyer)...)
	require.Equal(t, http.StatusOK, w2.Code)
	full := dataOf(t, w2)
	assert.Equal(t, "The full secret text", full["longDescription"])
	assert.NotNil(t, full["quests"])
}

func TestPatchCampaignDef(t *testing.T) {
	r, _ := newServer(t)
	author, _ := registerUser(t, r, "author@example.com")
	other, _ := registerUser(t, r, "other@example.com")

	defID := createCampaign(t, r, author, nil)

	w := patchJSON(r, "/api/campaign-defs/"+defID, map[string]interface{}{
		"title":      "Renamed Arc",
		"visibility": "marketplace",
	}, bearer(author)...)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	data := dataOf(t, w)
	assert.Equal(t, "Renamed Arc", data["title"])
	assert.Equal(t, "marketplace", data["visibility"])

	w2 := patchJSON(r, "/api/campaign-defs/"+defID, map[string]interface{}{
		"title": "Hijacked",
	}, bearer(other)...)
	assert.Equal(t, http.StatusForbidden, w2.Code)
	assert.Equal(t, "You can only edit your own campaigns", errorOf(t, w2))
}

func TestPopularCampaignDefs(t *testing.T) {
	r, _ := newServer(t)
	author, _ := registerUser(t, r, "author@example.com")
	player, _ := registerUser(t, r, "player@example.com")

	hotID := createCampaign(t, r, author, map[string]interface{}{"title": "Crowd Favorite"})
	createCampaign(t, r, author, map[string]interface{}{"title": "Sleeper"})

	pcID := createCharacter(t, r, player, 3)
	for i := 0; i < 3; i++ {
		w := postJSON(r, "/api/campaign-instances", map[string]interface{}{
			"campaignDefId": mustFloat(hotID),
			"title":         "Run",
			"selectedPcIds": []float64{pcID},
		}, bearer(player)...)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	}

	w := getReq(r, "/api/campaign-defs/popular")
	require.Equal(t, http.StatusOK, w.Code)
	entries := envelope(t, w)["data"].([]interface{})
	require.NotEmpty(t, entries)
	top := entries[0].(map[string]interface{})
	assert.Equal(t, "Crowd Favorite", top["campaignDef"].(map[string]interface{})["title"])
	assert.Equal(t, float64(3), top["instances"])
}
