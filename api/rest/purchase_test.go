package rest_test

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func checkout(t *testing.T, r *gin.Engine, token, assetType string, assetID float64) map[string]interface{} {
	t.Helper()
	w := postJSON(r, "/api/purchases/checkout", map[string]interface{}{
		"assetType": assetType,
		"assetId":   assetID,
	}, bearer(token)...)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return dataOf(t, w)
}

func TestCheckout_PaidCampaign(t *testing.T) {
	r, _ := newServer(t)
	author, _ := registerUser(t, r, "author@example.com")
	buyer, _ := registerUser(t, r, "buyer@example.com")

	defID := createCampaign(t, r, author, map[string]interface{}{
		"isPaid": true,
		"price":  1299,
	})

	data := checkout(t, r, buyer, "campaign", mustFloat(defID))
	assert.Equal(t, "Purchase recorded successfully (stub - no real payment)", data["message"])
	purchase := data["purchase"].(map[string]interface{})
	assert.Equal(t, float64(1299), purchase["pricePaid"])
	assert.Equal(t, "stub", purchase["provider"])
	assert.Contains(t, purchase["providerChargeId"], "stub_")
}

func TestCheckout_AlreadyOwned(t *testing.T) {
	r, _ := newServer(t)
	author, _ := registerUser(t, r, "author@example.com")
	buyer, _ := registerUser(t, r, "buyer@example.com")

	defID := createCampaign(t, r, author, map[string]interface{}{
		"isPaid": true,
		"price":  1299,
	})
	checkout(t, r, buyer, "campaign", mustFloat(defID))

	w := postJSON(r, "/api/purchases/checkout", map[string]interface{}{
		"assetType": "campaign",
		"assetId":   mustFloat(defID),
	}, bearer(buyer)...)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "You already own this asset", errorOf(t, w))
}

func TestCheckout_FreeAssetsRejected(t *testing.T) {
	r, _ := newServer(t)
	author, _ := registerUser(t, r, "author@example.com")
	buyer, _ := registerUser(t, r, "buyer@example.com")

	freeDefID := createCampaign(t, r, author, nil)
	w := postJSON(r, "/api/purchases/checkout", map[string]interface{}{
		"assetType": "campaign", "assetId": mustFloat(freeDefID),
	}, bearer(buyer)...)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "This campaign is free", errorOf(t, w))

	ww := postJSON(r, "/api/worlds", map[string]interface{}{
		"name": "Open World", "licenseMode": "open",
	}, bearer(author)...)
	require.Equal(t, http.StatusCreated, ww.Code)
	w2 := postJSON(r, "/api/purchases/checkout", map[string]interface{}{
		"assetType": "world", "assetId": dataOf(t, ww)["id"].(float64),
	}, bearer(buyer)...)
	assert.Equal(t, http.StatusBadRequest, w2.Code)
	assert.Equal(t, "This world does not require purchase", errorOf(t, w2))

	wp := postJSON(r, "/api/asset-packs", map[string]interface{}{
		"name": "Free Pack", "type": "npc",
	}, bearer(author)...)
	require.Equal(t, http.StatusCreated, wp.Code)
	w3 := postJSON(r, "/api/purchases/checkout", map[string]interface{}{
		"assetType": "assetPack", "assetId": dataOf(t, wp)["id"].(float64),
	}, bearer(buyer)...)
	assert.Equal(t, http.StatusBadRequest, w3.Code)
	assert.Equal(t, "This asset pack is free", errorOf(t, w3))
}

func TestCheckout_MissingAsset(t *testing.T) {
	r, _ := newServer(t)
	buyer, _ := registerUser(t, r, "buyer@example.com")

	w := postJSON(r, "/api/purchases/checkout", map[string]interface{}{
		"assetType": "campaign", "assetId": 9999,
	}, bearer(buyer)...)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Campaign not found", errorOf(t, w))
}

func TestMyAssets_GroupsByType(t *testing.T) {
	r, _ := newServer(t)
	author, _ := registerUser(t, r, "author@example.com")
	buyer, _ := registerUser(t, r, "buyer@example.com")

	defID := createCampaign(t, r, author, map[string]interface{}{
		"isPaid": true, "price": 500,
	})
	ww := postJSON(r, "/api/worlds", map[string]interface{}{
		"name": "Gated", "licenseMode": "paid", "licensePrice": 1000,
	}, bearer(author)...)
	require.Equal(t, http.StatusCreated, ww.Code)
	worldID := dataOf(t, ww)["id"].(float64)

	checkout(t, r, buyer, "campaign", mustFloat(defID))
	checkout(t, r, buyer, "world", worldID)

	w := getReq(r, "/api/purchases/my-assets", bearer(buyer)...)
	require.Equal(t, http.StatusOK, w.Code)
	data := dataOf(t, w)
	assert.Len(t, data["campaigns"], 1)
	assert.Len(t, data["worlds"], 1)
	assert.Len(t, data["assetPacks"], 0)
	assert.Len(t, data["purchaseHistory"], 2)
}

func TestCheckOwnership(t *testing.T) {
	r, _ := newServer(t)
	author, _ := registerUser(t, r, "author@example.com")
	buyer, _ := registerUser(t, r, "buyer@example.com")

	defID := createCampaign(t, r, author, map[string]interface{}{
		"isPaid": true, "price": 500,
	})

	w := getReq(r, "/api/purchases/check/campaign/"+defID, bearer(buyer)...)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, dataOf(t, w)["owned"])

	checkout(t, r, buyer, "campaign", mustFloat(defID))

	w2 := getReq(r, "/api/purchases/check/campaign/"+defID, bearer(buyer)...)
	require.Equal(t, http.StatusOK, w2.Code)
	data := dataOf(t, w2)
	assert.Equal(t, true, data["owned"])
	assert.NotNil(t, data["purchase"])
}
