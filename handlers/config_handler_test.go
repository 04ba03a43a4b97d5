package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/matchfund/matchfund-backend/internal/store"
	"github.com/matchfund/matchfund-backend/internal/store/mocks"
	"github.com/matchfund/matchfund-backend/services"
	"github.com/matchfund/matchfund-backend/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newConfigRouter(configs *mocks.ConfigStore) http.Handler {
	h := NewConfigHandler(services.NewConfigService(configs))
	r := newTestRouter()
	r.GET("/api/action-configs", h.ListActionConfigs)
	r.PUT("/api/action-configs/:key", h.UpsertActionConfig)
	r.GET("/api/configs/:key", h.GetConfig)
	r.PUT("/api/configs/:key", h.PutConfig)
	return r
}

func TestActionConfigs(t *testing.T) {
	configs := new(mocks.ConfigStore)
	r := newConfigRouter(configs)

	configs.On("ListActionConfigs", mock.Anything).Return([]types.ActionConfig{
		{Key: "nutmeg", Label: "Nutmeg", Weight: 0.5, SortOrder: 200},
	}, nil)
	configs.On("UpsertActionConfig", mock.Anything, mock.MatchedBy(func(c types.ActionConfig) bool {
		return c.Key == "goal" && c.Weight == 3 && c.BuiltIn
	})).Return(nil)

	w := doRequest(r, http.MethodGet, "/api/action-configs", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list []types.ActionConfig
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list, len(types.BuiltInEventTypes)+1)
	assert.Equal(t, "goal", list[0].Key)
	assert.Equal(t, "nutmeg", list[len(list)-1].Key)

	w = doRequest(r, http.MethodPut, "/api/action-configs/goal", types.ActionConfigUpdate{Label: "Goal", Weight: 3})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = doRequest(r, http.MethodPut, "/api/action-configs/Bad-Key", types.ActionConfigUpdate{Label: "x", Weight: 1})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(r, http.MethodPut, "/api/action-configs/goal", map[string]interface{}{"weight": 2})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	configs.AssertNumberOfCalls(t, "UpsertActionConfig", 1)
}

func TestConfigs(t *testing.T) {
	configs := new(mocks.ConfigStore)
	r := newConfigRouter(configs)

	configs.On("GetConfig", mock.Anything, "last_match").Return(json.RawMessage(`{"matchId":"m1","totalAmount":500000}`), nil)
	configs.On("GetConfig", mock.Anything, "missing").Return(nil, store.ErrNotFound)
	configs.On("PutConfig", mock.Anything, "scoringWeights", json.RawMessage(`{"goal":3}`)).Return(nil)

	w := doRequest(r, http.MethodGet, "/api/configs/last_match", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"matchId":"m1","totalAmount":500000}`, w.Body.String())
	assert.Contains(t, w.Header().Get("Content-Type"), "application/json")

	w = doRequest(r, http.MethodGet, "/api/configs/missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doRequest(r, http.MethodPut, "/api/configs/scoringWeights", `{"goal":3}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.JSONEq(t, `{"success":true}`, w.Body.String())

	w = doRequest(r, http.MethodPut, "/api/configs/scoringWeights", `{"goal":`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	configs.AssertNumberOfCalls(t, "PutConfig", 1)
}
