package rest

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/kotu-game/server/model"
	"github.com/kotu-game/server/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rankingRouter(e *env) (*gin.Engine, *RankingHandler) {
	h := NewRankingHandler(e.db, e.cache, e.logger)
	r := gin.New()
	r.GET("/api/ranking/xp", h.TopXP)
	return r, h
}

func seedRanked(t *testing.T, e *env, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		handle := fmt.Sprintf("player%d", i)
		p := testutil.CreatePlayer(t, e.db, handle)
		require.NoError(t, e.db.Model(&model.PlayerStats{}).
			Where("player_id = ?", p.ID).Update("xp", (i+1)*10).Error)
	}
}

func TestTopXP_FromDB(t *testing.T) {
	e := newEnv(t)
	seedRanked(t, e, 3)
	r, _ := rankingRouter(e)

	w := doJSON(t, r, http.MethodGet, "/api/ranking/xp", nil, nil)
	requireStatus(t, w, http.StatusOK)

	body := decodeBody(t, w)
	ranking := body["ranking"].([]interface{})
	require.Len(t, ranking, 3)

	top := ranking[0].(map[string]interface{})
	assert.EqualValues(t, 1, top["rank"])
	assert.Equal(t, "player2", top["handle"]) // highest XP first
	assert.EqualValues(t, 30, top["xp"])

	// The DB read warmed the sorted set.
	score, err := e.cache.ZScore(context.Background(), "ranking:xp", "player2")
	require.NoError(t, err)
	assert.Equal(t, float64(30), score)
}

func TestTopXP_FromCache(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	require.NoError(t, e.cache.ZAdd(ctx, "ranking:xp", 100, "cached-one"))
	require.NoError(t, e.cache.ZAdd(ctx, "ranking:xp", 50, "cached-two"))
	r, _ := rankingRouter(e)

	w := doJSON(t, r, http.MethodGet, "/api/ranking/xp", nil, nil)
	requireStatus(t, w, http.StatusOK)

	ranking := decodeBody(t, w)["ranking"].([]interface{})
	require.Len(t, ranking, 2)
	assert.Equal(t, "cached-one", ranking[0].(map[string]interface{})["handle"])
	assert.Equal(t, "cached-two", ranking[1].(map[string]interface{})["handle"])
}

func TestTopXP_LimitParam(t *testing.T) {
	e := newEnv(t)
	seedRanked(t, e, 5)
	r, _ := rankingRouter(e)

	w := doJSON(t, r, http.MethodGet, "/api/ranking/xp?limit=2", nil, nil)
	requireStatus(t, w, http.StatusOK)
	assert.Len(t, decodeBody(t, w)["ranking"].([]interface{}), 2)
}

func TestRebuild(t *testing.T) {
	e := newEnv(t)
	seedRanked(t, e, 4)
	_, h := rankingRouter(e)

	n, err := h.Rebuild(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	score, err := e.cache.ZScore(context.Background(), "ranking:xp", "player3")
	require.NoError(t, err)
	assert.Equal(t, float64(40), score)
}

func TestRebuild_EvictsDepartedMembers(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	seedRanked(t, e, 2)
	// A handle whose player row is gone must not survive a rebuild, no
	// matter how high its old score was.
	require.NoError(t, e.cache.ZAdd(ctx, "ranking:xp", 9999, "departed"))
	_, h := rankingRouter(e)

	n, err := h.Rebuild(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	_, err = e.cache.ZScore(ctx, "ranking:xp", "departed")
	assert.Error(t, err)

	members, err := e.cache.ZRevRange(ctx, "ranking:xp", 0, -1)
	require.NoError(t, err)
	assert.NotContains(t, members, "departed")
	assert.Contains(t, members, "player1")
}
