package rest

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kotu-game/server/cache"
	"github.com/kotu-game/server/catalog"
	"github.com/kotu-game/server/config"
	"github.com/kotu-game/server/game/inventory"
	"github.com/kotu-game/server/game/player"
	"github.com/kotu-game/server/testutil"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func secCfg() config.SecurityConfig {
	return config.SecurityConfig{
		JWTSecret:  "test-secret",
		SessionTTL: time.Hour,
	}
}

func gameCfg() config.GameConfig {
	return config.GameConfig{
		CurrencyItem: "lumins",
		StartHealth:  10,
		StartXP:      10,
	}
}

// env bundles the store, cache, and services the handler tests share.
type env struct {
	db      *gorm.DB
	cat     *catalog.Catalog
	cache   cache.Cache
	pubsub  cache.PubSub
	players *player.Service
	inv     *inventory.Service
	logger  *zap.Logger
}

func newEnv(t *testing.T) *env {
	t.Helper()
	db := testutil.SetupTestDB(t)
	cat := testutil.SeedCatalog(t, db)
	c, ps := testutil.SetupTestCache(t)
	logger, _ := zap.NewDevelopment()
	return &env{
		db:      db,
		cat:     cat,
		cache:   c,
		pubsub:  ps,
		players: player.NewService(db, gameCfg(), logger),
		inv:     inventory.NewService(db, cat, logger),
		logger:  logger,
	}
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body interface{}, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func requireStatus(t *testing.T, w *httptest.ResponseRecorder, want int) {
	t.Helper()
	require.Equal(t, want, w.Code, w.Body.String())
}
