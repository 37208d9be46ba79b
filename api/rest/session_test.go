package rest

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	mw "github.com/kotu-game/server/middleware"
	"github.com/kotu-game/server/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sessionRouter(e *env) *gin.Engine {
	h := NewSessionHandler(e.players, e.cache, secCfg(), e.logger)
	r := gin.New()
	r.POST("/api/session", h.Create)
	r.DELETE("/api/session", h.Delete)
	return r
}

func TestCreateSession(t *testing.T) {
	e := newEnv(t)
	p := testutil.CreatePlayer(t, e.db, "alice")
	r := sessionRouter(e)

	w := doJSON(t, r, http.MethodPost, "/api/session", gin.H{"handle": "alice"}, nil)
	requireStatus(t, w, http.StatusOK)

	body := decodeBody(t, w)
	token := body["token"].(string)
	require.NotEmpty(t, token)
	assert.Equal(t, "alice", body["handle"])
	assert.EqualValues(t, 3600, body["expires_in"])

	// The token carries the player identity.
	claims, err := mw.ParseToken(token, secCfg().JWTSecret)
	require.NoError(t, err)
	assert.Equal(t, p.ID, claims.PlayerID)
	assert.Equal(t, "alice", claims.Handle)

	// And the session is live in the cache.
	exists, err := e.cache.Exists(context.Background(), "session:"+token)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestCreateSession_UnknownHandle(t *testing.T) {
	e := newEnv(t)
	r := sessionRouter(e)

	w := doJSON(t, r, http.MethodPost, "/api/session", gin.H{"handle": "nobody"}, nil)
	requireStatus(t, w, http.StatusNotFound)
}

func TestCreateSession_BadRequest(t *testing.T) {
	e := newEnv(t)
	r := sessionRouter(e)

	w := doJSON(t, r, http.MethodPost, "/api/session", gin.H{}, nil)
	requireStatus(t, w, http.StatusBadRequest)
}

func TestDeleteSession(t *testing.T) {
	e := newEnv(t)
	testutil.CreatePlayer(t, e.db, "alice")
	r := sessionRouter(e)

	w := doJSON(t, r, http.MethodPost, "/api/session", gin.H{"handle": "alice"}, nil)
	requireStatus(t, w, http.StatusOK)
	token := decodeBody(t, w)["token"].(string)

	w = doJSON(t, r, http.MethodDelete, "/api/session", nil, map[string]string{
		"Authorization": "Bearer " + token,
	})
	requireStatus(t, w, http.StatusOK)

	exists, err := e.cache.Exists(context.Background(), "session:"+token)
	require.NoError(t, err)
	assert.False(t, exists)
}
