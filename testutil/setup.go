package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/kotu-game/server/cache"
	"github.com/kotu-game/server/catalog"
	dbsqlite "github.com/kotu-game/server/db/sqlite"
	"github.com/kotu-game/server/model"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var dbSeq atomic.Int64

// SetupTestDB creates an isolated in-memory SQLite DB and runs AutoMigrate.
// Each call gets its own database, so it is safe to use in parallel tests.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:testdb%d?mode=memory&cache=shared", dbSeq.Add(1))
	db, err := dbsqlite.Open(dsn)
	require.NoError(t, err, "SetupTestDB: Open")
	require.NoError(t, model.AutoMigrate(db), "SetupTestDB: AutoMigrate")
	return db
}

// SetupTestCache creates LocalCache and LocalPubSub (no Redis required).
func SetupTestCache(t *testing.T) (cache.Cache, cache.PubSub) {
	t.Helper()
	cfg := cache.CacheConfig{} // empty RedisAddr → LocalCache
	c, err := cache.NewCache(cfg)
	require.NoError(t, err, "SetupTestCache: NewCache")
	ps, err := cache.NewPubSub(cfg)
	require.NoError(t, err, "SetupTestCache: NewPubSub")
	return c, ps
}

// FixtureItems is the standard item set used by catalog-dependent tests.
// Location 1 requires rabbit, trout, and map scrap for frontier travel;
// location 2 adds the wolf enemy and the guide NPC.
func FixtureItems() []model.Item {
	return []model.Item{
		{Name: "lumins", Type: "currency", SubType: "currency", CarryLimit: 1000},
		{Name: "rabbit", Type: "animal", SubType: "animal", SellPrice: 5, CarryLimit: 3, LocationRestriction: 1},
		{Name: "trout", Type: "fish", SubType: "fish", SellPrice: 4, CarryLimit: 3, LocationRestriction: 1},
		{Name: "map scrap", Type: "quest", SubType: "quest", SellPrice: 2, CarryLimit: 1, LocationRestriction: 1},
		{Name: "bread", Type: "food", SubType: "food", SellPrice: 2, CarryLimit: 5},
		{Name: "health oil", Type: "food", SubType: "health_boost", SellPrice: 10, CarryLimit: 2},
		{Name: "weapon oil", Type: "food", SubType: "weapon_boost", SellPrice: 12, CarryLimit: 2},
		{Name: "wolf", Type: "animal", SubType: "enemy", Difficulty: 20, LocationRestriction: 2},
		{Name: "guide", Type: "quest", SubType: "npc", CarryLimit: 1, LocationRestriction: 2},
	}
}

// FixtureLocations is the standard location set used by catalog-dependent tests.
func FixtureLocations() []model.Location {
	return []model.Location{
		{ID: 1, Name: "Greenfield", NarrativeText: "Tall grass sways in the wind.", XPThreshold: 0},
		{ID: 2, Name: "Darkwood", NarrativeText: "The trees swallow the light.", XPThreshold: 30},
		{ID: 3, Name: "Frostpeak", NarrativeText: "The air bites at this height.", XPThreshold: 80},
	}
}

// SeedCatalog inserts the fixture items and locations and returns a loaded
// Catalog over them.
func SeedCatalog(t *testing.T, db *gorm.DB) *catalog.Catalog {
	t.Helper()
	items := FixtureItems()
	require.NoError(t, db.Create(&items).Error, "SeedCatalog: items")
	locs := FixtureLocations()
	require.NoError(t, db.Create(&locs).Error, "SeedCatalog: locations")
	cat, err := catalog.Load(db)
	require.NoError(t, err, "SeedCatalog: Load")
	return cat
}

// CreatePlayer inserts a player with default starting stats and returns it.
func CreatePlayer(t *testing.T, db *gorm.DB, handle string) *model.Player {
	t.Helper()
	p := &model.Player{Handle: handle}
	require.NoError(t, db.Create(p).Error, "CreatePlayer: player")
	stats := &model.PlayerStats{
		PlayerID:        p.ID,
		Health:          10,
		HealthCap:       10,
		WeaponLevel:     1,
		CurrentLocation: 1,
		HighestLocation: 1,
		XP:              10,
	}
	require.NoError(t, db.Create(stats).Error, "CreatePlayer: stats")
	return p
}
