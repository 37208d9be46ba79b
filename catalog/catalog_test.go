package catalog_test

import (
	"testing"

	"github.com/kotu-game/server/catalog"
	"github.com/kotu-game/server/model"
	"github.com/kotu-game/server/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestItemByName_CaseInsensitive(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cat := testutil.SeedCatalog(t, db)

	for _, name := range []string{"rabbit", "RABBIT", "  Rabbit  "} {
		it := cat.ItemByName(name)
		require.NotNil(t, it, name)
		assert.Equal(t, "rabbit", it.Name)
	}
	assert.Nil(t, cat.ItemByName("moon rock"))
}

func TestClassification(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cat := testutil.SeedCatalog(t, db)

	cases := map[string]catalog.ItemClass{
		"lumins":     catalog.ClassCurrency,
		"bread":      catalog.ClassFood,
		"health oil": catalog.ClassHealthBoost,
		"weapon oil": catalog.ClassWeaponBoost,
		"wolf":       catalog.ClassEnemy,
		"guide":      catalog.ClassNPC,
		"rabbit":     catalog.ClassMaterial,
	}
	for name, want := range cases {
		it := cat.ItemByName(name)
		require.NotNil(t, it, name)
		assert.Equal(t, want, it.Class, name)
	}

	assert.True(t, cat.ItemByName("wolf").Hostile())
	assert.False(t, cat.ItemByName("rabbit").Hostile())
	assert.True(t, cat.ItemByName("rabbit").Collectible())
	assert.False(t, cat.ItemByName("wolf").Collectible())
	assert.False(t, cat.ItemByName("bread").Collectible())
}

func TestItemsByTypeAndLocation(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cat := testutil.SeedCatalog(t, db)

	// Rabbit is pinned to location 1; the wolf to location 2.
	names := func(items []*catalog.Item) []string {
		out := make([]string, len(items))
		for i, it := range items {
			out[i] = it.Name
		}
		return out
	}
	assert.ElementsMatch(t, []string{"rabbit"}, names(cat.ItemsByTypeAndLocation("animal", 1)))
	assert.ElementsMatch(t, []string{"wolf"}, names(cat.ItemsByTypeAndLocation("animal", 2)))

	// Unrestricted items show up everywhere.
	assert.ElementsMatch(t, []string{"bread", "health oil", "weapon oil"},
		names(cat.ItemsByTypeAndLocation("food", 3)))

	assert.Empty(t, cat.ItemsByTypeAndLocation("animal", 3))
	assert.Empty(t, cat.ItemsByTypeAndLocation("nonsense", 1))
}

func TestCollectiblesForLocation(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cat := testutil.SeedCatalog(t, db)

	names := make([]string, 0)
	for _, it := range cat.CollectiblesForLocation(1) {
		names = append(names, it.Name)
	}
	assert.ElementsMatch(t, []string{"rabbit", "trout", "map scrap"}, names)

	// Enemies never gate travel; the guide NPC does.
	names = names[:0]
	for _, it := range cat.CollectiblesForLocation(2) {
		names = append(names, it.Name)
	}
	assert.ElementsMatch(t, []string{"guide"}, names)
}

func TestLocations(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cat := testutil.SeedCatalog(t, db)

	assert.Equal(t, 3, cat.MaxLocationID())
	loc := cat.LocationByID(2)
	require.NotNil(t, loc)
	assert.Equal(t, "Darkwood", loc.Name)
	assert.Equal(t, 30, loc.XPThreshold)
	assert.Nil(t, cat.LocationByID(99))
}

func TestReload_SwapsSnapshot(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cat := testutil.SeedCatalog(t, db)

	require.NoError(t, db.Create(&model.Item{
		Name: "emberfish", Type: "fish", SubType: "fish", SellPrice: 50, CarryLimit: 2,
	}).Error)
	assert.Nil(t, cat.ItemByName("emberfish"))

	require.NoError(t, cat.Reload(db))
	require.NotNil(t, cat.ItemByName("emberfish"))
}

func TestSeed_Idempotent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SeedCatalog(t, db)

	// Seeding over an already-populated catalog must not duplicate rows.
	require.NoError(t, catalog.Seed(db, t.TempDir()))
	var count int64
	require.NoError(t, db.Model(&model.Item{}).Count(&count).Error)
	assert.Equal(t, int64(len(testutil.FixtureItems())), count)
}
