package inventory

import (
	"context"
	"testing"

	"github.com/kotu-game/server/catalog"
	"github.com/kotu-game/server/gameerr"
	"github.com/kotu-game/server/model"
	"github.com/kotu-game/server/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newService(t *testing.T) (*Service, *gorm.DB, *catalog.Catalog, *model.Player) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	cat := testutil.SeedCatalog(t, db)
	logger, _ := zap.NewDevelopment()
	p := testutil.CreatePlayer(t, db, "alice")
	return NewService(db, cat, logger), db, cat, p
}

func TestAdjust_CreatesRow(t *testing.T) {
	svc, _, _, p := newService(t)
	ctx := context.Background()

	res, err := svc.Adjust(ctx, p.ID, "rabbit", 1)
	require.NoError(t, err)
	assert.Equal(t, 1, res.NewQuantity)

	qty, err := svc.Quantity(ctx, p.ID, "rabbit")
	require.NoError(t, err)
	assert.Equal(t, 1, qty)
}

func TestAdjust_UnknownItem(t *testing.T) {
	svc, _, _, p := newService(t)
	_, err := svc.Adjust(context.Background(), p.ID, "moon rock", 1)
	assert.ErrorIs(t, err, gameerr.ErrItemNotFound)
}

func TestAdjust_CarryLimit(t *testing.T) {
	svc, _, _, p := newService(t)
	ctx := context.Background()

	// Fixture rabbit carry limit is 3.
	for i := 0; i < 3; i++ {
		_, err := svc.Adjust(ctx, p.ID, "rabbit", 1)
		require.NoError(t, err)
	}
	_, err := svc.Adjust(ctx, p.ID, "rabbit", 1)
	assert.ErrorIs(t, err, gameerr.ErrCapacityExceeded)

	qty, err := svc.Quantity(ctx, p.ID, "rabbit")
	require.NoError(t, err)
	assert.Equal(t, 3, qty)
}

func TestAdjust_InsufficientQuantity(t *testing.T) {
	svc, _, _, p := newService(t)
	ctx := context.Background()

	_, err := svc.Adjust(ctx, p.ID, "rabbit", -1)
	assert.ErrorIs(t, err, gameerr.ErrInsufficientQuantity)

	_, err = svc.Adjust(ctx, p.ID, "rabbit", 1)
	require.NoError(t, err)
	_, err = svc.Adjust(ctx, p.ID, "rabbit", -2)
	assert.ErrorIs(t, err, gameerr.ErrInsufficientQuantity)
}

func TestAdjust_ZeroRowPersists(t *testing.T) {
	svc, db, _, p := newService(t)
	ctx := context.Background()

	_, err := svc.Adjust(ctx, p.ID, "rabbit", 1)
	require.NoError(t, err)
	res, err := svc.Adjust(ctx, p.ID, "rabbit", -1)
	require.NoError(t, err)
	assert.Equal(t, 0, res.NewQuantity)

	// The ledger row stays at zero instead of being deleted.
	var entry model.InventoryEntry
	require.NoError(t, db.Where("player_id = ? AND item_name = ?", p.ID, "rabbit").First(&entry).Error)
	assert.Equal(t, 0, entry.Quantity)
}

func TestList_Ordered(t *testing.T) {
	svc, _, _, p := newService(t)
	ctx := context.Background()

	_, err := svc.Adjust(ctx, p.ID, "trout", 1)
	require.NoError(t, err)
	_, err = svc.Adjust(ctx, p.ID, "rabbit", 1)
	require.NoError(t, err)

	entries, err := svc.List(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "rabbit", entries[0].ItemName)
	assert.Equal(t, "trout", entries[1].ItemName)
}

func TestMissingLocationItems(t *testing.T) {
	svc, _, _, p := newService(t)
	ctx := context.Background()

	// Location 1 requires rabbit, trout, and map scrap.
	missing, err := svc.MissingLocationItems(ctx, p.ID, 1)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"rabbit", "trout", "map scrap"}, missing)

	_, err = svc.Adjust(ctx, p.ID, "rabbit", 1)
	require.NoError(t, err)
	missing, err = svc.MissingLocationItems(ctx, p.ID, 1)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"trout", "map scrap"}, missing)

	// A row emptied back to zero still counts as collected.
	_, err = svc.Adjust(ctx, p.ID, "rabbit", -1)
	require.NoError(t, err)
	missing, err = svc.MissingLocationItems(ctx, p.ID, 1)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"trout", "map scrap"}, missing)

	_, err = svc.Adjust(ctx, p.ID, "trout", 1)
	require.NoError(t, err)
	_, err = svc.Adjust(ctx, p.ID, "map scrap", 1)
	require.NoError(t, err)
	missing, err = svc.MissingLocationItems(ctx, p.ID, 1)
	require.NoError(t, err)
	assert.Empty(t, missing)
}

func TestNarrativeFor_NPC(t *testing.T) {
	svc, _, cat, p := newService(t)
	ctx := context.Background()

	guide := cat.ItemByName("guide")
	require.NotNil(t, guide)
	line := svc.NarrativeFor(ctx, p.ID, guide)
	assert.Contains(t, line, "guide says:")
	assert.Contains(t, line, "Tall grass")
}
