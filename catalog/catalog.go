package catalog

import (
	"strings"
	"sync"

	"github.com/kotu-game/server/model"
	"gorm.io/gorm"
)

// ItemClass is the resolved classification of a catalog item. Sub-type strings
// are mapped to a class exactly once at load; gameplay code switches on the
// class and never compares strings.
type ItemClass int

const (
	ClassMaterial ItemClass = iota
	ClassFood
	ClassNPC
	ClassEnemy
	ClassBoss
	ClassCurrency
	ClassHealthBoost
	ClassWeaponBoost
)

func classify(subType string) ItemClass {
	switch strings.ToLower(subType) {
	case "food":
		return ClassFood
	case "npc":
		return ClassNPC
	case "enemy":
		return ClassEnemy
	case "boss":
		return ClassBoss
	case "currency":
		return ClassCurrency
	case "health_boost":
		return ClassHealthBoost
	case "weapon_boost":
		return ClassWeaponBoost
	default:
		return ClassMaterial
	}
}

// Item is one catalog entry with its classification resolved.
type Item struct {
	ID                  int64
	Name                string
	Type                string
	Class               ItemClass
	SellPrice           int
	CarryLimit          int
	LocationRestriction int
	Difficulty          int
}

// Hostile reports whether acquiring this item means a fight instead of a grant.
func (it *Item) Hostile() bool {
	return it.Class == ClassEnemy || it.Class == ClassBoss
}

// Collectible reports whether the item counts toward a location's collection
// set for travel prerequisites.
func (it *Item) Collectible() bool {
	switch it.Class {
	case ClassEnemy, ClassBoss, ClassFood:
		return false
	}
	return true
}

// Location is one catalog entry for a stop on the journey.
type Location struct {
	ID            int
	Name          string
	NarrativeText string
	XPThreshold   int
}

// Catalog holds the reference data in memory. It is immutable during gameplay;
// Reload swaps the whole snapshot under the lock.
type Catalog struct {
	mu          sync.RWMutex
	items       []*Item
	itemsByName map[string]*Item
	itemsByID   map[int64]*Item
	locations   map[int]*Location
	maxLocation int
}

// Load reads the items and locations tables into a new Catalog.
func Load(db *gorm.DB) (*Catalog, error) {
	c := &Catalog{}
	if err := c.Reload(db); err != nil {
		return nil, err
	}
	return c, nil
}

// Reload re-reads the catalog tables and atomically replaces the snapshot.
func (c *Catalog) Reload(db *gorm.DB) error {
	var rows []model.Item
	if err := db.Find(&rows).Error; err != nil {
		return err
	}
	var locRows []model.Location
	if err := db.Find(&locRows).Error; err != nil {
		return err
	}

	items := make([]*Item, 0, len(rows))
	byName := make(map[string]*Item, len(rows))
	byID := make(map[int64]*Item, len(rows))
	for _, r := range rows {
		it := &Item{
			ID:                  r.ID,
			Name:                r.Name,
			Type:                r.Type,
			Class:               classify(r.SubType),
			SellPrice:           r.SellPrice,
			CarryLimit:          r.CarryLimit,
			LocationRestriction: r.LocationRestriction,
			Difficulty:          r.Difficulty,
		}
		items = append(items, it)
		byName[strings.ToLower(it.Name)] = it
		byID[it.ID] = it
	}

	locs := make(map[int]*Location, len(locRows))
	maxLoc := 0
	for _, r := range locRows {
		loc := &Location{
			ID:            int(r.ID),
			Name:          r.Name,
			NarrativeText: r.NarrativeText,
			XPThreshold:   r.XPThreshold,
		}
		locs[loc.ID] = loc
		if loc.ID > maxLoc {
			maxLoc = loc.ID
		}
	}

	c.mu.Lock()
	c.items = items
	c.itemsByName = byName
	c.itemsByID = byID
	c.locations = locs
	c.maxLocation = maxLoc
	c.mu.Unlock()
	return nil
}

// ItemByName returns the item with the given name (case-insensitive), or nil.
func (c *Catalog) ItemByName(name string) *Item {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.itemsByName[strings.ToLower(strings.TrimSpace(name))]
}

// ItemByID returns the item with the given ID, or nil.
func (c *Catalog) ItemByID(id int64) *Item {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.itemsByID[id]
}

// ItemsByTypeAndLocation returns the items of the given type available at the
// given location. Items with LocationRestriction 0 are available everywhere.
func (c *Catalog) ItemsByTypeAndLocation(itemType string, locationID int) []*Item {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var out []*Item
	for _, it := range c.items {
		if !strings.EqualFold(it.Type, itemType) {
			continue
		}
		if it.LocationRestriction != 0 && it.LocationRestriction != locationID {
			continue
		}
		out = append(out, it)
	}
	return out
}

// CollectiblesForLocation returns the items a player must have collected at the
// given location before frontier travel is allowed.
func (c *Catalog) CollectiblesForLocation(locationID int) []*Item {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var out []*Item
	for _, it := range c.items {
		if it.LocationRestriction == locationID && it.Collectible() {
			out = append(out, it)
		}
	}
	return out
}

// LocationByID returns the location with the given ID, or nil.
func (c *Catalog) LocationByID(id int) *Location {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.locations[id]
}

// MaxLocationID returns the highest location ID in the catalog.
func (c *Catalog) MaxLocationID() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.maxLocation
}
