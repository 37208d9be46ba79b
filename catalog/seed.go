package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/kotu-game/server/model"
	"gorm.io/gorm"
)

// Seed fills the items and locations tables from the JSON data files in
// dataPath if the tables are empty. Existing rows are left untouched, so a
// running deployment keeps its catalog across restarts.
func Seed(db *gorm.DB, dataPath string) error {
	var itemCount int64
	if err := db.Model(&model.Item{}).Count(&itemCount).Error; err != nil {
		return err
	}
	if itemCount == 0 {
		items, err := loadJSONArray[model.Item](filepath.Join(dataPath, "items.json"))
		if err != nil {
			return err
		}
		if len(items) > 0 {
			if err := db.Create(&items).Error; err != nil {
				return err
			}
		}
	}

	var locCount int64
	if err := db.Model(&model.Location{}).Count(&locCount).Error; err != nil {
		return err
	}
	if locCount == 0 {
		locs, err := loadJSONArray[model.Location](filepath.Join(dataPath, "locations.json"))
		if err != nil {
			return err
		}
		if len(locs) > 0 {
			if err := db.Create(&locs).Error; err != nil {
				return err
			}
		}
	}
	return nil
}

func loadJSONArray[T any](path string) ([]T, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: read %s: %w", path, err)
	}
	var arr []T
	if err := json.Unmarshal(data, &arr); err != nil {
		return nil, fmt.Errorf("catalog: parse %s: %w", path, err)
	}
	return arr, nil
}
