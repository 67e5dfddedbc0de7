package database

import (
	"fmt"
	"os"

	"github.com/yukikurage/taskquest-api/internal/models"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DefaultTiers is the tier ladder seeded when no seed file is given.
func DefaultTiers() []models.Tier {
	return []models.Tier{
		{Name: "Bronze", Order: 1, MinPoints: 0, Description: "Starting tier"},
		{Name: "Silver", Order: 2, MinPoints: 500},
		{Name: "Gold", Order: 3, MinPoints: 2000},
		{Name: "Platinum", Order: 4, MinPoints: 5000},
		{Name: "Diamond", Order: 5, MinPoints: 10000},
	}
}

type tierSeedFile struct {
	Tiers []models.Tier `yaml:"tiers"`
}

// LoadTierSeed reads a YAML file of the form:
//
//	tiers:
//	  - name: Bronze
//	    order: 1
//	    min_points: 0
func LoadTierSeed(path string) ([]models.Tier, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read tier seed file: %w", err)
	}
	return ParseTierSeed(data)
}

// ParseTierSeed decodes and checks a YAML tier list.
func ParseTierSeed(data []byte) ([]models.Tier, error) {
	var file tierSeedFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse tier seed file: %w", err)
	}
	if len(file.Tiers) == 0 {
		return nil, fmt.Errorf("tier seed file defines no tiers")
	}

	seenNames := make(map[string]struct{}, len(file.Tiers))
	seenOrders := make(map[int]struct{}, len(file.Tiers))
	for _, tier := range file.Tiers {
		if tier.Name == "" {
			return nil, fmt.Errorf("tier without name")
		}
		if _, dup := seenNames[tier.Name]; dup {
			return nil, fmt.Errorf("duplicate tier name %q", tier.Name)
		}
		if _, dup := seenOrders[tier.Order]; dup {
			return nil, fmt.Errorf("duplicate tier order %d", tier.Order)
		}
		seenNames[tier.Name] = struct{}{}
		seenOrders[tier.Order] = struct{}{}
	}

	return file.Tiers, nil
}

// SeedTiers upserts tiers by name.
func SeedTiers(db *gorm.DB, tiers []models.Tier) error {
	for i := range tiers {
		tier := tiers[i]
		err := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoUpdates: clause.AssignmentColumns([]string{"rank_order", "min_points", "description", "updated_at"}),
		}).Create(&tier).Error
		if err != nil {
			return fmt.Errorf("failed to seed tier %s: %w", tier.Name, err)
		}
	}
	return nil
}
