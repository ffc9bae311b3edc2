package db

import (
	"github.com/pngsmec/msme-registry-backend/internal/app/model"
	"github.com/pngsmec/msme-registry-backend/pkg/logger"
	"gorm.io/gorm"
)

// Migrate runs database migrations
func Migrate() error {
	logger.Info("Running database migrations...")

	models := []interface{}{
		&model.User{},
		&model.Province{},
		&model.District{},
		&model.MSME{},
		&model.Owner{},
		&model.Document{},
		&model.ProgramParticipation{},
		&model.FinanceReferral{},
		&model.DuplicateCandidate{},
		&model.MergeAuditEntry{},
		&model.AuditLogEntry{},
	}

	if err := DB.AutoMigrate(models...); err != nil {
		logger.Error("Failed to run migrations", err)
		return err
	}

	if err := SeedReferenceData(DB); err != nil {
		logger.Error("Failed to seed reference data during migration", err)
		return err
	}

	logger.Info("Database migrations completed successfully", map[string]interface{}{
		"models_count": len(models),
	})
	return nil
}

// SeedReferenceData inserts the static PNG gazetteer rows. Safe to run
// repeatedly: existing rows are left untouched.
func SeedReferenceData(db *gorm.DB) error {
	var count int64
	if err := db.Model(&model.Province{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		logger.Info("Reference data already seeded, skipping...", map[string]interface{}{
			"existing_provinces": count,
		})
		return nil
	}

	logger.Info("Seeding PNG province and district reference data...")

	for _, p := range pngProvinces {
		if err := db.Create(&p).Error; err != nil {
			logger.Error("Failed to create province", err, map[string]interface{}{
				"province_id": p.ID,
			})
			return err
		}
	}
	for _, d := range pngDistricts {
		if err := db.Create(&d).Error; err != nil {
			logger.Error("Failed to create district", err, map[string]interface{}{
				"district_id": d.ID,
			})
			return err
		}
	}

	logger.Info("Reference data seeded successfully", map[string]interface{}{
		"provinces": len(pngProvinces),
		"districts": len(pngDistricts),
	})
	return nil
}

// PNG gazetteer. IDs are stable slugs referenced by MSME rows; display
// names can change without touching registered records.
var pngProvinces = []model.Province{
	// Highlands
	{ID: "chimbu", Name: "Chimbu (Simbu)", Region: "highlands"},
	{ID: "eastern-highlands", Name: "Eastern Highlands", Region: "highlands"},
	{ID: "enga", Name: "Enga", Region: "highlands"},
	{ID: "hela", Name: "Hela", Region: "highlands"},
	{ID: "jiwaka", Name: "Jiwaka", Region: "highlands"},
	{ID: "southern-highlands", Name: "Southern Highlands", Region: "highlands"},
	{ID: "western-highlands", Name: "Western Highlands", Region: "highlands"},

	// Islands
	{ID: "bougainville", Name: "Autonomous Region of Bougainville", Region: "islands"},
	{ID: "east-new-britain", Name: "East New Britain", Region: "islands"},
	{ID: "manus", Name: "Manus", Region: "islands"},
	{ID: "new-ireland", Name: "New Ireland", Region: "islands"},
	{ID: "west-new-britain", Name: "West New Britain", Region: "islands"},

	// Momase
	{ID: "east-sepik", Name: "East Sepik", Region: "momase"},
	{ID: "madang", Name: "Madang", Region: "momase"},
	{ID: "morobe", Name: "Morobe", Region: "momase"},
	{ID: "sandaun", Name: "Sandaun (West Sepik)", Region: "momase"},

	// Southern
	{ID: "central", Name: "Central", Region: "southern"},
	{ID: "gulf", Name: "Gulf", Region: "southern"},
	{ID: "milne-bay", Name: "Milne Bay", Region: "southern"},
	{ID: "ncd", Name: "National Capital District", Region: "southern"},
	{ID: "northern", Name: "Northern (Oro)", Region: "southern"},
	{ID: "western", Name: "Western", Region: "southern"},
}

var pngDistricts = []model.District{
	// National Capital District
	{ID: "ncd-central", ProvinceID: "ncd", Name: "Moresby North-East"},
	{ID: "ncd-northwest", ProvinceID: "ncd", Name: "Moresby North-West"},
	{ID: "ncd-south", ProvinceID: "ncd", Name: "Moresby South"},

	// Morobe
	{ID: "lae", ProvinceID: "morobe", Name: "Lae"},
	{ID: "huon-gulf", ProvinceID: "morobe", Name: "Huon Gulf"},
	{ID: "bulolo", ProvinceID: "morobe", Name: "Bulolo"},
	{ID: "markham", ProvinceID: "morobe", Name: "Markham"},
	{ID: "nawae", ProvinceID: "morobe", Name: "Nawae"},
	{ID: "finschhafen", ProvinceID: "morobe", Name: "Finschhafen"},
	{ID: "kabwum", ProvinceID: "morobe", Name: "Kabwum"},
	{ID: "tewai-siassi", ProvinceID: "morobe", Name: "Tewai-Siassi"},
	{ID: "menyamya", ProvinceID: "morobe", Name: "Menyamya"},

	// Eastern Highlands
	{ID: "goroka", ProvinceID: "eastern-highlands", Name: "Goroka"},
	{ID: "kainantu", ProvinceID: "eastern-highlands", Name: "Kainantu"},
	{ID: "obura-wonenara", ProvinceID: "eastern-highlands", Name: "Obura-Wonenara"},
	{ID: "okapa", ProvinceID: "eastern-highlands", Name: "Okapa"},
	{ID: "henganofi", ProvinceID: "eastern-highlands", Name: "Henganofi"},
	{ID: "daulo", ProvinceID: "eastern-highlands", Name: "Daulo"},
	{ID: "lufa", ProvinceID: "eastern-highlands", Name: "Lufa"},
	{ID: "unggai-bena", ProvinceID: "eastern-highlands", Name: "Unggai-Bena"},

	// Western Highlands
	{ID: "mount-hagen", ProvinceID: "western-highlands", Name: "Mount Hagen"},
	{ID: "dei", ProvinceID: "western-highlands", Name: "Dei"},
	{ID: "mul-baiyer", ProvinceID: "western-highlands", Name: "Mul-Baiyer"},
	{ID: "tambul-nebilyer", ProvinceID: "western-highlands", Name: "Tambul-Nebilyer"},
	{ID: "anglimp-south-wahgi", ProvinceID: "western-highlands", Name: "Anglimp-South Wahgi"},
	{ID: "north-wahgi", ProvinceID: "western-highlands", Name: "North Wahgi"},

	// East New Britain
	{ID: "rabaul", ProvinceID: "east-new-britain", Name: "Rabaul"},
	{ID: "kokopo", ProvinceID: "east-new-britain", Name: "Kokopo"},
	{ID: "gazelle", ProvinceID: "east-new-britain", Name: "Gazelle"},
	{ID: "pomio", ProvinceID: "east-new-britain", Name: "Pomio"},

	// Madang
	{ID: "madang-town", ProvinceID: "madang", Name: "Madang"},
	{ID: "bogia", ProvinceID: "madang", Name: "Bogia"},
	{ID: "middle-ramu", ProvinceID: "madang", Name: "Middle Ramu"},
	{ID: "sumkar", ProvinceID: "madang", Name: "Sumkar"},
	{ID: "usino-bundi", ProvinceID: "madang", Name: "Usino Bundi"},
	{ID: "rai-coast", ProvinceID: "madang", Name: "Rai Coast"},

	// Central
	{ID: "abau", ProvinceID: "central", Name: "Abau"},
	{ID: "goilala", ProvinceID: "central", Name: "Goilala"},
	{ID: "kairuku-hiri", ProvinceID: "central", Name: "Kairuku-Hiri"},
	{ID: "rigo", ProvinceID: "central", Name: "Rigo"},
}
