package main

import (
	"encoding/json"
	"errors"
	"flag"
	"log"
	"os"

	"gorm.io/gorm"

	"github.com/foodshare/backend/config"
	"github.com/foodshare/backend/internal/database"
	"github.com/foodshare/backend/internal/models"
)

type fixtures struct {
	Tags []struct {
		Name string `json:"name"`
		Slug string `json:"slug"`
	} `json:"tags"`
	Ingredients []struct {
		Name            string `json:"name"`
		MeasurementUnit string `json:"measurement_unit"`
	} `json:"ingredients"`
}

// Loads the tag and ingredient catalogs from a JSON fixture file. Entries
// that already exist are skipped, so reruns are safe.
func main() {
	path := flag.String("fixtures", "data/catalog.json", "Path to the catalog fixture file")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.New(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	raw, err := os.ReadFile(*path)
	if err != nil {
		log.Fatalf("Failed to read fixture file: %v", err)
	}

	var data fixtures
	if err := json.Unmarshal(raw, &data); err != nil {
		log.Fatalf("Failed to parse fixture file: %v", err)
	}

	var tags, ingredients int
	for _, t := range data.Tags {
		created, err := seedTag(db, t.Name, t.Slug)
		if err != nil {
			log.Fatalf("Failed to seed tag %q: %v", t.Slug, err)
		}
		if created {
			tags++
		}
	}
	for _, i := range data.Ingredients {
		created, err := seedIngredient(db, i.Name, i.MeasurementUnit)
		if err != nil {
			log.Fatalf("Failed to seed ingredient %q: %v", i.Name, err)
		}
		if created {
			ingredients++
		}
	}

	log.Printf("Seeded %d tags and %d ingredients", tags, ingredients)
}

func seedTag(db *gorm.DB, name, slug string) (bool, error) {
	err := db.Create(&models.Tag{Name: name, Slug: slug}).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return false, nil
	}
	return err == nil, err
}

func seedIngredient(db *gorm.DB, name, unit string) (bool, error) {
	err := db.Create(&models.Ingredient{Name: name, MeasurementUnit: unit}).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return false, nil
	}
	return err == nil, err
}
