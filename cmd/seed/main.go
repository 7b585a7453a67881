package main

import (
	"fmt"
	"log"

	"github.com/zuulgate/zuul/backend/internal/config"
	"github.com/zuulgate/zuul/backend/internal/database"
	"github.com/zuulgate/zuul/backend/internal/models"
)

func strp(s string) *string { return &s }

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	db, err := database.Open(cfg.DatabasePath)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	if err := db.AutoMigrate(
		&models.Rule{},
		&models.Ignored{},
		&models.Record{},
		&models.User{},
	); err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	fmt.Println("✓ Database migrated successfully")

	// Seed an admin account if none exists
	var userCount int64
	db.Model(&models.User{}).Count(&userCount)
	if userCount == 0 {
		admin := models.User{
			Username: "admin",
			Email:    "admin@example.com",
			Role:     "admin",
			Active:   true,
		}
		if err := admin.SetPassword("changeme"); err != nil {
			log.Fatal("Failed to hash password:", err)
		}
		if err := db.Create(&admin).Error; err != nil {
			log.Fatal("Failed to seed admin user:", err)
		}
		fmt.Println("✓ Seeded admin user admin@example.com (password: changeme)")
	}

	// Seed a starter rule set if the table is empty
	var ruleCount int64
	db.Model(&models.Rule{}).Count(&ruleCount)
	if ruleCount == 0 {
		rules := []models.Rule{
			{
				Weight: 10,
				Allow:  false,
				Store:  true,
				Path:   strp(`^/(wp-admin|wp-login|xmlrpc\.php)`),
				Active: true,
			},
			{
				Weight: 20,
				Allow:  false,
				Store:  true,
				Path:   strp(`\.(env|git|htaccess)`),
				Active: true,
			},
			{
				Weight:    100,
				Allow:     true,
				Store:     false,
				IPAddress: strp(`^(10\.|172\.(1[6-9]|2[0-9]|3[01])\.|192\.168\.)`),
				Active:    true,
			},
		}
		if err := db.Create(&rules).Error; err != nil {
			log.Fatal("Failed to seed rules:", err)
		}
		fmt.Printf("✓ Seeded %d starter rules\n", len(rules))
	}

	// Seed an ignore entry so health probes stay out of the audit log
	var ignoredCount int64
	db.Model(&models.Ignored{}).Count(&ignoredCount)
	if ignoredCount == 0 {
		probe := models.Ignored{
			Weight: 10,
			Path:   strp(`^/(healthz?|ping)$`),
			Active: true,
		}
		if err := db.Create(&probe).Error; err != nil {
			log.Fatal("Failed to seed ignore entry:", err)
		}
		fmt.Println("✓ Seeded health-probe ignore entry")
	}

	fmt.Println("✓ Seed complete")
}
