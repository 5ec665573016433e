// Package main seeds the partner bank catalog and, optionally, a demo
// user. Accounts can only be opened at a bank that exists, so this runs
// once before first use. Safe to re-run: existing rows are left alone.
package main

import (
	"log"
	"os"

	"atlasbank/internal/config"
	"atlasbank/internal/models"
	"atlasbank/internal/repositories"

	"golang.org/x/crypto/bcrypt"
)

var bankNames = []string{
	"ICICI",
	"HDFC",
	"IDBI",
	"Union Bank of India",
}

func main() {
	config.LoadEnv()

	if err := repositories.InitDB(); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer func() {
		if sqlDB, err := repositories.DB.DB(); err == nil {
			sqlDB.Close()
		}
		if repositories.CacheService != nil {
			repositories.CacheService.Close()
		}
	}()

	seedBanks()
	seedDemoUser()
}

func seedBanks() {
	created := 0
	for _, name := range bankNames {
		var existing models.Bank
		result := repositories.DB.Where("name = ?", name).First(&existing)
		if result.Error == nil {
			log.Printf("Bank %q already exists", name)
			continue
		}

		if err := repositories.DB.Create(&models.Bank{Name: name}).Error; err != nil {
			log.Fatalf("Failed to create bank %q: %v", name, err)
		}
		created++
		log.Printf("Created bank %q", name)
	}
	log.Printf("Bank seed complete: %d created", created)
}

// seedDemoUser creates a login for local development when DEMO_USERNAME
// and DEMO_PASSWORD are set. Production deployments leave them unset.
func seedDemoUser() {
	username := os.Getenv("DEMO_USERNAME")
	password := os.Getenv("DEMO_PASSWORD")
	if username == "" || password == "" {
		return
	}

	var existing models.User
	if repositories.DB.Where("username = ?", username).First(&existing).Error == nil {
		log.Printf("Demo user %q already exists", username)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("Failed to hash demo password: %v", err)
	}

	user := models.User{
		FullName:      config.GetEnv("DEMO_FULL_NAME", "Demo User"),
		Username:      username,
		Email:         config.GetEnv("DEMO_EMAIL", username+"@example.com"),
		Password:      string(hash),
		AccountStatus: models.UserStatusActive,
		TokenVersion:  1,
	}
	if err := repositories.DB.Create(&user).Error; err != nil {
		log.Fatalf("Failed to create demo user: %v", err)
	}
	log.Printf("Created demo user %q", username)
}
