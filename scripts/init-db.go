package main

import (
	"fmt"
	"log"

	"restbar/internal/config"
	"restbar/internal/database"
	"restbar/internal/migrations"
)

func main() {
	fmt.Println("Initializing database...")

	// Load configuration
	cfg := config.Load()

	// Initialize database
	db, err := database.Initialize(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	// Force recreate all tables
	if err := migrations.Reset(db); err != nil {
		log.Fatal("Failed to recreate tables:", err)
	}

	// Seed staff, floor plan and catalog
	if err := migrations.Seed(db); err != nil {
		log.Fatal("Failed to seed database:", err)
	}

	fmt.Println("Database initialized successfully!")
}
