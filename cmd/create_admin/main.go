package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/neuralblades/platinum-V1-sub000/internal/config"
	"github.com/neuralblades/platinum-V1-sub000/internal/database"
	"github.com/neuralblades/platinum-V1-sub000/internal/domain"
	"github.com/neuralblades/platinum-V1-sub000/internal/util"
)

func main() {
	email := flag.String("email", "admin@platinumproperties.ae", "admin email address")
	password := flag.String("password", "", "admin password (required)")
	name := flag.String("name", "System Administrator", "admin display name")
	flag.Parse()

	if *password == "" {
		log.Fatal("-password is required")
	}
	if len(*password) < 8 {
		log.Fatal("password must be at least 8 characters")
	}

	// Load configuration
	if _, err := config.Load(); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize database
	if err := database.Init(); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	db := database.GetDB()

	// Check if the account already exists
	var existingUser domain.User
	if err := db.Where("email = ?", *email).First(&existingUser).Error; err == nil {
		fmt.Println("User with that email already exists!")
		return
	}

	hashedPassword, err := util.HashPassword(*password)
	if err != nil {
		log.Fatalf("Failed to hash password: %v", err)
	}

	adminUser := domain.User{
		Name:           *name,
		Email:          *email,
		HashedPassword: hashedPassword,
		Role:           domain.RoleAdmin,
		IsActive:       true,
	}

	if err := db.Create(&adminUser).Error; err != nil {
		log.Fatalf("Failed to create admin user: %v", err)
	}

	fmt.Println("Admin user created successfully!")
	fmt.Printf("Email: %s\n", *email)
	fmt.Println("Please change the password after first login!")
}
