package main

import (
	"fmt"
	"log"
	"os"

	"codeberg.org/storefront/server/internal/auth"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

// prints an admin JWT for calling POST /viewers/cleanup by hand
func main() {
	// load environment
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found")
	}

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		log.Fatal("JWT_SECRET not set")
	}

	email := os.Getenv("TEST_ADMIN_EMAIL")
	if email == "" {
		email = "ops@storefront.test"
	}

	token, err := auth.GenerateJWT(secret, uuid.NewString(), email, true)
	if err != nil {
		log.Fatalf("Failed to generate JWT: %v", err)
	}

	fmt.Printf("\nAdmin JWT for %s:\n%s\n\n", email, token)
	fmt.Printf("Trigger a sweep:\ncurl -X POST -H \"Authorization: Bearer %s\" http://localhost:8080/viewers/cleanup\n", token)
}
