// Command createadmin creates (or promotes) an admin account directly
// in the user collection, bypassing the email verification flow.
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"strings"
	"time"

	"rishta/config"
	"rishta/database"
	"rishta/models"
	"rishta/store"

	"golang.org/x/crypto/bcrypt"
)

func main() {
	email := flag.String("email", "", "admin email address")
	password := flag.String("password", "", "admin password")
	firstName := flag.String("first-name", "Admin", "first name")
	lastName := flag.String("last-name", "User", "last name")
	flag.Parse()

	if *email == "" || *password == "" {
		log.Fatal("both -email and -password are required")
	}

	cfg := config.Load()

	if err := database.ConnectMongo(cfg.MongoURI, cfg.DatabaseName); err != nil {
		log.Fatal("Failed to connect to MongoDB: ", err)
	}
	defer func() {
		if err := database.DisconnectMongo(); err != nil {
			log.Println("MongoDB disconnect error: ", err)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	users := store.NewMongoUserStore(database.Users)
	addr := strings.ToLower(strings.TrimSpace(*email))

	hashed, err := bcrypt.GenerateFromPassword([]byte(*password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatal("Failed to hash password: ", err)
	}

	existing, err := users.FindByEmail(ctx, addr)
	switch {
	case err == nil:
		existing.Password = string(hashed)
		existing.IsAdmin = true
		if err := users.Replace(ctx, existing); err != nil {
			log.Fatal("Failed to promote existing user: ", err)
		}
		log.Printf("Promoted existing user %s to admin", addr)
	case errors.Is(err, store.ErrNotFound):
		now := time.Now()
		admin := &models.User{
			FirstName:    *firstName,
			LastName:     *lastName,
			Email:        addr,
			Password:     string(hashed),
			DateOfBirth:  time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC),
			Gender:       "male",
			IsAdmin:      true,
			Languages:    []string{},
			CustomFields: map[string]string{},
			Tags:         []string{},
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := users.Insert(ctx, admin); err != nil {
			log.Fatal("Failed to create admin user: ", err)
		}
		log.Printf("Created admin user %s", addr)
	default:
		log.Fatal("Failed to look up user: ", err)
	}
}
