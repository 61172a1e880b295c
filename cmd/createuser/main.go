// SPDX-License-Identifier: GPL-3.0-only

// Command createuser adds an account to the local identity store so the
// deletion flow can be exercised without an external provider.
package main

import (
	"flag"
	"strings"

	"deletion-server/commons"
	"deletion-server/crypto"
	"deletion-server/db"
	"deletion-server/models"
)

func main() {
	email := flag.String("email", "", "Account email (required)")
	password := flag.String("password", "", "Account password (required)")
	flag.String("env-file", "", "Optional env file to load")
	flag.Parse()

	commons.LoadEnvFile()
	commons.InitLogger()

	if *email == "" || *password == "" {
		commons.Logger.Fatal("Flags -email and -password are required.")
	}

	cfg, err := commons.LoadConfig()
	if err != nil {
		commons.Logger.Fatalf("Invalid configuration: %v", err)
	}
	if cfg.Identity.Provider != "local" {
		commons.Logger.Fatalf("IDENTITY_PROVIDER is %q; users can only be created in the local store", cfg.Identity.Provider)
	}

	conn, err := db.Open(cfg.DB)
	if err != nil {
		commons.Logger.Fatalf("Failed to connect to database: %v", err)
	}
	if err := db.Migrate(conn); err != nil {
		commons.Logger.Fatal(err)
	}

	hash, err := crypto.NewCrypto().HashPassword(*password)
	if err != nil {
		commons.Logger.Fatalf("Failed to hash password: %v", err)
	}
	user := models.User{Email: strings.ToLower(strings.TrimSpace(*email)), Password: hash}
	if err := conn.Create(&user).Error; err != nil {
		commons.Logger.Fatalf("Failed to create user: %v", err)
	}
	commons.Logger.Infof("Created user %s (%s)", user.ID, user.Email)
}
