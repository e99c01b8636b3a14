// Command createadmin creates an administrator account from the command
// line, for bootstrapping a fresh install.
package main

import (
	"flag"
	"fmt"
	"os"

	"tonequest/internal/config"
	"tonequest/internal/database"
	"tonequest/internal/models"
	"tonequest/internal/repository"
	"tonequest/internal/security"
	"tonequest/internal/validation"
)

func main() {
	username := flag.String("username", "", "admin username")
	password := flag.String("password", "", "admin password")
	email := flag.String("email", "", "admin email (optional)")
	flag.Parse()

	if *username == "" || *password == "" {
		fmt.Fprintln(os.Stderr, "usage: createadmin -username NAME -password PASSWORD [-email EMAIL]")
		os.Exit(2)
	}
	if err := validation.Username(*username); err != nil {
		fatal(err)
	}
	if err := validation.Password(*password); err != nil {
		fatal(err)
	}
	if *email != "" {
		if err := validation.Email(*email); err != nil {
			fatal(err)
		}
	}

	cfg := config.Load()
	db, err := database.InitializeWithConfig(cfg)
	if err != nil {
		fatal(fmt.Errorf("initializing database: %w", err))
	}
	defer db.Close()

	if err := db.RunMigrations(cfg.MigrationsPath); err != nil {
		fatal(fmt.Errorf("running migrations: %w", err))
	}

	userRepo := repository.NewUserRepository(db)

	existing, err := userRepo.GetUserByUsername(*username)
	if err != nil {
		fatal(err)
	}
	if existing != nil {
		fatal(fmt.Errorf("username %q is already taken", *username))
	}

	hash, err := security.HashPassword(*password)
	if err != nil {
		fatal(err)
	}

	user, err := userRepo.CreateUser(*username, hash, models.RoleAdmin, *email)
	if err != nil {
		fatal(fmt.Errorf("creating admin: %w", err))
	}

	fmt.Printf("admin account created: %s (%s)\n", user.Username, user.ID)
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, "error:", err)
	os.Exit(1)
}
