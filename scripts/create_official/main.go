package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	dbfs "github.com/garnizeh/empanel/db"
	"github.com/garnizeh/empanel/internal/config"
	"github.com/garnizeh/empanel/internal/db"
	"github.com/garnizeh/empanel/internal/repository/sqlite"
	"github.com/garnizeh/empanel/pkg/models"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Officials are not self-service: they are provisioned directly against the
// database with this tool.
func main() {
	email := flag.String("email", "", "Official's email address")
	mobile := flag.String("mobile", "", "Official's mobile number")
	password := flag.String("password", "", "Initial password")
	company := flag.String("company", "Dept. of Works", "Organization name")
	flag.Parse()

	if *email == "" || *mobile == "" || *password == "" {
		fmt.Fprintln(os.Stderr, "Usage: create_official -email ... -mobile ... -password ... [-company ...]")
		os.Exit(1)
	}

	ctx := context.Background()
	cfg, err := config.LoadConfig("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	database, err := db.New(ctx, cfg.DatabasePath, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "DB error: %v\n", err)
		os.Exit(1)
	}
	defer database.Close()

	if err := db.Migrate(ctx, database, dbfs.Migrations); err != nil {
		fmt.Fprintf(os.Stderr, "Migration error: %v\n", err)
		os.Exit(1)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(*password), bcrypt.DefaultCost)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Hash error: %v\n", err)
		os.Exit(1)
	}

	repo := sqlite.New(database, nil)
	account := &models.Account{
		PublicID:     "OFF-" + uuid.NewString(),
		Email:        *email,
		Mobile:       *mobile,
		PasswordHash: string(hash),
		CompanyName:  *company,
		IsOfficial:   true,
	}

	id, err := repo.CreateAccount(ctx, account)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Create error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Official account created: id=%d public_id=%s\n", id, account.PublicID)
}
