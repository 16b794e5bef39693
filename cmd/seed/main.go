// Command seed creates the development users, or wipes the users table
// with --clear.
package main

import (
	"bufio"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"

	"auth-backend/internal/config"
	"auth-backend/internal/password"
	"auth-backend/internal/user"
)

var seedUsers = []struct {
	email     string
	password  string
	firstName string
	lastName  string
}{
	{"test@example.com", "password123", "Test", "User"},
	{"john.doe@example.com", "password123", "John", "Doe"},
	{"jane.smith@example.com", "password123", "Jane", "Smith"},
}

func main() {
	clear := flag.Bool("clear", false, "delete all users instead of seeding")
	flag.Parse()

	_ = godotenv.Load()
	cfg := config.Load()
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is not set")
	}

	db, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		log.Fatalf("ping database: %v", err)
	}

	repo := user.NewPostgresRepository(db)
	if err := repo.EnsureSchema(); err != nil {
		log.Fatalf("ensure schema: %v", err)
	}

	if *clear {
		clearUsers(db)
		return
	}

	hasher, err := password.New(cfg.HashMethod, cfg.HashIterations)
	if err != nil {
		log.Fatalf("password config: %v", err)
	}
	service := user.NewService(repo, hasher)

	created, skipped := 0, 0
	for _, su := range seedUsers {
		if _, err := service.Register(su.email, su.password, su.firstName, su.lastName); err != nil {
			if errors.Is(err, user.ErrEmailExists) {
				log.Printf("skipped: %s (already exists)", su.email)
				skipped++
				continue
			}
			log.Fatalf("create %s: %v", su.email, err)
		}
		log.Printf("created: %s (password: %s)", su.email, su.password)
		created++
	}

	log.Printf("seeding complete: created %d, skipped %d", created, skipped)
}

// clearUsers deletes every user after an interactive confirmation.
func clearUsers(db *sql.DB) {
	fmt.Print("WARNING: this will delete ALL users! Type 'DELETE' to confirm: ")
	answer, _ := bufio.NewReader(os.Stdin).ReadString('\n')
	if strings.TrimSpace(answer) != "DELETE" {
		fmt.Println("operation cancelled")
		return
	}

	res, err := db.Exec(`DELETE FROM users`)
	if err != nil {
		log.Fatalf("delete users: %v", err)
	}
	n, _ := res.RowsAffected()
	log.Printf("deleted %d users", n)
}
