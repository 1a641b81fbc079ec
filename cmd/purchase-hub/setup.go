package main

import (
	"context"
	"crypto/rand"
	"database/sql"
	"fmt"
	"math/big"
	"os"

	"golang.org/x/crypto/bcrypt"

	"github.com/setthawutitd-beep/Purchase-Hub/internal/db"
	"github.com/setthawutitd-beep/Purchase-Hub/internal/model"
	"github.com/setthawutitd-beep/Purchase-Hub/internal/store"
)

// initDatabase creates the database file with its schema and an admin
// account, returning the generated admin password. A failed setup leaves no
// file behind.
func initDatabase(ctx context.Context, path, adminUser string) (password string, err error) {
	database, err := db.Open(path)
	if err != nil {
		return "", err
	}
	defer func() {
		database.Close()
		if err != nil {
			os.Remove(path)
		}
	}()

	if err := db.EnsureSchema(database); err != nil {
		return "", err
	}
	password, err = generatePassword(16)
	if err != nil {
		return "", fmt.Errorf("generating password: %w", err)
	}
	if err := createAdmin(ctx, database, adminUser, password); err != nil {
		return "", err
	}
	return password, nil
}

func createAdmin(ctx context.Context, q store.Querier, username, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}
	if _, err := store.CreateUser(ctx, q, username, string(hash), model.RoleAdmin); err != nil {
		return fmt.Errorf("creating admin user: %w", err)
	}
	return nil
}

func printInitResult(dbPath, username, password string) {
	fmt.Printf("Database created: %s\n\n", dbPath)
	fmt.Println("Admin account:")
	fmt.Printf("  Username: %s\n", username)
	fmt.Printf("  Password: %s\n\n", password)
	fmt.Println("The password is shown only once. Change it after the first login.")
}

const passwordCharset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789!@#$%&*"

// generatePassword returns a random password of the given length.
func generatePassword(length int) (string, error) {
	limit := big.NewInt(int64(len(passwordCharset)))
	out := make([]byte, length)
	for i := range out {
		n, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", err
		}
		out[i] = passwordCharset[n.Int64()]
	}
	return string(out), nil
}

// openDatabase opens an existing database and brings its schema up to date.
func openDatabase(path string) (*sql.DB, error) {
	database, err := db.Open(path)
	if err != nil {
		return nil, err
	}
	if err := db.EnsureSchema(database); err != nil {
		database.Close()
		return nil, err
	}
	return database, nil
}
