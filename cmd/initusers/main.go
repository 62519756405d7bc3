// Command initusers creates the schema and the three default accounts. It is
// safe to run repeatedly: existing usernames are left untouched.
package main

import (
	"context"
	"flag"
	"os"

	"github.com/charmbracelet/log"

	"absensi-server-go/auth"
	"absensi-server-go/config"
	"absensi-server-go/db"
	"absensi-server-go/models"
)

var defaultAccounts = []struct {
	username string
	role     models.Role
}{
	{"walikelas", models.RoleWalikelas},
	{"sekretaris", models.RoleSekretaris},
	{"orangtua", models.RoleOrangtua},
}

func main() {
	logger := log.NewWithOptions(os.Stderr, log.Options{Prefix: "initusers"})

	if _, err := config.LoadDotEnv(); err != nil {
		logger.Fatal("failed to read .env", "err", err)
	}
	dbPath := flag.String("db", config.GetEnv("DATABASE_PATH", "attendance.db"), "sqlite database file")
	password := flag.String("password", "password", "initial password for every seeded account")
	flag.Parse()

	conn, err := db.OpenSQLite(*dbPath)
	if err != nil {
		logger.Fatal("failed to open database", "err", err)
	}
	store := db.NewStore(conn, logger)
	defer store.Close()

	if err := seed(context.Background(), store, *password, logger); err != nil {
		logger.Fatal("provisioning failed", "err", err)
	}
}

func seed(ctx context.Context, store *db.Store, password string, logger *log.Logger) error {
	if err := store.Migrate(ctx); err != nil {
		return err
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	for _, acc := range defaultAccounts {
		created, err := store.EnsureUser(ctx, acc.username, hash, acc.role)
		if err != nil {
			return err
		}
		if created {
			logger.Info("created account", "username", acc.username, "role", acc.role)
		} else {
			logger.Info("account exists, skipped", "username", acc.username)
		}
	}
	return nil
}
