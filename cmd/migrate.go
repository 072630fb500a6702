package cmd

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shipliyo/smsgate/core/config"
	"github.com/shipliyo/smsgate/core/database"
	"github.com/shipliyo/smsgate/pkg/utils"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the message store schema and exit",
	RunE:  migrate,
}

func init() {
	migrateCmd.Flags().Duration("timeout", 30*time.Second, "give up after --timeout <duration>")
	rootCmd.AddCommand(migrateCmd)
}

func migrate(cmd *cobra.Command, _ []string) error {
	timeout, _ := cmd.Flags().GetDuration("timeout")
	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	cfg := config.Global
	logrus.Infof("[MIGRATION] Preparing %s message store...", cfg.Database.Driver)

	if err := preflight(ctx, cfg); err != nil {
		return err
	}

	repo, err := openMessageStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := repo.Close(context.Background()); err != nil {
			logrus.WithError(err).Warn("[MIGRATION] failed to close message store")
		}
	}()

	logrus.Info("[MIGRATION] Message store schema is up to date.")
	return nil
}

// preflight reaches the relational server with the plain database/sql driver
// so connection problems are reported before gorm wraps them.
func preflight(ctx context.Context, cfg *config.Config) error {
	var driverName, dsn string
	switch cfg.Database.Driver {
	case "postgres":
		driverName, dsn = "postgres", database.PostgresDSN(cfg)
	case "sqlite", "":
		if err := utils.EnsureParentDir(cfg.Database.Name); err != nil {
			return err
		}
		driverName, dsn = "sqlite3", database.SQLiteDSN(cfg.Database.Name)
	default:
		return nil
	}

	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return fmt.Errorf("open %s: %w", driverName, err)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("cannot reach %s database %q: %w", cfg.Database.Driver, cfg.Database.Name, err)
	}
	return nil
}
