// Command migrate manages the Postgres schema shared by the storefront
// services and seeds tenant payment profiles for local setups.
package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/urfave/cli/v2"
	"github.com/yashrajoria/storefront/services/common/auth"
	common "github.com/yashrajoria/storefront/services/common/config"
	"github.com/yashrajoria/storefront/services/common/database"
	"github.com/yashrajoria/storefront/services/common/logger"
	"github.com/yashrajoria/storefront/services/common/tenants"
	notifmodels "github.com/yashrajoria/storefront/services/notification-service/models"
	ordermodels "github.com/yashrajoria/storefront/services/order-service/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type dbConfig struct {
	Env      string                  `envconfig:"APP_ENV" default:"development"`
	Postgres database.PostgresConfig `envconfig:"POSTGRES"`
}

// models is every table owned by this repository.
func models() []interface{} {
	return []interface{}{
		&tenants.Profile{},
		&ordermodels.Order{},
		&notifmodels.NotificationLog{},
	}
}

func connect(c *cli.Context) (*gorm.DB, *zap.Logger, error) {
	var cfg dbConfig
	if err := common.Load(&cfg); err != nil {
		return nil, nil, err
	}
	if err := cfg.Postgres.Validate(); err != nil {
		return nil, nil, err
	}
	log, err := logger.New(cfg.Env, "migrate", nil)
	if err != nil {
		return nil, nil, err
	}
	db, err := database.ConnectPostgres(log, cfg.Postgres)
	if err != nil {
		return nil, nil, err
	}
	return db.WithContext(c.Context), log, nil
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "migrate",
		Usage: "schema and seed tooling for the storefront database",
		Commands: []*cli.Command{
			{
				Name:  "up",
				Usage: "create or update all tables",
				Action: func(c *cli.Context) error {
					db, log, err := connect(c)
					if err != nil {
						return err
					}
					defer database.Close(db) //nolint:errcheck
					if err := db.AutoMigrate(models()...); err != nil {
						return fmt.Errorf("auto migrate: %w", err)
					}
					log.Info("Schema is up to date", zap.Int("tables", len(models())))
					return nil
				},
			},
			{
				Name:  "seed-tenant",
				Usage: "create or update a tenant payment profile",
				Flags: []cli.Flag{
					&cli.Int64Flag{Name: "tenant-id", Required: true},
					&cli.StringFlag{Name: "store-name", Required: true},
					&cli.StringFlag{Name: "owner-email"},
				},
				Action: func(c *cli.Context) error {
					db, log, err := connect(c)
					if err != nil {
						return err
					}
					defer database.Close(db) //nolint:errcheck

					profile := tenants.Profile{
						TenantID:   c.Int64("tenant-id"),
						StoreName:  c.String("store-name"),
						OwnerEmail: c.String("owner-email"),
					}
					// external_account_id is left alone; onboarding owns it.
					err = db.Clauses(clause.OnConflict{
						Columns:   []clause.Column{{Name: "tenant_id"}},
						DoUpdates: clause.AssignmentColumns([]string{"store_name", "owner_email", "updated_at"}),
					}).Create(&profile).Error
					if err != nil {
						return fmt.Errorf("seed tenant %d: %w", profile.TenantID, err)
					}
					log.Info("Tenant profile seeded", zap.Int64("tenant_id", profile.TenantID))
					return nil
				},
			},
			{
				Name:  "issue-token",
				Usage: "print an admin access token for a tenant (requires JWT_SECRET)",
				Flags: []cli.Flag{
					&cli.Int64Flag{Name: "tenant-id", Required: true},
					&cli.DurationFlag{Name: "ttl", Value: 24 * time.Hour},
				},
				Action: func(c *cli.Context) error {
					parser, err := auth.NewTokenParser(os.Getenv("JWT_SECRET"))
					if err != nil {
						return err
					}
					token, err := parser.IssueTenantToken(c.Int64("tenant-id"), c.Duration("ttl"))
					if err != nil {
						return err
					}
					_, err = fmt.Fprintln(c.App.Writer, token)
					return err
				},
			},
		},
	}
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
