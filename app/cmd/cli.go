package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/threadline/storefront/app/configs"
	"github.com/threadline/storefront/app/db/seeders"
	"github.com/threadline/storefront/app/models/migrations"
	"github.com/threadline/storefront/app/utils/format"
	"github.com/urfave/cli/v3"
)

func RunCli(env configs.ENV) {
	cmd := &cli.Command{
		Name:  "storefront",
		Usage: "Apparel storefront server and maintenance tasks",
		Action: func(ctx context.Context, c *cli.Command) error {
			return Serve(env)
		},
		Commands: []*cli.Command{
			{
				Name:  "serve",
				Usage: "Start the HTTP server",
				Action: func(ctx context.Context, c *cli.Command) error {
					return Serve(env)
				},
			},
			{
				Name:  "migrate",
				Usage: "Run database migration",
				Action: func(ctx context.Context, c *cli.Command) error {
					db, err := configs.OpenConnection(env)
					if err != nil {
						return err
					}
					if err := migrations.AutoMigrate(db); err != nil {
						return err
					}
					log.Println("✅ Migration complete")
					return nil
				},
			},
			{
				Name:  "generate-keys",
				Usage: "Generate new session authentication and encryption keys for .env",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "out", Usage: "also write the keys to this file"},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					if err := configs.GenerateSessionKeys(os.Stdout, c.String("out")); err != nil {
						return err
					}
					log.Println("✅ Key generation complete. Please copy the keys to your .env file.")
					return nil
				},
			},
			{
				Name:  "seed",
				Usage: "Seed categories, products and an admin account",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "products", Value: 5, Usage: "products per category"},
					&cli.StringFlag{Name: "admin-email", Value: "admin@threadline.local"},
					&cli.StringFlag{Name: "admin-password", Sources: cli.EnvVars("SEED_ADMIN_PASSWORD"), Value: "admin12345"},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					db, err := configs.OpenConnection(env)
					if err != nil {
						return err
					}
					if err := seeders.DBSeed(db.WithContext(ctx), seeders.Options{
						ProductsPerCategory: int(c.Int("products")),
						AdminEmail:          c.String("admin-email"),
						AdminPassword:       c.String("admin-password"),
					}); err != nil {
						return err
					}
					log.Println("✅ Seeding complete")
					return nil
				},
			},
			{
				Name:  "reconcile",
				Usage: "Retry recording orders for captured payments that failed to save",
				Action: func(ctx context.Context, c *cli.Command) error {
					app, err := NewApp(env)
					if err != nil {
						return err
					}
					defer app.Close()

					summary, err := app.CheckoutSvc.ReconcilePending(ctx)
					if err != nil {
						return err
					}
					log.Printf("✅ Reconciliation done: %d resolved, %d failed, %d skipped",
						summary.Resolved, summary.Failed, summary.Skipped)
					return nil
				},
			},
			{
				Name:  "report",
				Usage: "Print the sales analytics for a period as JSON",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "type", Usage: "all, month, today or range"},
					&cli.StringFlag{Name: "month", Usage: `month label, e.g. "March 2026"`},
					&cli.StringFlag{Name: "start", Usage: "range start, YYYY-MM-DD"},
					&cli.StringFlag{Name: "end", Usage: "range end, YYYY-MM-DD"},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					app, err := NewApp(env)
					if err != nil {
						return err
					}
					defer app.Close()

					filter, err := app.ReportSvc.ParseFilter(c.String("type"), c.String("month"), c.String("start"), c.String("end"))
					if err != nil {
						return err
					}
					report, err := app.ReportSvc.Dashboard(ctx, filter)
					if err != nil {
						return err
					}

					out, err := json.MarshalIndent(report, "", "  ")
					if err != nil {
						return fmt.Errorf("failed to encode report: %w", err)
					}
					fmt.Println(string(out))
					log.Printf("✅ %s: %d orders, revenue %s", report.Period,
						report.Summary.TotalOrders, format.Price(report.Summary.TotalRevenue))
					return nil
				},
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
