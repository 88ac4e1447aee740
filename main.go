package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/rasoilabs/rasoipos/config"
	"github.com/rasoilabs/rasoipos/events"
	"github.com/rasoilabs/rasoipos/gateway"
	"github.com/rasoilabs/rasoipos/printer"
	"github.com/rasoilabs/rasoipos/router"
	"github.com/rasoilabs/rasoipos/services"
	"github.com/rasoilabs/rasoipos/store"
	"github.com/rasoilabs/rasoipos/utils"
)

func main() {
	utils.InitLogger()

	root := &cobra.Command{
		Use:           "rasoipos",
		Short:         "Offline-first restaurant point of sale",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newServeCommand(), newSyncCommand(), newMigrateCommand())

	if err := root.Execute(); err != nil {
		utils.ErrorLogger.Fatalf("rasoipos: %v", err)
	}
}

// app bundles what the commands share once configuration is loaded and
// the database is open. engine and scheduler stay nil when no gateway
// URL is configured; the device then runs purely offline.
type app struct {
	cfg       *config.Config
	store     *store.Store
	hub       *events.Hub
	locks     *services.LockTable
	credits   *services.CreditService
	orders    *services.OrderService
	engine    *services.SyncEngine
	scheduler *services.SyncScheduler
}

func buildApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	utils.SetLogLevel(cfg.LogLevel)
	utils.InitJWT(cfg.Auth.JWTSecret)

	st, err := store.Open(cfg.DB.Driver, cfg.DB.DSN)
	if err != nil {
		return nil, err
	}

	a := &app{
		cfg:   cfg,
		store: st,
		hub:   events.NewHub(),
		locks: services.NewLockTable(),
	}
	a.credits = services.NewCreditService(st, a.locks)
	a.orders = services.NewOrderService(st, a.locks, printer.NewConsole(printerWidth(st, cfg.TenantID)), a.hub, a.credits)

	if cfg.Sync.GatewayURL != "" {
		tokens := gateway.TokenFunc(func(tenantID string) (string, error) {
			return utils.SignGatewayToken(cfg.Sync.Secret, tenantID)
		})
		client := gateway.NewHTTPClient(cfg.Sync.GatewayURL, cfg.Sync.ClassTimeout.Std(), tokens)
		a.engine = services.NewSyncEngine(st, client, a.locks, a.hub, cfg.Sync.ClassTimeout.Std())
		a.scheduler = services.NewSyncScheduler(a.engine, cfg.TenantID, cfg.Sync.Interval.Std())
	}
	return a, nil
}

func (a *app) Close() {
	if err := a.store.Close(); err != nil {
		utils.ErrorLogger.Printf("closing database: %v", err)
	}
}

// printerWidth reads the configured ticket width from the device
// settings row. Missing row or zero width means the renderer default.
func printerWidth(st *store.Store, tenantID string) int {
	settings, err := st.Repos().RestaurantSettings.Get(context.Background(), tenantID, tenantID)
	if err != nil {
		return 0
	}
	return settings.PrinterWidth
}

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the POS API server and the background sync scheduler",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp()
			if err != nil {
				return err
			}
			defer a.Close()

			if a.cfg.GinMode == "release" {
				gin.SetMode(gin.ReleaseMode)
			}

			if a.scheduler != nil {
				a.scheduler.Start()
				defer a.scheduler.Stop()
			} else {
				utils.InfoLogger.Println("No sync gateway configured, running fully offline")
			}

			r := router.SetupRouter(router.Deps{
				Store:     a.store,
				Orders:    a.orders,
				Credits:   a.credits,
				Scheduler: a.scheduler,
				Hub:       a.hub,
				TenantID:  a.cfg.TenantID,
			})

			utils.InfoLogger.Printf("Listening on port %s (tenant %s)", a.cfg.Port, a.cfg.TenantID)
			return r.Run(":" + a.cfg.Port)
		},
	}
}

func newSyncCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Run one sync round against the gateway and print the report",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp()
			if err != nil {
				return err
			}
			defer a.Close()

			if a.engine == nil {
				return fmt.Errorf("no sync gateway configured (set SYNC_GATEWAY_URL)")
			}

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			report, runErr := a.engine.Run(ctx, a.cfg.TenantID)
			if report != nil {
				if err := printReport(cmd, report, asJSON); err != nil {
					return err
				}
			}
			return runErr
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the report as JSON")
	return cmd
}

func newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema and exit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			utils.SetLogLevel(cfg.LogLevel)

			st, err := store.Open(cfg.DB.Driver, cfg.DB.DSN)
			if err != nil {
				return err
			}
			defer st.Close()

			fmt.Fprintln(cmd.OutOrStdout(), "Schema migrated.")
			return nil
		},
	}
}

func printReport(cmd *cobra.Command, report *services.SyncReport, asJSON bool) error {
	out := cmd.OutOrStdout()

	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}

	fmt.Fprintf(out, "Sync round for tenant %s (initial=%v)\n", report.TenantID, report.Initial)
	for _, c := range report.Classes {
		status := "ok"
		if !c.Clean() {
			status = "FAILED"
		}
		fmt.Fprintf(out, "  %-22s up=%-4d down=%-4d applied=%-4d skipped=%-4d %s\n",
			c.Class, c.Uploaded, c.Downloaded, c.Applied, c.Skipped, status)
		for _, e := range c.Errors {
			fmt.Fprintf(out, "      %s\n", e)
		}
	}
	fmt.Fprintf(out, "Took %s, clean=%v, marker advanced=%v\n",
		report.FinishedAt.Sub(report.StartedAt).Round(time.Millisecond), report.Clean, report.MarkerAdvanced)
	return nil
}
