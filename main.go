package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/yeremiapane/table-order/config"
	"github.com/yeremiapane/table-order/database"
	"github.com/yeremiapane/table-order/middlewares"
	"github.com/yeremiapane/table-order/realtime"
	"github.com/yeremiapane/table-order/router"
	"github.com/yeremiapane/table-order/services"
	"github.com/yeremiapane/table-order/utils"
	"gorm.io/gorm"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		utils.ErrorLogger.Fatal(err)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "table-order",
		Short:         "QR table ordering service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newServeCmd(), newMigrateCmd(), newSeedCmd())
	return root
}

// bootstrap -> load config, set logger & JWT, buka database
func bootstrap() (*config.Config, *gorm.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	utils.SetLogLevel(cfg.LogLevel)
	utils.SetJWTSecret(cfg.JWTSecret, cfg.TokenTTL)

	db, err := config.InitDB(cfg)
	if err != nil {
		return nil, nil, err
	}
	return cfg, db, nil
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP and websocket server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, db, err := bootstrap()
			if err != nil {
				return err
			}
			if err := database.Migrate(db); err != nil {
				return err
			}
			return serve(cmd.Context(), cfg, db)
		},
	}
}

func serve(ctx context.Context, cfg *config.Config, db *gorm.DB) error {
	if cfg.GinMode == gin.ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	}

	hub := realtime.NewHub()
	defer hub.Close()

	if cfg.NATSURL != "" {
		bridge, err := realtime.NewNATSBridge(cfg.NATSURL, hub)
		if err != nil {
			// tetap jalan sebagai single instance
			utils.ErrorLogger.Printf("Realtime bridge disabled: %v", err)
		} else {
			defer bridge.Close()
		}
	}

	monitor := services.NewChangeMonitor(db, hub, cfg.ChangeMonitorInterval)
	monitor.Start()
	defer monitor.Stop()

	r := router.SetupRouter(router.Options{
		DB:            db,
		Hub:           hub,
		CORSOrigin:    cfg.CORSOrigin,
		PublicBaseURL: cfg.PublicBaseURL,
		RateLimiter:   middlewares.NewRateLimiter(cfg.RateLimit, cfg.RateLimitWindow),
	})
	r.SetTrustedProxies(nil)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		utils.InfoLogger.Printf("Listening on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	utils.InfoLogger.Println("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	// hub ditutup dulu supaya koneksi websocket ikut selesai
	hub.Close()
	return srv.Shutdown(shutdownCtx)
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, db, err := bootstrap()
			if err != nil {
				return err
			}
			return database.Migrate(db)
		},
	}
}

func newSeedCmd() *cobra.Command {
	var tables int
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Seed the admin account, the starter menu and tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, db, err := bootstrap()
			if err != nil {
				return err
			}
			if err := database.Migrate(db); err != nil {
				return err
			}

			ctx := cmd.Context()
			if cfg.AdminPassword != "" {
				if err := services.SeedAdmin(ctx, db, cfg.AdminUsername, cfg.AdminPassword); err != nil {
					return err
				}
			} else {
				utils.InfoLogger.Println("ADMIN_PASSWORD not set, skipping admin account")
			}
			if _, err := services.SeedMenu(ctx, db); err != nil {
				return err
			}
			_, err = services.SeedTables(ctx, db, tables, cfg.PublicBaseURL)
			return err
		},
	}
	cmd.Flags().IntVar(&tables, "tables", 10, "number of tables to create when none exist")
	return cmd
}
