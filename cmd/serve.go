package cmd

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"delivery-tracker/core/config"
	"delivery-tracker/core/loader"
	"delivery-tracker/core/logger"
	"delivery-tracker/core/middleware/auth"
	"delivery-tracker/core/middleware/rayid"
	"delivery-tracker/feature/schedule"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the reconciliation HTTP server",
	Long:  `Starts the HTTP server and exposes the schedule reconciliation routes.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.LoadConfig(configPath)
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}

		logg, err := logger.New(&cfg.Log)
		if err != nil {
			log.Fatalf("Failed to initialize logger: %v", err)
		}
		defer logg.Sync()
		zap.ReplaceGlobals(logg)

		// Without a database persisted runs only write the output file.
		svc, err := buildService(cfg, logg, cfg.Database.Enabled)
		if err != nil && cfg.Database.Enabled {
			logg.Warn("Optional database connection failed", zap.Error(err))
			svc, err = buildService(cfg, logg, false)
		}
		if err != nil {
			logg.Fatal("Failed to initialize schedule service", zap.Error(err))
		}

		app := fiber.New(fiber.Config{
			DisableStartupMessage: true,
		})

		mgr := loader.NewManager(logg)
		mgr.Register(schedule.NewFeature(svc))

		// RayID first so every log line carries it.
		app.Use(rayid.New())

		app.Use(func(c *fiber.Ctx) error {
			l := logger.WithRayID(logg, c)
			l.Info("Request started",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.String("ip", c.IP()),
			)
			err := c.Next()
			if err != nil {
				l.Error("Request error", zap.Error(err))
			}
			return err
		})

		app.Use(auth.New(auth.Config{ApiKey: cfg.Server.ApiKey}))
		if !cfg.Server.AuthEnabled() {
			logg.Warn("API key not set, routes are unauthenticated")
		}

		if err := mgr.LoadAll(app); err != nil {
			logg.Fatal("Failed to load features", zap.Error(err))
		}

		go func() {
			logg.Info("Starting server", zap.String("addr", cfg.Server.Addr()))
			if err := app.Listen(cfg.Server.Addr()); err != nil {
				logg.Fatal("Server failed to start", zap.Error(err))
			}
		}()

		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt, syscall.SIGTERM)
		<-c
		logg.Info("Shutting down server...")
		_ = app.Shutdown()
	},
}

func init() {
	RootCmd.AddCommand(serveCmd)
}
