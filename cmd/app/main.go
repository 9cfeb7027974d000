package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/urfave/cli/v2"
	"go.uber.org/fx"

	"colabora/cmd/fx/account_fx"
	"colabora/cmd/fx/config_fx"
	"colabora/cmd/fx/controllers_fx"
	"colabora/cmd/fx/dashboard"
	"colabora/cmd/fx/db_fx"
	"colabora/cmd/fx/donation_fx"
	"colabora/cmd/fx/logger_fx"
	"colabora/cmd/fx/mail_fx"
	"colabora/cmd/fx/memcache_fx"
	"colabora/cmd/fx/notifier_fx"
	"colabora/cmd/fx/payment_service_fx"
	"colabora/internal/api/controllers"
	"colabora/internal/config"
	"colabora/internal/infra"
	"colabora/internal/models/db_models"
	"colabora/internal/models/request_models"
	"colabora/internal/repositories"
	"colabora/internal/services"
	"colabora/pkg/logger"
	"colabora/pkg/middleware"
	"colabora/pkg/utils"
)

func main() {
	app := &cli.App{
		Name:  "colabora",
		Usage: "Donation backend: payment forms, provider webhooks and the donor ledger",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "development", Aliases: []string{"D"}, Usage: "Development mode"},
			&cli.StringFlag{Name: "postgres-url", Usage: "Postgres DSN (overrides POSTGRES_URL)"},
		},
		Commands: []*cli.Command{
			{
				Name:  "serve",
				Usage: "Run the HTTP API",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "port", Aliases: []string{"p"}, Usage: "HTTP port (overrides PORT)"},
				},
				Action: serve,
			},
			{
				Name:   "migrate",
				Usage:  "Create or update the database schema",
				Action: migrate,
			},
			{
				Name:  "create-admin",
				Usage: "Create a dashboard admin account",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "email", Aliases: []string{"e"}, Required: true},
					&cli.StringFlag{Name: "password", Usage: "At least 8 characters (or ADMIN_PASSWORD)", EnvVars: []string{"ADMIN_PASSWORD"}, Required: true},
					&cli.StringFlag{Name: "name", Aliases: []string{"n"}},
				},
				Action: createAdmin,
			},
		},
		DefaultCommand: "serve",
	}

	if err := app.Run(os.Args); err != nil {
		zl, logErr := logger.NewLogger(false)
		if logErr != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		zl.Fatal("colabora exited", "error", err)
	}
}

func loadConfig(c *cli.Context) (config.Config, error) {
	cfg := config.Read()

	// Override with flags if set
	if c.IsSet("development") {
		cfg.Development = c.Bool("development")
		if cfg.Development && cfg.Auth.JWTSecret == "" {
			cfg.Auth.JWTSecret = "colabora-local-dev"
		}
	}
	if c.IsSet("postgres-url") {
		cfg.Database.URL = c.String("postgres-url")
	}
	if c.IsSet("port") {
		cfg.Server.Port = c.Int("port")
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func serve(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	if !cfg.Development {
		gin.SetMode(gin.ReleaseMode)
	}

	app := fx.New(
		config_fx.Module(cfg),
		logger_fx.Module,
		db_fx.Module,
		mail_fx.Module,
		notifier_fx.Module,
		memcache_fx.Module,
		payment_service_fx.Module,
		account_fx.Module,
		donation_fx.Module,
		dashboard.Module,
		controllers_fx.Module,

		fx.Provide(ProvideRouter),
		fx.Invoke(StartServer),
	)

	app.Run()
	return app.Err()
}

func migrate(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	zl, err := logger.NewLogger(cfg.Development)
	if err != nil {
		return err
	}
	defer zl.Sync()

	db, err := infra.InitPostgresql(cfg.Database.URL, zl)
	if err != nil {
		return err
	}
	defer infra.ClosePostgresql(db, zl)

	if err := infra.Migrate(db); err != nil {
		return err
	}
	zl.Info("schema is up to date")
	return nil
}

func createAdmin(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	zl, err := logger.NewLogger(cfg.Development)
	if err != nil {
		return err
	}
	defer zl.Sync()

	db, err := infra.InitPostgresql(cfg.Database.URL, zl)
	if err != nil {
		return err
	}
	defer infra.ClosePostgresql(db, zl)

	accounts := services.NewAccountService(
		repositories.NewAccountRepository(db),
		utils.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL),
		zl,
	)

	ctx, cancel := context.WithTimeout(c.Context, 30*time.Second)
	defer cancel()

	account, err := accounts.CreateAdmin(ctx, request_models.CreateAdminRequest{
		DisplayName: c.String("name"),
		Email:       c.String("email"),
		Password:    c.String("password"),
	})
	if err != nil {
		return fmt.Errorf("create admin: %w", err)
	}
	fmt.Printf("Admin %s created (%s)\n", account.Email, account.ID)
	return nil
}

func StartServer(lc fx.Lifecycle, cfg config.Config, engine *gin.Engine, zl *logger.Logger, shutdowner fx.Shutdowner) {
	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.Server.Port),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				zl.Info("Starting HTTP server", "addr", srv.Addr)
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					zl.Error("HTTP server stopped", "error", err)
					_ = shutdowner.Shutdown(fx.ExitCode(1))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			zl.Info("Stopping HTTP server")
			return srv.Shutdown(ctx)
		},
	})
}

func ProvideRouter(
	paymentController *controllers.PaymentController,
	accountController *controllers.AccountController,
	donationController *controllers.DonationController,
	dashboardController *controllers.DashboardController,
	tokens *utils.TokenIssuer,
	zl *logger.Logger) *gin.Engine {

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.TraceIDMiddleware())
	r.Use(middleware.RequestLogger(zl))
	r.Use(middleware.CORSMiddleware())

	RegisterRoutes(r, paymentController, accountController, donationController, dashboardController, tokens)

	return r
}

func RegisterRoutes(r *gin.Engine,
	paymentController *controllers.PaymentController,
	accountController *controllers.AccountController,
	donationController *controllers.DonationController,
	dashboardController *controllers.DashboardController,
	tokens *utils.TokenIssuer) {

	r.GET("/healthz", func(c *gin.Context) {
		utils.RespondSuccess(c, gin.H{"status": "ok"}, "")
	})

	api := r.Group("/api")

	donations := api.Group("/donations")
	donations.POST("/payment-intent", paymentController.CreatePaymentIntent)
	donations.POST("/checkout-session", paymentController.CreateCheckoutSession)
	donations.POST("/confirm", paymentController.Confirm)

	api.POST("/webhooks/stripe", paymentController.HandleWebhook)

	api.POST("/accounts/login", accountController.Login)

	admin := api.Group("/admin")
	admin.Use(middleware.JWTAuthMiddleware(tokens), middleware.RoleMiddleware(db_models.RoleAdmin))
	admin.GET("/donors", donationController.ListDonors)
	admin.GET("/donors/:id/donations", donationController.GetDonorDonations)
	admin.GET("/donations", donationController.ListDonations)
	admin.GET("/dashboard", dashboardController.GetDashboard)
}
