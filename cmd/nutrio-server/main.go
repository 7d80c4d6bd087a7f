package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/nutrio/nutrio/internal/config"
	"github.com/nutrio/nutrio/internal/domain/identity"
	"github.com/nutrio/nutrio/internal/domain/invite"
	"github.com/nutrio/nutrio/internal/domain/patient"
	"github.com/nutrio/nutrio/internal/domain/prescription"
	"github.com/nutrio/nutrio/internal/platform/auth"
	"github.com/nutrio/nutrio/internal/platform/db"
	"github.com/nutrio/nutrio/internal/platform/mail"
	"github.com/nutrio/nutrio/internal/platform/middleware"
	"github.com/nutrio/nutrio/internal/platform/validation"
	"github.com/nutrio/nutrio/pkg/apperrors"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "nutrio-server",
		Short: "Clinical nutrition record API server",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(seedCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			migrator := db.NewMigrator(pool, dir)
			count, err := migrator.Up(ctx)
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}

			fmt.Printf("Applied %d migration(s) successfully.\n", count)
			return nil
		},
	}
	upCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(upCmd)

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			migrator := db.NewMigrator(pool, dir)
			statuses, err := migrator.Status(ctx)
			if err != nil {
				return fmt.Errorf("failed to get migration status: %w", err)
			}

			fmt.Printf("%-10s %-40s %-10s %s\n", "VERSION", "NAME", "STATUS", "APPLIED AT")
			fmt.Println("---------- ---------------------------------------- ---------- --------------------")
			for _, s := range statuses {
				status := "pending"
				appliedAt := ""
				if s.Applied {
					status = "applied"
					if s.AppliedAt != nil {
						appliedAt = s.AppliedAt.Format("2006-01-02 15:04:05")
					}
				}
				fmt.Printf("%-10d %-40s %-10s %s\n", s.Version, s.Name, status, appliedAt)
			}
			return nil
		},
	}
	statusCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(statusCmd)

	return cmd
}

func seedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Seed initial data",
	}

	nutritionistCmd := &cobra.Command{
		Use:   "nutritionist",
		Short: "Create a nutritionist account",
		RunE: func(cmd *cobra.Command, args []string) error {
			name, _ := cmd.Flags().GetString("name")
			email, _ := cmd.Flags().GetString("email")
			password, _ := cmd.Flags().GetString("password")
			if name == "" || email == "" || password == "" {
				return fmt.Errorf("--name, --email and --password are required")
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			tokens, err := auth.NewTokenService(cfg.JWTSecret, cfg.TokenTTL())
			if err != nil {
				return err
			}
			svc := identity.NewService(identity.NewUserRepoPG(pool), tokens)
			user, err := svc.CreateNutritionist(ctx, name, email, password)
			if err != nil {
				return err
			}
			fmt.Printf("Created nutritionist %s (%s)\n", user.Name, user.ID)
			return nil
		},
	}
	nutritionistCmd.Flags().String("name", "", "Display name")
	nutritionistCmd.Flags().String("email", "", "Login email")
	nutritionistCmd.Flags().String("password", "", "Login password")
	cmd.AddCommand(nutritionistCmd)

	return cmd
}

// patientDirectory adapts the roster repository to the narrow lookup the
// prescription service needs, avoiding a package dependency between the
// two domains.
type patientDirectory struct {
	repo patient.Repository
}

func (d patientDirectory) PatientRef(ctx context.Context, id uuid.UUID) (*prescription.PatientRef, error) {
	p, err := d.repo.GetByID(ctx, id)
	if err != nil || p == nil {
		return nil, err
	}
	return &prescription.PatientRef{ID: p.ID, OwnerID: p.OwnerID}, nil
}

func runServer() error {
	// Logger
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if os.Getenv("ENV") == "development" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}

	// Config
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid configuration")
	}

	// Database
	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	logger.Info().Msg("connected to database")

	tokens, err := auth.NewTokenService(cfg.JWTSecret, cfg.TokenTTL())
	if err != nil {
		logger.Fatal().Err(err).Msg("token service setup failed")
	}

	// Echo server
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = apperrors.HTTPErrorHandler(logger)
	e.Validator = validation.New()

	// Global middleware
	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(middleware.SecurityHeaders())
	e.Use(middleware.BodyLimit(cfg.BodyLimitBytes))
	e.Use(middleware.RateLimit(middleware.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		BurstSize:         cfg.RateLimitBurst,
	}))
	e.Use(middleware.RequestTimeout(cfg.RequestTimeout()))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
	}))

	// Repositories
	userRepo := identity.NewUserRepoPG(pool)
	patientRepo := patient.NewRepoPG(pool)
	prescriptionRepo := prescription.NewRepoPG(pool)
	inviteRepo := invite.NewRepoPG(pool)

	// Services
	identitySvc := identity.NewService(userRepo, tokens)
	patientSvc := patient.NewService(patientRepo)
	prescriptionSvc := prescription.NewService(prescriptionRepo, patientDirectory{repo: patientRepo})

	var mailer mail.InviteMailer = mail.NopMailer{}
	if cfg.MailEnabled() {
		mailer, err = mail.NewSMTPMailer(mail.Config{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			From:     cfg.SMTPFrom,
			BaseURL:  cfg.InviteBaseURL,
		})
		if err != nil {
			logger.Fatal().Err(err).Msg("smtp mailer setup failed")
		}
		logger.Info().Str("host", cfg.SMTPHost).Msg("invite mail delivery enabled")
	} else {
		logger.Warn().Msg("SMTP not configured; invite emails disabled")
	}

	runTx := func(ctx context.Context, fn func(ctx context.Context) error) error {
		return db.WithTx(ctx, pool, fn)
	}
	inviteSvc := invite.NewService(inviteRepo, patientRepo, userRepo, mailer, runTx,
		time.Duration(cfg.InviteTTLHours)*time.Hour, logger)

	// Routes: the public group carries login and the invite token endpoints;
	// everything else requires a bearer token.
	public := e.Group("")
	api := e.Group("", auth.Bearer(tokens, identitySvc), middleware.Audit(logger))

	identity.NewHandler(identitySvc).RegisterRoutes(public, api)
	patient.NewHandler(patientSvc).RegisterRoutes(api)
	prescription.NewHandler(prescriptionSvc).RegisterRoutes(api)
	invite.NewHandler(inviteSvc).RegisterRoutes(public, api)

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	e.GET("/health/db", db.HealthHandler(pool))

	// Graceful shutdown
	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Msg("starting server")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Fatal().Err(err).Msg("server shutdown failed")
	}
	logger.Info().Msg("server stopped")
	return nil
}
