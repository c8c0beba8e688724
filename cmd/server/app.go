package main

import (
	"database/sql"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/fuuti/storefront-api/internal/config"
	"github.com/fuuti/storefront-api/internal/service"
	"github.com/fuuti/storefront-api/internal/service/auth"
)

// application holds the shared application dependencies so wiring happens in
// one place and cleanup runs in one place.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	txTimeout time.Duration

	jwtService auth.JWTService
	hasher     auth.PasswordHasher
	mailer     service.Mailer

	users     *service.UserService
	otps      *service.OTPService
	passwords *service.PasswordService
	sessions  *service.SessionService
	products  *service.ProductService
	orders    *service.OrderService
}

// newApplication connects the database, runs migrations and wires every
// service.
func newApplication(cfg *config.Config, appLogger *slog.Logger) (*application, error) {
	db, err := setupDatabase(cfg, appLogger)
	if err != nil {
		return nil, fmt.Errorf("setting up database: %w", err)
	}

	if err := runMigrations(db, appLogger); err != nil {
		closeDatabase(db, appLogger)
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	jwtService, err := auth.NewJWTService(cfg.Auth)
	if err != nil {
		closeDatabase(db, appLogger)
		return nil, fmt.Errorf("creating jwt service: %w", err)
	}

	hasher := auth.NewBcryptHasher(cfg.Auth.BcryptCost)
	mailer := service.LogMailer{}

	txTimeout := time.Duration(cfg.Database.TxTimeoutSeconds) * time.Second
	devMode := cfg.Server.Environment == "development"

	otps := service.NewOTPService(db, hasher, txTimeout, devMode)

	app := &application{
		config:     cfg,
		logger:     appLogger,
		db:         db,
		txTimeout:  txTimeout,
		jwtService: jwtService,
		hasher:     hasher,
		mailer:     mailer,
		otps:       otps,
		users:      service.NewUserService(db, otps, hasher, mailer),
		passwords:  service.NewPasswordService(db, hasher),
		sessions:   service.NewSessionService(db),
		products:   service.NewProductService(db),
		orders:     service.NewOrderService(db),
	}
	return app, nil
}

// addr returns the listen address from configuration.
func (app *application) addr() string {
	return ":" + strconv.Itoa(app.config.Server.Port)
}

// cleanup releases the application's resources.
func (app *application) cleanup() {
	closeDatabase(app.db, app.logger)
}

func closeDatabase(db *sql.DB, appLogger *slog.Logger) {
	if db == nil {
		return
	}
	if err := db.Close(); err != nil {
		appLogger.Error("Failed to close database connection", "error", err)
	}
}
