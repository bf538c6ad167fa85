package cmd

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver for database/sql (migrations)
	"go.uber.org/zap"

	"github.com/ekaya-inc/dpdp-engine/pkg/config"
	"github.com/ekaya-inc/dpdp-engine/pkg/database"
	"github.com/ekaya-inc/dpdp-engine/pkg/logging"
	"github.com/ekaya-inc/dpdp-engine/pkg/repositories"
	"github.com/ekaya-inc/dpdp-engine/pkg/services"
)

// app holds the connected database and every service built on it.
type app struct {
	db *database.DB

	catalog     services.CatalogProvider
	extraction  services.ExtractionService
	assessment  services.AssessmentService
	requirement services.RequirementService
	ledger      services.ComplianceLedgerService
}

// newApp connects to PostgreSQL, applies migrations and wires the services.
func newApp(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*app, error) {
	connStr := cfg.Database.ConnectionString()
	logger.Info("Connecting to database", zap.String("dsn", logging.SanitizeConnectionString(connStr)))

	db, err := database.NewConnection(ctx, &database.Config{
		URL:            connStr,
		MaxConnections: cfg.Database.MaxConnections,
	}, logger)
	if err != nil {
		return nil, err
	}

	sqlDB, err := sql.Open("pgx", connStr)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to open migration connection: %w", err)
	}
	defer sqlDB.Close()
	if err := database.RunMigrations(sqlDB, logger); err != nil {
		db.Close()
		return nil, err
	}

	rules := cfg.Rules
	requirementRepo := repositories.NewRequirementRepository()
	penaltyRepo := repositories.NewPenaltyCategoryRepository()
	scheduleRepo := repositories.NewScheduleThresholdRepository()
	organizationRepo := repositories.NewOrganizationRepository()
	statusRepo := repositories.NewComplianceStatusRepository()

	catalog := services.NewCatalogProvider(requirementRepo, scheduleRepo, rules, cfg.Cache.CatalogSize, cfg.Cache.CatalogTTL, logger)
	seeding := services.NewSeedingService(penaltyRepo, rules, logger)
	store := services.NewRequirementStore(requirementRepo, penaltyRepo, rules, logger)

	return &app{
		db:      db,
		catalog: catalog,
		extraction: services.NewExtractionService(
			db, seeding, store, requirementRepo, penaltyRepo, scheduleRepo, rules, logger),
		assessment: services.NewAssessmentService(
			db,
			catalog,
			services.NewRequirementMatcher(rules),
			services.NewGapAnalyzer(rules),
			services.NewAttestor(rules),
			organizationRepo,
			statusRepo,
			logger,
		),
		requirement: services.NewRequirementService(requirementRepo, catalog),
		ledger:      services.NewComplianceLedgerService(statusRepo, logger),
	}, nil
}

// scope returns ctx carrying the pool scope repositories expect.
func (a *app) scope(ctx context.Context) context.Context {
	return a.db.WithScope(ctx)
}

func (a *app) Close() {
	a.db.Close()
}
