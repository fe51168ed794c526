package telemetry

import (
	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DBTracingConfig controls the GORM span plugin
type DBTracingConfig struct {
	Enabled bool
	// DBName is reported as db.name; the dialect is reported by otelgorm itself
	DBName string
	// IncludeVariables puts bound values in db.statement. Keep off outside development.
	IncludeVariables bool
}

// RegisterDBTracing installs otelgorm on db when enabled
func RegisterDBTracing(db *gorm.DB, cfg DBTracingConfig, log *zap.Logger) error {
	if !cfg.Enabled {
		log.Debug("Database tracing disabled")
		return nil
	}

	opts := []otelgorm.Option{otelgorm.WithDBName(cfg.DBName)}
	if !cfg.IncludeVariables {
		opts = append(opts, otelgorm.WithoutQueryVariables())
	}
	if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
		return err
	}

	log.Info("Database tracing enabled",
		zap.String("db_name", cfg.DBName),
		zap.Bool("include_variables", cfg.IncludeVariables),
	)
	return nil
}
