package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"

	"github.com/mfreitas/lucre/internal/metrics"
)

type Config struct {
	App struct {
		Name string `envconfig:"APP_NAME" default:"Lucre"`
		Port int    `envconfig:"PORT" default:"8080"`
	}

	DB struct {
		Host     string `envconfig:"DB_HOST" default:"localhost"`
		Port     int    `envconfig:"DB_PORT" default:"5432"`
		User     string `envconfig:"DB_USER" default:"postgres"`
		Password string `envconfig:"DB_PASSWORD" default:""`
		Name     string `envconfig:"DB_NAME" default:"lucre"`
	}

	Server struct {
		Timeout        time.Duration `envconfig:"SERVER_TIMEOUT" default:"30s"`
		AllowedOrigins []string      `envconfig:"ALLOWED_ORIGINS" default:"http://localhost:3000"`
	}

	// Targets are the metric goals and thresholds alerts are evaluated
	// against. Every field has a documented default so an unset value
	// never blocks computation.
	Targets struct {
		MonthlyProfit     decimal.Decimal `envconfig:"TARGET_MONTHLY_PROFIT" default:"800000"`
		ProfitMarginPct   float64         `envconfig:"TARGET_PROFIT_MARGIN_PCT" default:"25"`
		RoiPct            float64         `envconfig:"TARGET_ROI_PCT" default:"30"`
		MaxInventoryValue decimal.Decimal `envconfig:"MAX_INVENTORY_VALUE" default:"1000000"`
		StagnantDays      int             `envconfig:"STAGNANT_DAYS_THRESHOLD" default:"60"`
		LowStock          int64           `envconfig:"LOW_STOCK_THRESHOLD" default:"5"`
	}
}

func (c *Config) ConnectionString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.DB.User, c.DB.Password, c.DB.Host, c.DB.Port, c.DB.Name)
}

// MetricsTargets maps the environment configuration onto the explicit
// targets value every computation receives.
func (c *Config) MetricsTargets() metrics.Targets {
	return metrics.Targets{
		TargetMonthlyProfit:   c.Targets.MonthlyProfit,
		TargetProfitMarginPct: c.Targets.ProfitMarginPct,
		TargetRoiPct:          c.Targets.RoiPct,
		MaxInventoryValue:     c.Targets.MaxInventoryValue,
		StagnantDaysThreshold: c.Targets.StagnantDays,
		LowStockThreshold:     c.Targets.LowStock,
	}
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	return &cfg, nil
}
