package config

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/spf13/viper"

	"section3/internal/bootstrap/logging"
	domain "section3/internal/domain/compliance"
	"section3/internal/errs"
)

type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Database DatabaseConfig `mapstructure:"database"`
	HTTP     HTTPConfig     `mapstructure:"http"`
	NATS     NATSConfig     `mapstructure:"nats"`
	Rules    RulesConfig    `mapstructure:"rules"`
}

type AppConfig struct {
	Name string `mapstructure:"name"`
	Env  string `mapstructure:"env"`
}

type DatabaseConfig struct {
	Driver       string `mapstructure:"driver"`
	DSN          string `mapstructure:"dsn"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
}

type HTTPConfig struct {
	Addr string `mapstructure:"addr"`
}

// NATSConfig leaves publishing disabled when URL is empty.
type NATSConfig struct {
	URL     string `mapstructure:"url"`
	Subject string `mapstructure:"subject"`
}

type RulesConfig struct {
	LaborHourBenchmark     float64 `mapstructure:"labor_hour_benchmark"`
	TargetedBenchmark      float64 `mapstructure:"targeted_benchmark"`
	FallbackThreshold      float64 `mapstructure:"fallback_threshold"`
	ActionPlanDueDays      int     `mapstructure:"action_plan_due_days"`
	VerificationLogDueDays int     `mapstructure:"verification_log_due_days"`
	FirstQuarterlyDueDays  int     `mapstructure:"first_quarterly_due_days"`
	FinalReportDueDays     int     `mapstructure:"final_report_due_days"`
	QuarterlyReportDueDays int     `mapstructure:"quarterly_report_due_days"`
	OverdueGraceDays       int     `mapstructure:"overdue_grace_days"`
	QuarterLengthDays      int     `mapstructure:"quarter_length_days"`
}

func (r RulesConfig) ToRules() domain.Rules {
	return domain.Rules{
		LaborHourBenchmark:     r.LaborHourBenchmark,
		TargetedBenchmark:      r.TargetedBenchmark,
		FallbackThreshold:      r.FallbackThreshold,
		ActionPlanDueDays:      r.ActionPlanDueDays,
		VerificationLogDueDays: r.VerificationLogDueDays,
		FirstQuarterlyDueDays:  r.FirstQuarterlyDueDays,
		FinalReportDueDays:     r.FinalReportDueDays,
		QuarterlyReportDueDays: r.QuarterlyReportDueDays,
		OverdueGraceDays:       r.OverdueGraceDays,
		QuarterLengthDays:      r.QuarterLengthDays,
	}
}

func Load(ctx context.Context, configFile string) (Config, error) {
	if ctx == nil {
		return Config{}, errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return Config{}, errs.Wrap(err, "check context")
	}

	logCtx := logging.WithComponent(ctx, "bootstrap.config")

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("S3")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile == "" && errors.As(err, &notFound) {
			logging.Warn(logCtx, "config file not found, fallback to defaults and env")
		} else {
			return Config{}, errs.E(errs.KindConfiguration, errs.Wrap(err, "read config"))
		}
	} else {
		logging.Info(logCtx, "using config file", slog.String("path", v.ConfigFileUsed()))
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, errs.E(errs.KindConfiguration, errs.Wrap(err, "unmarshal config"))
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	logging.Info(
		logCtx,
		"config loaded",
		slog.String("app", cfg.App.Name),
		slog.String("env", cfg.App.Env),
		slog.String("database_driver", cfg.Database.Driver),
		slog.Bool("nats_enabled", cfg.NATS.URL != ""),
	)

	return cfg, nil
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.Database.DSN) == "" {
		return errs.Ef(errs.KindConfiguration, "database.dsn is required")
	}
	if c.Database.MaxOpenConns < 0 {
		return errs.Ef(errs.KindConfiguration, "database.max_open_conns must not be negative")
	}
	if c.NATS.URL != "" && strings.TrimSpace(c.NATS.Subject) == "" {
		return errs.Ef(errs.KindConfiguration, "nats.subject is required when nats.url is set")
	}
	if err := c.Rules.ToRules().Validate(); err != nil {
		return errs.E(errs.KindConfiguration, errs.Wrap(err, "rules"))
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	rules := domain.DefaultRules()

	v.SetDefault("app.name", "section3")
	v.SetDefault("app.env", "local")
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "data/section3.sqlite")
	v.SetDefault("database.max_open_conns", 1)
	v.SetDefault("http.addr", ":8080")
	v.SetDefault("nats.url", "")
	v.SetDefault("nats.subject", "section3.notifications")
	v.SetDefault("rules.labor_hour_benchmark", rules.LaborHourBenchmark)
	v.SetDefault("rules.targeted_benchmark", rules.TargetedBenchmark)
	v.SetDefault("rules.fallback_threshold", rules.FallbackThreshold)
	v.SetDefault("rules.action_plan_due_days", rules.ActionPlanDueDays)
	v.SetDefault("rules.verification_log_due_days", rules.VerificationLogDueDays)
	v.SetDefault("rules.first_quarterly_due_days", rules.FirstQuarterlyDueDays)
	v.SetDefault("rules.final_report_due_days", rules.FinalReportDueDays)
	v.SetDefault("rules.quarterly_report_due_days", rules.QuarterlyReportDueDays)
	v.SetDefault("rules.overdue_grace_days", rules.OverdueGraceDays)
	v.SetDefault("rules.quarter_length_days", rules.QuarterLengthDays)
}
