package config

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/robfig/cron/v3"
)

var symbolPattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9.]{0,9}$`)

// CustomValidator wraps the validator with custom validation rules
type CustomValidator struct {
	validator *validator.Validate
}

// NewValidator creates a new validator with custom validation functions
func NewValidator() *CustomValidator {
	v := validator.New()

	// Register custom validation functions
	_ = v.RegisterValidation("environment", validateEnvironment)
	_ = v.RegisterValidation("loglevel", validateLogLevel)
	_ = v.RegisterValidation("symbols", validateSymbols)

	return &CustomValidator{validator: v}
}

// Validate validates the entire configuration
func Validate(cfg *Config) error {
	cv := NewValidator()
	return cv.Validate(cfg)
}

// Validate validates the configuration using registered validation rules
func (cv *CustomValidator) Validate(cfg *Config) error {
	err := cv.validator.Struct(cfg)
	if err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			return formatValidationErrors(validationErrors)
		}
		return fmt.Errorf("validation failed: %w", err)
	}

	// Additional cross-field validations
	if err := validateCrossField(cfg); err != nil {
		return err
	}

	return nil
}

// validateEnvironment validates the environment field
func validateEnvironment(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "development", "staging", "production":
		return true
	default:
		return false
	}
}

// validateLogLevel validates the log level field
func validateLogLevel(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "debug", "info", "warn", "error":
		return true
	default:
		return false
	}
}

// validateSymbols checks every entry looks like a ticker and none repeat
func validateSymbols(fl validator.FieldLevel) bool {
	symbols, ok := fl.Field().Interface().([]string)
	if !ok || len(symbols) == 0 {
		return false
	}

	seen := make(map[string]bool, len(symbols))
	for _, symbol := range symbols {
		if !symbolPattern.MatchString(symbol) {
			return false
		}
		upper := strings.ToUpper(symbol)
		if seen[upper] {
			return false
		}
		seen[upper] = true
	}
	return true
}

// validateCrossField performs cross-field validations
func validateCrossField(cfg *Config) error {
	switch cfg.Market.Source {
	case "static":
		if cfg.Market.DataPath == "" {
			return fmt.Errorf("market data_path is required for the static source")
		}
	case "remote":
		if cfg.Market.RemoteURL == "" {
			return fmt.Errorf("market remote_url is required for the remote source")
		}
	}

	if cfg.News.Enabled && cfg.News.URL == "" {
		return fmt.Errorf("news url is required when news is enabled")
	}
	if cfg.News.Enabled && cfg.News.RefreshSchedule != "" {
		if _, err := cron.ParseStandard(cfg.News.RefreshSchedule); err != nil {
			return fmt.Errorf("invalid news refresh_schedule %q: %w", cfg.News.RefreshSchedule, err)
		}
	}

	if cfg.Backtest.MonteCarloMaxIterations > 0 && cfg.Backtest.MonteCarloIterations > cfg.Backtest.MonteCarloMaxIterations {
		return fmt.Errorf("monte_carlo_iterations cannot exceed monte_carlo_max_iterations")
	}
	if cfg.Backtest.WalkForwardWindow > 0 && cfg.Backtest.WalkForwardStep > cfg.Backtest.WalkForwardWindow {
		return fmt.Errorf("walk_forward_step cannot exceed walk_forward_window")
	}

	if cfg.Database.Enabled {
		if cfg.Database.MaxIdleConnections > cfg.Database.MaxConnections {
			return fmt.Errorf("max_idle_connections cannot exceed max_connections")
		}
		if cfg.IsProduction() && cfg.Database.SSLMode == "disable" {
			return fmt.Errorf("production environment requires SSL mode to be 'require' or 'verify-full'")
		}
	}
	if cfg.Backtest.PersistResults && !cfg.Database.Enabled && cfg.IsProduction() {
		return fmt.Errorf("persist_results in production requires the database")
	}

	return nil
}

// formatValidationErrors formats validation errors into a readable string
func formatValidationErrors(validationErrors validator.ValidationErrors) error {
	var errMsg strings.Builder
	for _, fieldError := range validationErrors {
		field := fieldError.StructField()
		tag := fieldError.Tag()
		value := fieldError.Value()

		switch tag {
		case "required", "required_if":
			errMsg.WriteString(fmt.Sprintf("- Field '%s' is required\n", field))
		case "url":
			errMsg.WriteString(fmt.Sprintf("- Field '%s' must be a valid URL, got '%v'\n", field, value))
		case "min", "max":
			errMsg.WriteString(fmt.Sprintf("- Field '%s' validation failed: %s constraint violated\n", field, tag))
		case "gt", "gte", "lt", "lte":
			errMsg.WriteString(fmt.Sprintf("- Field '%s' validation failed: numeric constraint %s violated\n", field, tag))
		case "environment":
			errMsg.WriteString(fmt.Sprintf("- Field '%s' must be one of: development, staging, production\n", field))
		case "loglevel":
			errMsg.WriteString(fmt.Sprintf("- Field '%s' must be one of: debug, info, warn, error\n", field))
		case "symbols":
			errMsg.WriteString(fmt.Sprintf("- Field '%s' must list unique ticker symbols, got '%v'\n", field, value))
		case "oneof":
			errMsg.WriteString(fmt.Sprintf("- Field '%s' has invalid value '%v'\n", field, value))
		default:
			errMsg.WriteString(fmt.Sprintf("- Field '%s' failed validation: %s\n", field, tag))
		}
	}
	return fmt.Errorf("configuration validation failed:\n%s", errMsg.String())
}
