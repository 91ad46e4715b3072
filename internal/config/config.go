package config

import (
	"fmt"
	"strings"

	"github.com/ingoatl/propertycentral/internal/common"
	"github.com/ingoatl/propertycentral/internal/settlement"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides, e.g. RECON_DATABASE_PATH.
const EnvPrefix = "RECON"

// Viper keys.
const (
	KeyDatabasePath    = "database.path"
	KeyLogLevel        = "logging.level"
	KeyLogFormat       = "logging.format"
	KeyPayoutFormula   = "payout.formula"
	KeyReferencePrefix = "payout.reference_prefix"
	KeyAllowErrors     = "approval.allow_errors"
)

// Config is the resolved runtime configuration.
type Config struct {
	DatabasePath    string
	LogLevel        string
	LogFormat       string
	PayoutFormula   settlement.PayoutFormula
	ReferencePrefix string
	// AllowApproveWithErrors lets approval proceed past error-severity issues.
	AllowApproveWithErrors bool
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyDatabasePath, DefaultDatabasePath())
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, "console")
	v.SetDefault(KeyPayoutFormula, string(settlement.FormulaUnified))
	v.SetDefault(KeyReferencePrefix, "PO")
	v.SetDefault(KeyAllowErrors, false)
}

// BindEnv wires RECON_* environment variables into v. Nested keys map with
// underscores, so payout.formula reads RECON_PAYOUT_FORMULA.
func BindEnv(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// LoadEnvFiles loads .env.local and then .env from the working directory.
// Variables already set in the environment are never overwritten, so
// .env.local wins over .env.
func LoadEnvFiles() {
	for _, name := range []string{".env.local", ".env"} {
		_ = godotenv.Load(name)
	}
}

// Load resolves a Config from v and validates it.
func Load(v *viper.Viper) (*Config, error) {
	SetDefaults(v)

	formula, err := settlement.ParsePayoutFormula(v.GetString(KeyPayoutFormula))
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", KeyPayoutFormula, common.ErrInvalidConfig, err)
	}

	cfg := &Config{
		DatabasePath:           ExpandPath(v.GetString(KeyDatabasePath)),
		LogLevel:               strings.ToLower(v.GetString(KeyLogLevel)),
		LogFormat:              strings.ToLower(v.GetString(KeyLogFormat)),
		PayoutFormula:          formula,
		ReferencePrefix:        strings.TrimSpace(v.GetString(KeyReferencePrefix)),
		AllowApproveWithErrors: v.GetBool(KeyAllowErrors),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that every field holds a usable value.
func (c *Config) Validate() error {
	if c.DatabasePath == "" {
		return fmt.Errorf("%s is empty: %w", KeyDatabasePath, common.ErrMissingConfig)
	}
	if _, err := common.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%s: %w", KeyLogLevel, err)
	}
	switch c.LogFormat {
	case "console", "json":
	default:
		return fmt.Errorf("%s %q: %w", KeyLogFormat, c.LogFormat, common.ErrInvalidConfig)
	}
	if c.ReferencePrefix == "" {
		return fmt.Errorf("%s is empty: %w", KeyReferencePrefix, common.ErrMissingConfig)
	}
	return nil
}
