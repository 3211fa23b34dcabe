package types

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/invopop/jsonschema"
	"github.com/moznion/go-optional"
)

// RiskManagement is the per-strategy risk policy applied by the engine on
// every bar. All values are percentages.
type RiskManagement struct {
	// StopLoss closes a position when price falls this far below entry.
	StopLoss float64 `yaml:"stop_loss" json:"stop_loss" validate:"gt=0,lte=50" jsonschema:"title=Stop Loss,description=Stop loss threshold in percent,minimum=0,maximum=50"`
	// TakeProfit closes a position when price rises this far above entry.
	TakeProfit float64 `yaml:"take_profit" json:"take_profit" validate:"gt=0,lte=100" jsonschema:"title=Take Profit,description=Take profit threshold in percent,minimum=0,maximum=100"`
	// MaxPositionSize caps the share of cash deployed into a single entry.
	MaxPositionSize float64 `yaml:"max_position_size" json:"max_position_size" validate:"gt=0,lte=100" jsonschema:"title=Max Position Size,description=Maximum share of cash per position in percent,minimum=0,maximum=100"`
	// MaxDrawdown is the documented drawdown tolerance of the strategy. It is
	// validated against global bounds but does not halt a run.
	MaxDrawdown float64 `yaml:"max_drawdown" json:"max_drawdown" validate:"gt=0,lte=50" jsonschema:"title=Max Drawdown,description=Maximum tolerated drawdown in percent,minimum=0,maximum=50"`
}

// Validate checks the risk policy against the global bounds and returns the
// full list of violations.
func (r *RiskManagement) Validate() []string {
	return collectViolations(validator.New().Struct(r))
}

// DefaultRiskManagement returns the risk policy used when a strategy config
// does not override it.
func DefaultRiskManagement() RiskManagement {
	return RiskManagement{
		StopLoss:        5,
		TakeProfit:      10,
		MaxPositionSize: 50,
		MaxDrawdown:     20,
	}
}

// StrategyConfig holds the tunable parameters and risk policy for one
// strategy instance. It is created from registry defaults or user edit,
// validated before use, and immutable during a run.
type StrategyConfig struct {
	ID          string `yaml:"id" json:"id" validate:"required"`
	Name        string `yaml:"name" json:"name" validate:"required"`
	Description string `yaml:"description" json:"description"`
	// Parameters is the strategy-specific parameter map, validated against
	// the registry schema for the strategy ID.
	Parameters     map[string]float64 `yaml:"parameters" json:"parameters"`
	RiskManagement RiskManagement     `yaml:"risk_management" json:"risk_management"`
	Active         bool               `yaml:"active" json:"active"`
}

// Param returns the named parameter, or the given default when absent.
func (c *StrategyConfig) Param(key string, fallback float64) float64 {
	if v, ok := c.Parameters[key]; ok {
		return v
	}

	return fallback
}

// ValidateBase checks the config's id, name, and risk-management bounds and
// returns the full list of violations. Strategy-specific parameter rules are
// layered on top by the strategy registry.
func (c *StrategyConfig) ValidateBase() []string {
	return collectViolations(validator.New().Struct(c))
}

// BacktestConfig configures a single engine run.
type BacktestConfig struct {
	// InitialCapital is the starting cash for the backtest in USD.
	InitialCapital float64 `yaml:"initial_capital" json:"initial_capital" validate:"gt=0" jsonschema:"title=Initial Capital,description=Starting capital for the backtest in USD,minimum=0"`
	// StartTime is the optional inclusive lower bound of the bar filter.
	StartTime optional.Option[time.Time] `yaml:"start_time" json:"start_time" jsonschema:"title=Start Time,description=Optional inclusive start of the backtest period"`
	// EndTime is the optional inclusive upper bound of the bar filter.
	EndTime optional.Option[time.Time] `yaml:"end_time" json:"end_time" jsonschema:"title=End Time,description=Optional inclusive end of the backtest period"`
	// Commission is the flat currency amount charged per order side.
	Commission float64 `yaml:"commission" json:"commission" validate:"gte=0" jsonschema:"title=Commission,description=Flat commission per order side in USD,minimum=0"`
	// SlippagePercent is the adverse price adjustment applied to every fill:
	// buys pay price*(1+s/100), sells receive price*(1-s/100).
	SlippagePercent float64 `yaml:"slippage_percent" json:"slippage_percent" validate:"gte=0,lte=1" jsonschema:"title=Slippage Percent,description=Adverse price adjustment per fill in percent,minimum=0,maximum=1"`
}

// UnmarshalYAML implements custom unmarshaling for BacktestConfig.
func (c *BacktestConfig) UnmarshalYAML(unmarshal func(interface{}) error) error {
	type Config struct {
		InitialCapital  float64    `yaml:"initial_capital"`
		StartTime       *time.Time `yaml:"start_time"`
		EndTime         *time.Time `yaml:"end_time"`
		Commission      float64    `yaml:"commission"`
		SlippagePercent float64    `yaml:"slippage_percent"`
	}

	var config Config
	if err := unmarshal(&config); err != nil {
		return err
	}

	c.InitialCapital = config.InitialCapital
	c.Commission = config.Commission
	c.SlippagePercent = config.SlippagePercent

	if config.StartTime != nil {
		c.StartTime = optional.Some(*config.StartTime)
	}

	if config.EndTime != nil {
		c.EndTime = optional.Some(*config.EndTime)
	}

	return nil
}

// Validate checks the config against its schema bounds and returns the full
// list of violations rather than failing on the first.
func (c *BacktestConfig) Validate() []string {
	return collectViolations(validator.New().Struct(c))
}

// GenerateSchema generates a JSON schema for the BacktestConfig.
func (c *BacktestConfig) GenerateSchema() *jsonschema.Schema {
	reflector := jsonschema.Reflector{
		RequiredFromJSONSchemaTags: true,
		ExpandedStruct:             true,
		AllowAdditionalProperties:  false,
		Mapper: func(t reflect.Type) *jsonschema.Schema {
			if t.String() == "optional.Option[time.Time]" {
				return &jsonschema.Schema{
					Type:   "string",
					Format: "date-time",
				}
			}

			return nil
		},
	}

	schema := reflector.Reflect(c)
	schema.Title = "backtest-config"
	schema.Description = "Configuration schema for a backtest run"
	schema.Version = "http://json-schema.org/draft-07/schema#"

	return schema
}

// GenerateSchemaJSON generates a JSON schema string for the BacktestConfig.
func (c *BacktestConfig) GenerateSchemaJSON() (string, error) {
	schemaBytes, err := json.MarshalIndent(c.GenerateSchema(), "", "  ")
	if err != nil {
		return "", err
	}

	return string(schemaBytes), nil
}

// DefaultBacktestConfig returns a BacktestConfig with the defaults used by
// the CLI when a run file omits fields.
func DefaultBacktestConfig() BacktestConfig {
	return BacktestConfig{
		InitialCapital:  10000,
		StartTime:       optional.None[time.Time](),
		EndTime:         optional.None[time.Time](),
		Commission:      0,
		SlippagePercent: 0,
	}
}

// collectViolations flattens validator errors into human-readable messages,
// one per violated rule.
func collectViolations(err error) []string {
	if err == nil {
		return nil
	}

	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return []string{err.Error()}
	}

	violations := make([]string, 0, len(validationErrors))

	for _, fieldErr := range validationErrors {
		field := strings.ToLower(fieldErr.Field())

		switch fieldErr.Tag() {
		case "required":
			violations = append(violations, fmt.Sprintf("%s is required", field))
		case "gt":
			violations = append(violations, fmt.Sprintf("%s must be greater than %s", field, fieldErr.Param()))
		case "gte":
			violations = append(violations, fmt.Sprintf("%s must be at least %s", field, fieldErr.Param()))
		case "lt":
			violations = append(violations, fmt.Sprintf("%s must be less than %s", field, fieldErr.Param()))
		case "lte":
			violations = append(violations, fmt.Sprintf("%s must be at most %s", field, fieldErr.Param()))
		default:
			violations = append(violations, fmt.Sprintf("%s failed %s validation", field, fieldErr.Tag()))
		}
	}

	return violations
}
