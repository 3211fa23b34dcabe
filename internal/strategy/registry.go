package strategy

import (
	"fmt"

	"github.com/quantpulse-lab/quantpulse/internal/types"
	"github.com/quantpulse-lab/quantpulse/pkg/errors"
)

// Built-in strategy identifiers.
const (
	StrategyIDMACrossover    = "ma_crossover"
	StrategyIDRSIReversion   = "rsi_reversion"
	StrategyIDBollingerBands = "bollinger_bands"
)

// ParameterSchema declares the bounds, default, and description of one
// strategy parameter.
type ParameterSchema struct {
	Type        string  `yaml:"type" json:"type"`
	Min         float64 `yaml:"min" json:"min"`
	Max         float64 `yaml:"max" json:"max"`
	Step        float64 `yaml:"step" json:"step"`
	Default     float64 `yaml:"default" json:"default"`
	Description string  `yaml:"description" json:"description"`
}

// Definition is one entry of the registry: a strategy's identity, parameter
// schema, cross-parameter rules, and constructor.
type Definition struct {
	ID          string                     `yaml:"id" json:"id"`
	Name        string                     `yaml:"name" json:"name"`
	Description string                     `yaml:"description" json:"description"`
	Parameters  map[string]ParameterSchema `yaml:"parameters" json:"parameters"`

	build func(config types.StrategyConfig) Strategy
	// rules checks cross-parameter constraints that per-parameter bounds
	// cannot express; it returns all violations, never just the first.
	rules func(config types.StrategyConfig) []string
}

// DefaultConfig builds a StrategyConfig filled with the definition's
// parameter defaults and the global default risk policy.
func (d Definition) DefaultConfig() types.StrategyConfig {
	parameters := make(map[string]float64, len(d.Parameters))
	for key, schema := range d.Parameters {
		parameters[key] = schema.Default
	}

	return types.StrategyConfig{
		ID:             d.ID,
		Name:           d.Name,
		Description:    d.Description,
		Parameters:     parameters,
		RiskManagement: types.DefaultRiskManagement(),
		Active:         true,
	}
}

// Registry is the closed table of built-in strategies. Strategy dispatch goes
// through a registry lookup instead of open-ended subclassing; extension
// happens by registering a new definition.
type Registry struct {
	definitions map[string]Definition
	order       []string
}

// NewRegistry creates a registry with all built-in strategies registered.
func NewRegistry() *Registry {
	r := &Registry{
		definitions: make(map[string]Definition),
		order:       nil,
	}

	r.Register(maCrossoverDefinition())
	r.Register(rsiReversionDefinition())
	r.Register(bollingerBandsDefinition())

	return r
}

// Register adds a definition to the registry, replacing any previous
// definition with the same ID.
func (r *Registry) Register(def Definition) {
	if _, exists := r.definitions[def.ID]; !exists {
		r.order = append(r.order, def.ID)
	}

	r.definitions[def.ID] = def
}

// Get returns the definition for the given strategy ID.
func (r *Registry) Get(id string) (Definition, bool) {
	def, ok := r.definitions[id]

	return def, ok
}

// List returns all definitions in registration order.
func (r *Registry) List() []Definition {
	defs := make([]Definition, 0, len(r.order))
	for _, id := range r.order {
		defs = append(defs, r.definitions[id])
	}

	return defs
}

// Validate checks a config against global risk bounds, the strategy's
// parameter schema, and its cross-parameter rules. It returns the full list
// of violated rules; callers decide whether to block on a non-empty list.
func (r *Registry) Validate(config types.StrategyConfig) []string {
	violations := config.ValidateBase()

	def, ok := r.definitions[config.ID]
	if !ok {
		if config.ID != "" {
			violations = append(violations, fmt.Sprintf("unknown strategy id %q", config.ID))
		}

		return violations
	}

	for key, schema := range def.Parameters {
		value := config.Param(key, schema.Default)
		if value < schema.Min || value > schema.Max {
			violations = append(violations,
				fmt.Sprintf("%s must be between %g and %g, got %g", key, schema.Min, schema.Max, value))
		}
	}

	if def.rules != nil {
		violations = append(violations, def.rules(config)...)
	}

	return violations
}

// Build validates the config and constructs the strategy. A non-empty
// violation list yields an InvalidConfigError carrying every violation.
func (r *Registry) Build(config types.StrategyConfig) (Strategy, error) {
	if violations := r.Validate(config); len(violations) > 0 {
		return nil, errors.NewInvalidConfigError(violations)
	}

	def, ok := r.definitions[config.ID]
	if !ok {
		return nil, errors.Newf(errors.ErrCodeUnknownStrategy, "unknown strategy id %q", config.ID)
	}

	return def.build(config), nil
}

func maCrossoverDefinition() Definition {
	return Definition{
		ID:          StrategyIDMACrossover,
		Name:        "Moving Average Crossover",
		Description: "Buys on a golden cross of the fast SMA over the slow SMA and sells on the death cross",
		Parameters: map[string]ParameterSchema{
			"fast_period": {
				Type:        "int",
				Min:         2,
				Max:         50,
				Step:        1,
				Default:     10,
				Description: "Lookback of the fast simple moving average",
			},
			"slow_period": {
				Type:        "int",
				Min:         5,
				Max:         200,
				Step:        1,
				Default:     30,
				Description: "Lookback of the slow simple moving average",
			},
		},
		build: func(config types.StrategyConfig) Strategy {
			return NewMACrossover(config)
		},
		rules: func(config types.StrategyConfig) []string {
			fast := config.Param("fast_period", 10)
			slow := config.Param("slow_period", 30)

			if fast >= slow {
				return []string{fmt.Sprintf("fast_period (%g) must be less than slow_period (%g)", fast, slow)}
			}

			return nil
		},
	}
}

func rsiReversionDefinition() Definition {
	return Definition{
		ID:          StrategyIDRSIReversion,
		Name:        "RSI Mean Reversion",
		Description: "Buys when RSI reaches the oversold threshold and sells at the overbought threshold",
		Parameters: map[string]ParameterSchema{
			"period": {
				Type:        "int",
				Min:         2,
				Max:         50,
				Step:        1,
				Default:     14,
				Description: "RSI lookback period",
			},
			"oversold": {
				Type:        "float",
				Min:         1,
				Max:         49,
				Step:        1,
				Default:     30,
				Description: "RSI level at or below which to buy",
			},
			"overbought": {
				Type:        "float",
				Min:         51,
				Max:         99,
				Step:        1,
				Default:     70,
				Description: "RSI level at or above which to sell",
			},
		},
		build: func(config types.StrategyConfig) Strategy {
			return NewRSIReversion(config)
		},
		rules: func(config types.StrategyConfig) []string {
			oversold := config.Param("oversold", 30)
			overbought := config.Param("overbought", 70)

			var violations []string

			if !(oversold > 0 && oversold < 50) {
				violations = append(violations, fmt.Sprintf("oversold (%g) must be between 0 and 50 exclusive", oversold))
			}

			if !(overbought > 50 && overbought < 100) {
				violations = append(violations, fmt.Sprintf("overbought (%g) must be between 50 and 100 exclusive", overbought))
			}

			return violations
		},
	}
}

func bollingerBandsDefinition() Definition {
	return Definition{
		ID:          StrategyIDBollingerBands,
		Name:        "Bollinger Bands",
		Description: "Buys at the lower band and sells at the upper band",
		Parameters: map[string]ParameterSchema{
			"period": {
				Type:        "int",
				Min:         5,
				Max:         100,
				Step:        1,
				Default:     20,
				Description: "SMA and standard deviation lookback period",
			},
			"std_dev": {
				Type:        "float",
				Min:         0.5,
				Max:         4,
				Step:        0.1,
				Default:     2,
				Description: "Band width in population standard deviations",
			},
		},
		build: func(config types.StrategyConfig) Strategy {
			return NewBollingerBands(config)
		},
		rules: func(config types.StrategyConfig) []string {
			stdDev := config.Param("std_dev", 2)
			if !(stdDev > 0 && stdDev <= 4) {
				return []string{fmt.Sprintf("std_dev (%g) must be greater than 0 and at most 4", stdDev)}
			}

			return nil
		},
	}
}
