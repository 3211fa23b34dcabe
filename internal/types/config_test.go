package types

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"gopkg.in/yaml.v2"
)

type ConfigTestSuite struct {
	suite.Suite
}

func TestConfigSuite(t *testing.T) {
	suite.Run(t, new(ConfigTestSuite))
}

func (suite *ConfigTestSuite) TestDefaultBacktestConfigIsValid() {
	config := DefaultBacktestConfig()

	suite.Empty(config.Validate())
	suite.False(config.StartTime.IsSome())
	suite.False(config.EndTime.IsSome())
}

func (suite *ConfigTestSuite) TestBacktestConfigCollectsAllViolations() {
	config := BacktestConfig{
		InitialCapital:  0,
		Commission:      -1,
		SlippagePercent: 2,
	}

	violations := config.Validate()

	suite.Len(violations, 3)
	suite.Contains(violations[0], "initialcapital")
}

func (suite *ConfigTestSuite) TestBacktestConfigUnmarshalYAML() {
	yamlContent := `
initial_capital: 25000
start_time: 2024-01-01T00:00:00Z
end_time: 2024-06-30T00:00:00Z
commission: 1.5
slippage_percent: 0.1
`

	var config BacktestConfig

	err := yaml.Unmarshal([]byte(yamlContent), &config)
	suite.Require().NoError(err)

	suite.Equal(25000.0, config.InitialCapital)
	suite.Equal(1.5, config.Commission)
	suite.Equal(0.1, config.SlippagePercent)

	suite.Require().True(config.StartTime.IsSome())
	suite.Require().True(config.EndTime.IsSome())
	suite.Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), config.StartTime.Unwrap().UTC())
	suite.Equal(time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC), config.EndTime.Unwrap().UTC())
}

func (suite *ConfigTestSuite) TestBacktestConfigUnmarshalYAMLOmittedTimes() {
	var config BacktestConfig

	err := yaml.Unmarshal([]byte("initial_capital: 5000\n"), &config)
	suite.Require().NoError(err)

	suite.False(config.StartTime.IsSome())
	suite.False(config.EndTime.IsSome())
}

func (suite *ConfigTestSuite) TestGenerateSchema() {
	config := DefaultBacktestConfig()

	schemaJSON, err := config.GenerateSchemaJSON()
	suite.Require().NoError(err)

	var schema map[string]interface{}

	err = json.Unmarshal([]byte(schemaJSON), &schema)
	suite.Require().NoError(err)

	suite.Equal("backtest-config", schema["title"])

	properties, ok := schema["properties"].(map[string]interface{})
	suite.Require().True(ok)

	for _, field := range []string{"initial_capital", "start_time", "end_time", "commission", "slippage_percent"} {
		suite.Contains(properties, field)
	}

	startTime, ok := properties["start_time"].(map[string]interface{})
	suite.Require().True(ok)
	suite.Equal("string", startTime["type"])
	suite.Equal("date-time", startTime["format"])
}

func (suite *ConfigTestSuite) TestRiskManagementBounds() {
	valid := DefaultRiskManagement()
	suite.Empty(valid.Validate())

	invalid := RiskManagement{
		StopLoss:        60,
		TakeProfit:      0,
		MaxPositionSize: 101,
		MaxDrawdown:     -1,
	}

	suite.Len(invalid.Validate(), 4)
}

func (suite *ConfigTestSuite) TestStrategyConfigParamFallback() {
	config := StrategyConfig{
		Parameters: map[string]float64{"period": 21},
	}

	suite.Equal(21.0, config.Param("period", 14))
	suite.Equal(14.0, config.Param("missing", 14))
}

func (suite *ConfigTestSuite) TestStrategyConfigValidateBase() {
	config := StrategyConfig{
		ID:             "",
		Name:           "",
		RiskManagement: DefaultRiskManagement(),
	}

	violations := config.ValidateBase()

	suite.Len(violations, 2)
	suite.Contains(violations[0], "required")
}
