package config

import (
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App struct {
		Env      string
		Timezone string
	} `mapstructure:"app"`

	HTTP struct {
		Addr string
	} `mapstructure:"http"`

	Postgres struct {
		DSN string
	} `mapstructure:"postgres"`

	Metrics struct {
		Enabled bool
	} `mapstructure:"metrics"`

	Alerts struct {
		EngagementThresholdPct  float64 `mapstructure:"engagement_threshold_pct"`
		RealizationThresholdPct float64 `mapstructure:"realization_threshold_pct"`
	} `mapstructure:"alerts"`

	Predict struct {
		LargeBudgetThreshold float64 `mapstructure:"large_budget_threshold"`
		OverrunRulePct       float64 `mapstructure:"overrun_rule_pct"`
		MarginFloorPct       float64 `mapstructure:"margin_floor_pct"`
	} `mapstructure:"predict"`

	AI struct {
		Enabled bool
		URL     string
		Timeout time.Duration
	} `mapstructure:"ai"`

	Telegram struct {
		Enabled     bool
		Token       string
		AdminChatID int64 `mapstructure:"admin_chat_id"`
	} `mapstructure:"telegram"`
}

func Load(path string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetEnvPrefix("APP")
	v.AutomaticEnv()

	v.SetDefault("http.addr", ":8080")
	v.SetDefault("alerts.engagement_threshold_pct", 80)
	v.SetDefault("alerts.realization_threshold_pct", 90)
	v.SetDefault("predict.large_budget_threshold", 500_000)
	v.SetDefault("predict.overrun_rule_pct", 5)
	v.SetDefault("predict.margin_floor_pct", 10)
	v.SetDefault("ai.timeout", 3*time.Second)

	var c Config
	if err := v.ReadInConfig(); err != nil {
		return c, err
	}
	if err := v.Unmarshal(&c); err != nil {
		return c, err
	}
	return c, nil
}
