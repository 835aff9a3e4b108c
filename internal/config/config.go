package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type AppConfig struct {
	API      *APIConfig      `mapstructure:"api"`
	Gin      *GinConfig      `mapstructure:"gin"`
	Postgres *PostgresConfig `mapstructure:"postgres"`
	Rewards  *RewardsConfig  `mapstructure:"rewards"`
	Chain    *ChainConfig    `mapstructure:"chain"`
	Mail     *MailConfig     `mapstructure:"mail"`
}

type APIConfig struct {
	Environment        string `mapstructure:"environment"`
	BaseURL            string `mapstructure:"base_url"`
	Port               string `mapstructure:"port"`
	JWTSigningKey      string `mapstructure:"jwt_signing_key"`
	AllowedCORSDomains string `mapstructure:"allowed_cors_domains"`
}

type GinConfig struct {
	Mode string `mapstructure:"mode"`
}

type PostgresConfig struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DB       string `mapstructure:"db"`
}

// RewardsConfig holds the capacity ledger and redemption policy knobs.
// SystemTotalNodes is the fixed sum the three pools must always add up to.
// PointsPerToken is the redemption conversion factor. RefundOnFailure controls
// whether a failed settlement returns points to the available balance.
type RewardsConfig struct {
	SystemTotalNodes int    `mapstructure:"system_total_nodes"`
	PointsPerToken   int    `mapstructure:"points_per_token"`
	RefundOnFailure  bool   `mapstructure:"refund_on_failure"`
	AccrualCron      string `mapstructure:"accrual_cron"`
	SettlementEvery  string `mapstructure:"settlement_every"`
}

type ChainConfig struct {
	RPCURL          string `mapstructure:"rpc_url"`
	ChainID         int64  `mapstructure:"chain_id"`
	TokenContract   string `mapstructure:"token_contract"`
	SenderAddress   string `mapstructure:"sender_address"`
	SenderKey       string `mapstructure:"sender_key"`
	ExplorerBaseURL string `mapstructure:"explorer_base_url"`
}

type MailConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
}

func Load(configPath string) (*AppConfig, error) {
	conf := &AppConfig{}

	viper.SetConfigFile(configPath)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("viper.ReadInConfig -> %w", err)
	}

	if err := viper.Unmarshal(conf); err != nil {
		return nil, fmt.Errorf("viper.Unmarshal -> %w", err)
	}

	return conf, nil
}
