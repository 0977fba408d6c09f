package bootstrap

import (
	"github.com/spf13/viper"
)

type Config struct {
	ServerPort       string `mapstructure:"SERVER_PORT"`
	RedisUrl         string `mapstructure:"REDIS_URL"`
	MongoUri         string `mapstructure:"MONGO_URI"`
	IsLocalCors      bool   `mapstructure:"LOCAL_CORS"`
	GridLetters      int    `mapstructure:"GRID_LETTERS"`
	GridNumbers      int    `mapstructure:"GRID_NUMBERS"`
	FleetSize        int    `mapstructure:"FLEET_SIZE"`
	PageLimitMatches int    `mapstructure:"PAGE_LIMIT_MATCHES"`
}

func Setup(cfgPath string) (*Config, error) {
	viper.SetConfigFile(cfgPath)

	viper.SetDefault("SERVER_PORT", ":8080")
	viper.SetDefault("GRID_LETTERS", 8)
	viper.SetDefault("GRID_NUMBERS", 8)
	viper.SetDefault("FLEET_SIZE", 15)
	viper.SetDefault("PAGE_LIMIT_MATCHES", 50)

	err := viper.ReadInConfig()
	if err != nil {
		return nil, err
	}

	var cfg Config

	err = viper.Unmarshal(&cfg)
	if err != nil {
		return nil, err
	}

	return &cfg, nil
}
