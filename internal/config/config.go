package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	LogLevel  string    `yaml:"log-level" env:"TICTACTOE_LOG_LEVEL" env-default:"info"`
	LogFile   string    `yaml:"log-file" env:"TICTACTOE_LOG_FILE" env-default:"tictactoe.log"`
	Server    Server    `yaml:"server"`
	Reconnect Reconnect `yaml:"reconnect"`
	Journal   Journal   `yaml:"journal"`
	Redis     Redis     `yaml:"redis"`
}

type Server struct {
	URL string `yaml:"url" env:"TICTACTOE_SERVER_URL" env-default:"ws://localhost:8080/ws"`
}

type Reconnect struct {
	MaxAttempts  int           `yaml:"max-attempts" env-default:"3"`
	Delay        time.Duration `yaml:"delay" env-default:"2s"`
	DialTimeout  time.Duration `yaml:"dial-timeout" env-default:"5s"`
	WriteTimeout time.Duration `yaml:"write-timeout" env-default:"5s"`
}

type Journal struct {
	Enabled bool   `yaml:"enabled" env:"TICTACTOE_JOURNAL_ENABLED" env-default:"false"`
	Channel string `yaml:"channel" env-default:"tictactoe:events"`
	Buffer  int    `yaml:"buffer" env-default:"64"`
}

type Redis struct {
	Host string `yaml:"host" env:"TICTACTOE_REDIS_HOST" env-default:"localhost"`
	Port string `yaml:"port" env:"TICTACTOE_REDIS_PORT" env-default:"6379"`
}

// MustLoad - load all configurations in config.yml file.
func MustLoad(path string) *Config {
	config, err := Load(path)
	if err != nil {
		panic(err)
	}

	return config
}

// Load - reads path and applies environment overrides and defaults.
func Load(path string) (*Config, error) {
	config := &Config{}

	if err := cleanenv.ReadConfig(path, config); err != nil {
		return nil, fmt.Errorf("unable to load config file: %w", err)
	}

	return config, nil
}

func (that *Redis) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", that.Host, that.Port)
}
