package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	LLM      LLMConfig
	Chart    ChartConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	ListenAddr     string
	AllowedOrigins []string
}

// DatabaseConfig holds database connection configuration.
type DatabaseConfig struct {
	Dialect                        string
	Host                           string
	Port                           int
	User                           string
	Password                       string
	DBName                         string
	SSLMode                        string
	CloudSQLInstanceConnectionName string
	UsePrivateIP                   bool
}

// LLMConfig holds settings for the text-generation provider.
type LLMConfig struct {
	APIKey               string
	Model                string
	ClassifierMaxTokens  int32
	SynthesizerMaxTokens int32
	AnswerMaxTokens      int32
}

// ChartConfig holds rendering defaults for generated charts.
type ChartConfig struct {
	Width    int
	Height   int
	Theme    string
	FontPath string
}

var globalConfig *Config

// Load reads configuration from an optional YAML file and the environment.
// Flag values are layered on top by the cmd package after Load returns.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("server.listen_addr", ":3001")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:3000"})
	v.SetDefault("database.dialect", "postgres")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("llm.model", "gemini-1.5-flash-latest")
	v.SetDefault("llm.classifier_max_tokens", 200)
	v.SetDefault("llm.synthesizer_max_tokens", 300)
	v.SetDefault("llm.answer_max_tokens", 600)
	v.SetDefault("chart.width", 800)
	v.SetDefault("chart.height", 600)
	v.SetDefault("chart.theme", "light")

	v.SetEnvPrefix("DMK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	cfg := &Config{
		Server: ServerConfig{
			ListenAddr:     v.GetString("server.listen_addr"),
			AllowedOrigins: v.GetStringSlice("server.allowed_origins"),
		},
		Database: DatabaseConfig{
			Dialect:                        v.GetString("database.dialect"),
			Host:                           v.GetString("database.host"),
			Port:                           v.GetInt("database.port"),
			User:                           v.GetString("database.user"),
			Password:                       v.GetString("database.password"),
			DBName:                         v.GetString("database.name"),
			SSLMode:                        v.GetString("database.sslmode"),
			CloudSQLInstanceConnectionName: v.GetString("database.cloudsql_instance"),
			UsePrivateIP:                   v.GetBool("database.cloudsql_private_ip"),
		},
		LLM: LLMConfig{
			APIKey:               v.GetString("llm.api_key"),
			Model:                v.GetString("llm.model"),
			ClassifierMaxTokens:  int32(v.GetInt("llm.classifier_max_tokens")),
			SynthesizerMaxTokens: int32(v.GetInt("llm.synthesizer_max_tokens")),
			AnswerMaxTokens:      int32(v.GetInt("llm.answer_max_tokens")),
		},
		Chart: ChartConfig{
			Width:    v.GetInt("chart.width"),
			Height:   v.GetInt("chart.height"),
			Theme:    v.GetString("chart.theme"),
			FontPath: v.GetString("chart.font_path"),
		},
	}
	return cfg, nil
}

// GetConfig returns the global configuration, or defaults if none was set.
func GetConfig() *Config {
	if globalConfig != nil {
		return globalConfig
	}
	cfg, _ := Load("")
	return cfg
}

// SetConfig sets the global configuration.
func SetConfig(cfg *Config) {
	globalConfig = cfg
}
