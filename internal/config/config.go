package config

import (
	"errors"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the application configuration
type Config struct {
	LLM      LLMConfig
	Server   ServerConfig
	Calendar CalendarConfig
	Salon    SalonConfig
	History  HistoryConfig
	Chat     ChatConfig
	Log      LogConfig
}

// LLMConfig holds the LLM configuration
type LLMConfig struct {
	Provider     string        `mapstructure:"provider"`
	BaseURL      string        `mapstructure:"base_url"`
	APIKey       string        `mapstructure:"api_key"`
	Model        string        `mapstructure:"model"`
	SystemPrompt string        `mapstructure:"system_prompt"`
	Temperature  float32       `mapstructure:"temperature"`
	MaxTurns     int           `mapstructure:"max_turns"`
	Timeout      time.Duration `mapstructure:"timeout"`
}

// ServerConfig holds the server configuration
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port string `mapstructure:"port"`
}

// CalendarConfig holds the Google Calendar configuration
type CalendarConfig struct {
	CredentialsFile   string        `mapstructure:"credentials_file"`
	TokenFile         string        `mapstructure:"token_file"`
	CalendarID        string        `mapstructure:"calendar_id"`
	Timeout           time.Duration `mapstructure:"timeout"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second"`
}

// SalonConfig describes the business: opening hours, slot grid and the
// service catalog offered to customers.
type SalonConfig struct {
	Name        string    `mapstructure:"name"`
	Timezone    string    `mapstructure:"timezone"`
	OpenTime    string    `mapstructure:"open_time"`
	CloseTime   string    `mapstructure:"close_time"`
	SlotMinutes int       `mapstructure:"slot_minutes"`
	ClosedDays  []string  `mapstructure:"closed_days"`
	Services    []Service `mapstructure:"services"`
}

// Service is one entry of the salon's catalog.
type Service struct {
	Name    string `mapstructure:"name"`
	Minutes int    `mapstructure:"minutes"`
}

// HistoryConfig holds the conversation store configuration
type HistoryConfig struct {
	Path string `mapstructure:"path"`
}

// ChatConfig holds the interactive loop configuration
type ChatConfig struct {
	ExitCommand    string `mapstructure:"exit_command"`
	UserPrompt     string `mapstructure:"user_prompt"`
	AssistantLabel string `mapstructure:"assistant_label"`
	Farewell       string `mapstructure:"farewell"`
	HistoryFile    string `mapstructure:"history_file"`
}

// LogConfig holds the logging configuration
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// DefaultServices is the catalog of Daisy Hair Salon.
var DefaultServices = []Service{
	{Name: "Hair wash", Minutes: 20},
	{Name: "Hair cut", Minutes: 30},
	{Name: "Hair styling", Minutes: 30},
	{Name: "Beard trim", Minutes: 15},
	{Name: "Hair coloring", Minutes: 60},
	{Name: "Hair treatment", Minutes: 45},
	{Name: "Scalp massage", Minutes: 15},
	{Name: "Eyebrow shaping", Minutes: 10},
	{Name: "Facial", Minutes: 45},
	{Name: "Manicure", Minutes: 30},
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("llm.provider", "gemini")
	v.SetDefault("llm.model", "gemini-1.5-flash")
	v.SetDefault("llm.temperature", 0.3)
	v.SetDefault("llm.max_turns", 5)
	v.SetDefault("llm.timeout", 60*time.Second)

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", "8080")

	v.SetDefault("calendar.credentials_file", "credentials.json")
	v.SetDefault("calendar.token_file", "token.json")
	v.SetDefault("calendar.calendar_id", "primary")
	v.SetDefault("calendar.timeout", 15*time.Second)
	v.SetDefault("calendar.requests_per_second", 5.0)

	v.SetDefault("salon.name", "Daisy Hair Salon")
	v.SetDefault("salon.timezone", "Asia/Ho_Chi_Minh")
	v.SetDefault("salon.open_time", "09:00")
	v.SetDefault("salon.close_time", "18:00")
	v.SetDefault("salon.slot_minutes", 60)
	v.SetDefault("salon.closed_days", []string{"sunday"})

	v.SetDefault("history.path", "history.db")

	v.SetDefault("chat.exit_command", "thoát")
	v.SetDefault("chat.user_prompt", "Bạn: ")
	v.SetDefault("chat.assistant_label", "Trợ lý: ")
	v.SetDefault("chat.farewell", "Cảm ơn bạn đã sử dụng dịch vụ. Tạm biệt!")

	v.SetDefault("log.level", "info")
}

// Load loads the configuration from config.yaml (or the file named by
// CONFIG_PATH), environment variables prefixed with SALON_ and a .env file
// in the working directory. A missing config file is not an error.
func Load() (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("SALON")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	if config.LLM.APIKey == "" {
		config.LLM.APIKey = apiKeyFromEnv(config.LLM.Provider)
	}
	if len(config.Salon.Services) == 0 {
		config.Salon.Services = DefaultServices
	}

	return &config, nil
}

func apiKeyFromEnv(provider string) string {
	if strings.EqualFold(provider, "gemini") {
		if k := os.Getenv("GOOGLE_API_KEY"); k != "" {
			return k
		}
	}
	return os.Getenv("OPENAI_API_KEY")
}
