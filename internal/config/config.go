package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// OperatingSlot is one bookable window in the daily template.
type OperatingSlot struct {
	StartTime string `yaml:"start_time"`
	EndTime   string `yaml:"end_time"`
}

// Config holds the application settings loaded from YAML with env overrides.
type Config struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`

	Booking struct {
		// WindowDays is how far ahead the availability calendar extends.
		WindowDays int `yaml:"window_days"`
		// OperatingHours is the per-day slot template. Duplicate entries
		// are removed at load time; slot ids index the deduplicated list.
		OperatingHours []OperatingSlot `yaml:"operating_hours"`
	} `yaml:"booking"`

	Chat struct {
		MessagePageSize int `yaml:"message_page_size"`
	} `yaml:"chat"`

	JWTSecret string `yaml:"-"`
}

// Load reads the config file at path, applies defaults and env overrides.
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	if port := os.Getenv("PORT"); port != "" {
		cfg.Server.Port = port
	}
	cfg.JWTSecret = os.Getenv("JWT_SECRET")
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET environment variable is required")
	}

	cfg.Booking.OperatingHours = dedupeSlots(cfg.Booking.OperatingHours)
	if len(cfg.Booking.OperatingHours) == 0 {
		return nil, fmt.Errorf("operating_hours template is empty")
	}

	return cfg, nil
}

func defaultConfig() *Config {
	cfg := &Config{}
	cfg.Server.Port = "8080"
	cfg.Booking.WindowDays = 30
	cfg.Booking.OperatingHours = DefaultOperatingHours()
	cfg.Chat.MessagePageSize = 50
	return cfg
}

// DefaultOperatingHours returns the standard 09:00-22:00 hourly template.
func DefaultOperatingHours() []OperatingSlot {
	slots := make([]OperatingSlot, 0, 13)
	for h := 9; h < 22; h++ {
		slots = append(slots, OperatingSlot{
			StartTime: fmt.Sprintf("%02d:00", h),
			EndTime:   fmt.Sprintf("%02d:00", h+1),
		})
	}
	return slots
}

// dedupeSlots drops repeated template entries while preserving order.
func dedupeSlots(slots []OperatingSlot) []OperatingSlot {
	seen := make(map[OperatingSlot]bool, len(slots))
	out := slots[:0]
	for _, s := range slots {
		if seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}
