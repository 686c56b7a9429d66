package config

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config — конфигурация бота, загружаемая один раз на старте.
type Config struct {
	TelegramToken    string
	ScheduleBaseURL  string
	EnglishTeacher   string
	Environment      string
	SweepConcurrency int
}

const defaultSweepConcurrency = 4

// Load читает .env (если он есть) и переменные окружения. Отсутствие
// обязательной переменной — фатальная ошибка старта.
func Load() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := &Config{
		TelegramToken:    os.Getenv("TELEGRAM_TOKEN"),
		ScheduleBaseURL:  os.Getenv("SCHEDULE_BASE_URL"),
		EnglishTeacher:   os.Getenv("ENGLISH_TEACHER"),
		Environment:      os.Getenv("ENV"),
		SweepConcurrency: defaultSweepConcurrency,
	}

	if cfg.Environment == "" {
		cfg.Environment = "development"
	}

	if raw := os.Getenv("SWEEP_CONCURRENCY"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return nil, fmt.Errorf("SWEEP_CONCURRENCY must be a positive integer, got %q", raw)
		}
		cfg.SweepConcurrency = n
	}

	for name, value := range map[string]string{
		"TELEGRAM_TOKEN":    cfg.TelegramToken,
		"SCHEDULE_BASE_URL": cfg.ScheduleBaseURL,
		"ENGLISH_TEACHER":   cfg.EnglishTeacher,
	} {
		if value == "" {
			return nil, fmt.Errorf("%s is required but not set", name)
		}
	}

	return cfg, nil
}
