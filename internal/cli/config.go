package cli

import (
	"fmt"
	"time"

	"github.com/hirmezb/tasktracker/internal/client"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config is read from the environment; --api and --session override it.
type Config struct {
	APIURL  string        `env:"TASKCTL_API_URL" env-default:"http://localhost:5000/api"`
	Session string        `env:"TASKCTL_SESSION"`
	Timeout time.Duration `env:"TASKCTL_TIMEOUT" env-default:"10s"`
}

func loadConfig() (Config, error) {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return Config{}, fmt.Errorf("read env: %w", err)
	}
	return cfg, nil
}

// sessionPath falls back to the per-user default location.
func (c Config) sessionPath() (string, error) {
	if c.Session != "" {
		return c.Session, nil
	}
	return client.DefaultSessionPath()
}
