package app

import (
	"os"

	_ "github.com/joho/godotenv/autoload"

	"github.com/adanyl0v/todo-reminders/internal/config"
)

// MustReadConfig reads the YAML file named by CONFIG_PATH when it is set,
// otherwise the environment (and .env).
func MustReadConfig() {
	path := os.Getenv("CONFIG_PATH")
	cfg, err := config.NewReader(path).Read()
	if err != nil {
		globalLogger.Error().
			Err(err).
			Str("config_path", path).
			Msg("failed to read config")
		panic(err)
	}
	globalLogger.Info().
		Str("env", cfg.Env).
		Str("storage_driver", cfg.Storage.Driver).
		Msg("read config")

	config.SetGlobal(cfg)
}
