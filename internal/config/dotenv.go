package config

import (
	"github.com/joho/godotenv"
)

// LoadDotEnv reads .env files into the environment. Variables that are
// already set win over the files.
func LoadDotEnv(paths ...string) error {
	return godotenv.Load(paths...)
}
