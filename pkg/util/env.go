package util

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cast"
)

// LoadEnv loads .env.<env> and then .env into the process environment.
// Variables already present in the environment are never overridden.
func LoadEnv(env string) error {
	var files []string
	for _, name := range []string{".env." + env, ".env"} {
		if _, err := os.Stat(name); err == nil {
			files = append(files, name)
		}
	}
	if len(files) == 0 {
		return nil
	}
	return godotenv.Load(files...)
}

func GetEnv(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

// GetEnvDefault returns def when key is unset or blank.
func GetEnvDefault(key, def string) string {
	if v := GetEnv(key); v != "" {
		return v
	}
	return def
}

func GetIntEnv(key string) int64 {
	return cast.ToInt64(GetEnv(key))
}

func GetIntEnvDefault(key string, def int64) int64 {
	v := GetEnv(key)
	if v == "" {
		return def
	}
	n, err := cast.ToInt64E(v)
	if err != nil {
		return def
	}
	return n
}

func GetBoolEnv(key string) bool {
	return cast.ToBool(GetEnv(key))
}

// GetDurationEnv accepts Go duration strings ("5s") or plain integers as nanoseconds.
func GetDurationEnv(key string, def time.Duration) time.Duration {
	v := GetEnv(key)
	if v == "" {
		return def
	}
	d, err := cast.ToDurationE(v)
	if err != nil || d <= 0 {
		return def
	}
	return d
}

// GetListEnv splits a comma separated value, dropping empty items.
func GetListEnv(key string, def []string) []string {
	v := GetEnv(key)
	if v == "" {
		return def
	}
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
