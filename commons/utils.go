// SPDX-License-Identifier: GPL-3.0-only

package commons

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

var envLoaded = false

// LoadEnvFile seeds the process environment from the file named by
// --env-file. Variables already present in the environment win.
func LoadEnvFile() {
	if envLoaded {
		return
	}
	envLoaded = true
	args := os.Args[1:]
	for i, arg := range args {
		if arg == "--env-file" && i+1 < len(args) {
			envFile := args[i+1]
			fmt.Printf("Loading environment variables from file: %s\n", envFile)
			if err := godotenv.Load(envFile); err != nil {
				fmt.Printf("Failed to load env file: %s\n", err)
			}
			return
		}
	}
}

func GetEnv(key string, fallback ...string) string {
	LoadEnvFile()
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" && len(fallback) > 0 {
		return fallback[0]
	}
	return value
}

func GetEnvInt(key string, fallback int) (int, error) {
	raw := GetEnv(key)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return v, nil
}

func GetEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	raw := GetEnv(key)
	if raw == "" {
		return fallback, nil
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be a duration: %w", key, err)
	}
	return v, nil
}

// SplitList splits a comma separated value, dropping blanks.
func SplitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
