// Package env reads configuration from a .env file merged with the process
// environment. Process environment wins.
package env

import (
	"fmt"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/joho/godotenv"
)

var dotEnvMap = loadDotEnv()

func loadDotEnv() map[string]string {
	bs, err := os.ReadFile(".env")
	if err != nil {
		return map[string]string{}
	}
	m, err := godotenv.Unmarshal(string(bs))
	if err != nil {
		return map[string]string{}
	}
	return m
}

func getEnv(key string) string {
	value := dotEnvMap[key]

	if v := os.Getenv(key); v != "" {
		value = v
	}

	return value
}

func GetDefault(key, def string) string {
	value := getEnv(key)
	if value == "" {
		return def
	}
	return value
}

func GetRequired(key string) string {
	value := getEnv(key)
	if value == "" {
		if !testing.Testing() {
			panic(fmt.Sprintf("`%s` is not set or is empty", key))
		}
	}
	return value
}

func GetIntDefault(key string, def int) int {
	value := getEnv(key)
	if value == "" {
		return def
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		panic(fmt.Sprintf("`%s` is not an integer: %s", key, value))
	}
	return n
}

func GetDurationDefault(key string, def time.Duration) time.Duration {
	value := getEnv(key)
	if value == "" {
		return def
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		panic(fmt.Sprintf("`%s` is not a duration: %s", key, value))
	}
	return d
}

func GetBoolDefault(key string, def bool) bool {
	value := getEnv(key)
	if value == "" {
		return def
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		panic(fmt.Sprintf("`%s` is not a bool: %s", key, value))
	}
	return b
}
