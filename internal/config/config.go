package config

import (
	"os"
	"strconv"
	"strings"
)

type Config struct {
	HTTPAddr      string
	SweepSchedule string
	LogLevel      string

	// Suppression backend: empty RedisAddr means in-memory.
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Kafka intake: empty brokers disables the consumer.
	KafkaBrokers []string
	KafkaTopic   string
	KafkaGroupID string

	// Seed files, both optional.
	AgentsFile string
	RulesFile  string
}

func FromEnv() Config {
	return Config{
		HTTPAddr:      envDefault("HTTP_ADDR", ":8080"),
		SweepSchedule: envDefault("SWEEP_SCHEDULE", "* * * * *"),
		LogLevel:      envDefault("LOG_LEVEL", "info"),
		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       envInt("REDIS_DB", 0),
		KafkaBrokers:  envList("KAFKA_BROKERS"),
		KafkaTopic:    envDefault("KAFKA_TOPIC", "risk-tickets"),
		KafkaGroupID:  envDefault("KAFKA_GROUP_ID", "riskrouter"),
		AgentsFile:    os.Getenv("AGENTS_FILE"),
		RulesFile:     os.Getenv("RULES_FILE"),
	}
}

func envDefault(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func envInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func envList(key string) []string {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
