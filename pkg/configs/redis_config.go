// pkg/configs/redis_config.go
package configs

import (
	"os"
	"strconv"
)

// RedisConfig การตั้งค่าการเชื่อมต่อ Redis
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// LoadRedisConfig อ่านการตั้งค่า Redis จาก environment
func LoadRedisConfig() *RedisConfig {
	db := 0
	if v := os.Getenv("REDIS_DB"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			db = parsed
		}
	}

	return &RedisConfig{
		Host:     getEnv("REDIS_HOST", "localhost"),
		Port:     getEnv("REDIS_PORT", "6379"),
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       db,
	}
}
