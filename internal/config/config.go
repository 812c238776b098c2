package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	HTTPAddr         string
	DataDir          string
	RedisAddr        string
	KafkaBrokers     []string
	ServiceName      string
	AdminToken       string
	AdminWhatsApp    string
	NotifyGatewayURL string
	ShadowSTKURL     string
	ShadowStatusURL  string
	StatumAirtimeURL string
	PollInterval     time.Duration
	EngineWorkers    int
}

func Load() Config {
	return Config{
		HTTPAddr:         getenv("HTTP_ADDR", ":3000"),
		DataDir:          getenv("DATA_DIR", "./data"),
		RedisAddr:        getenv("REDIS_ADDR", "redis:6379"),
		KafkaBrokers:     splitCSV(getenv("KAFKA_BROKERS", "kafka:9092")),
		ServiceName:      getenv("SERVICE_NAME", "airtime-api"),
		AdminToken:       getenv("ADMIN_UI_TOKEN", "changeme-strong-token"),
		AdminWhatsApp:    getenv("ADMIN_WHATSAPP", ""),
		NotifyGatewayURL: getenv("NOTIFY_GATEWAY_URL", ""),
		ShadowSTKURL:     getenv("SHADOW_STK_URL", ""),
		ShadowStatusURL:  getenv("SHADOW_STATUS_URL", ""),
		StatumAirtimeURL: getenv("STATUM_AIRTIME_URL", ""),
		PollInterval:     time.Duration(atoi(getenv("POLL_INTERVAL", "5"), 5)) * time.Second,
		EngineWorkers:    atoi(getenv("ENGINE_WORKERS", "8"), 8),
	}
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func atoi(s string, def int) int {
	i, err := strconv.Atoi(s)
	if err != nil || i <= 0 {
		return def
	}
	return i
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}
