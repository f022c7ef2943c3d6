package config

import (
	"flag"
	"fmt"
	"strings"
)

const HelpMessage = `
EmergiLink emergency response backend

Usage:
  emergilink -mode <mode> [-config-path config.yaml]
  emergilink -issue-token <user_id> [-role citizen|dispatcher|admin]
  emergilink -help

Modes:
  emergency-service   HTTP API: ambulances, bookings, SOS, alerts, directory, live feed
  notifier-service    consumes contact notifications and posts them to the gateway

Every setting can be given as an environment variable or as a key in the yaml file.
Main keys: SERVER_PORT, STORAGE_DRIVER (memory|postgres), DATABASE_*, REDIS_*,
RABBITMQ_*, NOTIFIER_LEDGER (memory|redis), NOTIFIER_CHANNEL (log|rabbit),
AUTH_ENABLED, AUTH_JWT_SECRET, RATE_LIMIT, GATEWAY_URL, LOCATIONIQ_API_KEY, LOG_LEVEL.
`

func PrintHelp() {
	if HelpMessage != "" {
		fmt.Printf("%s", HelpMessage)
	} else {
		flag.Usage()
	}
}

// PrintConfig prints the effective configuration with secrets masked.
func PrintConfig(cfg *Config) {
	var b strings.Builder
	fmt.Fprintf(&b, "mode:            %s\n", cfg.Mode)
	fmt.Fprintf(&b, "log level:       %s\n", cfg.LogLevel)
	fmt.Fprintf(&b, "listen:          %s:%s\n", cfg.Server.Host, cfg.Server.Port)
	fmt.Fprintf(&b, "storage:         %s\n", cfg.Storage.Driver)
	fmt.Fprintf(&b, "database:        %s@%s:%s/%s\n", cfg.Database.User, cfg.Database.Host, cfg.Database.Port, cfg.Database.Database)
	fmt.Fprintf(&b, "redis:           %s db=%d\n", cfg.Redis.GetAddr(), cfg.Redis.DB)
	fmt.Fprintf(&b, "rabbitmq:        %s:%s\n", cfg.RabbitMQ.Host, cfg.RabbitMQ.Port)
	fmt.Fprintf(&b, "notifier:        ledger=%s channel=%s\n", cfg.Notifier.Ledger, cfg.Notifier.Channel)
	fmt.Fprintf(&b, "auth enabled:    %t (secret %s)\n", cfg.Auth.Enabled, mask(cfg.Auth.JWTSecret))
	fmt.Fprintf(&b, "rate limit:      %s\n", cfg.RateLimit.Rate)
	fmt.Fprintf(&b, "gateway:         %s\n", cfg.Gateway.URL)
	fmt.Fprintf(&b, "locationiq key:  %s\n", mask(cfg.ExternalAPI.LocationIQapiKey))
	fmt.Print(b.String())
}

func mask(s string) string {
	if s == "" {
		return "<unset>"
	}
	return "****"
}
