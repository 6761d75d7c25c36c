package main

import (
	"strconv"
	"strings"
	"time"

	"github.com/subscription-bot/server/internal/records"
	"github.com/subscription-bot/server/internal/records/mirror"
	"github.com/subscription-bot/server/internal/transport/telegram"
	logx "github.com/subscription-bot/server/pkg/logger"
	pkgredis "github.com/subscription-bot/server/pkg/redis"
)

// AppConfig is every setting of the bot, read from the environment (and
// from .env for local runs).
type AppConfig struct {
	Environment string `envconfig:"ENVIRONMENT" default:"development"`
	LogFile     string `envconfig:"LOG_FILE" default:"bot.log"`

	Telegram telegram.Config
	// OperatorChatID is the operator group; zero disables relay.
	OperatorChatID int64  `envconfig:"ADMIN_GROUP_ID"`
	AdminIDs       string `envconfig:"ADMIN_IDS"`

	GraphFile string `envconfig:"FSM_CONFIG" default:"fsm_config.yaml"`
	MediaDir  string `envconfig:"MEDIA_DIR"`

	Records records.Config
	Disk    mirror.Config

	StartupTimeout time.Duration `envconfig:"STARTUP_TIMEOUT" default:"10s"`

	// SessionBackend is "memory" or "redis".
	SessionBackend string        `envconfig:"SESSION_BACKEND" default:"memory"`
	SessionTTL     time.Duration `envconfig:"SESSION_TTL" default:"720h"`
	Redis          pkgredis.Config
}

// parseAdminIDs reads a comma separated id list. Malformed entries are
// logged and skipped.
func parseAdminIDs(raw string) []int64 {
	var ids []int64
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			logx.Warn().Str("value", part).Msg("ignoring malformed ADMIN_IDS entry")
			continue
		}
		ids = append(ids, id)
	}
	return ids
}
