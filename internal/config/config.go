// Package config exposes runtime configuration behind getter interfaces
// so components depend only on the settings they read. Values come from
// FRIENDGATE_-prefixed environment variables, with an optional YAML file
// underneath.
package config

import (
	"time"

	"github.com/friendgate/friendgate/store"
)

type Config interface {
	EnvConfig
	PortalConfig
	DatabaseConfig
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetEnv() string
}

type PortalConfig interface {
	// GetBaseDomain is the apex the portal and all services live under.
	GetBaseDomain() string
	// GetCookieDomain is the explicit cookie domain; empty or "localhost"
	// means local development and disables secure/domain cookie flags.
	GetCookieDomain() string
	GetAdminPassword() string
	GetAdminEmail() string
	GetBasicAuthUser() string
	GetBasicAuthPass() string
	// GetSweepInterval is the period of the expired-session reclaim loop.
	GetSweepInterval() time.Duration
}

type DatabaseConfig interface {
	GetDatabase() *store.Config
}
