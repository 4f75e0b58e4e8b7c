package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/friendgate/friendgate/store"
)

const envPrefix = "FRIENDGATE"

type viperConfig struct {
	v *viper.Viper
}

var _ Config = (*viperConfig)(nil)

// New loads configuration from the environment and, when present, a
// friendgate.yaml file in the working directory or /etc/friendgate.
func New() Config {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("port", "8080")
	v.SetDefault("app_name", "FriendGate")
	v.SetDefault("env", "DEV")
	v.SetDefault("base_domain", "localhost")
	v.SetDefault("cookie_domain", "")
	v.SetDefault("admin_email", "")
	v.SetDefault("sweep_interval", "1h")
	v.SetDefault("database.type", string(store.DatabaseTypeSQLite))
	v.SetDefault("database.sqlite.path", "")
	v.SetDefault("database.postgres.host", "")
	v.SetDefault("database.postgres.port", 5432)
	v.SetDefault("database.postgres.name", "friendgate")
	v.SetDefault("database.postgres.user", "friendgate")
	v.SetDefault("database.postgres.password", "")
	v.SetDefault("database.postgres.sslmode", "")

	v.SetConfigName("friendgate")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("/etc/friendgate")
	_ = v.ReadInConfig() // file is optional, env alone is enough

	return &viperConfig{v: v}
}

func (c *viperConfig) GetPort() string {
	port := c.v.GetString("port")
	if !strings.HasPrefix(port, ":") {
		port = fmt.Sprintf(":%s", port)
	}
	return port
}

func (c *viperConfig) GetAppName() string {
	return c.v.GetString("app_name")
}

func (c *viperConfig) GetEnv() string {
	return c.v.GetString("env")
}

func (c *viperConfig) GetBaseDomain() string {
	return c.v.GetString("base_domain")
}

func (c *viperConfig) GetCookieDomain() string {
	return c.v.GetString("cookie_domain")
}

func (c *viperConfig) GetAdminPassword() string {
	return c.v.GetString("admin_password")
}

func (c *viperConfig) GetAdminEmail() string {
	return c.v.GetString("admin_email")
}

func (c *viperConfig) GetBasicAuthUser() string {
	return c.v.GetString("basic_auth_user")
}

func (c *viperConfig) GetBasicAuthPass() string {
	return c.v.GetString("basic_auth_pass")
}

func (c *viperConfig) GetSweepInterval() time.Duration {
	interval := c.v.GetDuration("sweep_interval")
	if interval <= 0 {
		interval = time.Hour
	}
	return interval
}

func (c *viperConfig) GetDatabase() *store.Config {
	return &store.Config{
		Type: store.DatabaseType(c.v.GetString("database.type")),
		SQLite: store.SQLiteConfig{
			Path: c.v.GetString("database.sqlite.path"),
		},
		Postgres: store.PostgresConfig{
			Host:     c.v.GetString("database.postgres.host"),
			Port:     c.v.GetInt("database.postgres.port"),
			Database: c.v.GetString("database.postgres.name"),
			User:     c.v.GetString("database.postgres.user"),
			Password: c.v.GetString("database.postgres.password"),
			SSLMode:  c.v.GetString("database.postgres.sslmode"),
		},
	}
}
