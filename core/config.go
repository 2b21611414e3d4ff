package core

import (
	"log"
	"net"
	"net/mail"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type (
	Config struct {
		Debug                     bool
		TestMode                  bool
		Env                       string // DEV (local; default), TEST, QA, PROD
		Build                     string
		WorkDir                   string
		AppName                   string
		FrontendBaseURL           string
		SecretKey                 string
		JWTExpirationDelta        time.Duration
		JWTRefreshExpirationDelta time.Duration
		RollbarToken              string
		SendgridApiKey            string
		defaultFromEmail          string

		Server    ServerConfig
		Database  DatabaseConfig
		Dashboard DashboardConfig
		Scheduler SchedulerConfig
		Seed      SeedConfig
	}

	ServerConfig struct {
		Address         string
		DebugAddress    string
		Host            string
		ShutdownTimeout time.Duration
	}

	DatabaseConfig struct {
		Engine        string // memory | postgres
		Host          string
		Port          int
		User          string
		Password      string
		AdminUser     string
		AdminPassword string
		Name          string
		DisableTLS    bool
	}

	DashboardConfig struct {
		ItemsPerPage int
	}

	SchedulerConfig struct {
		ExpirySpec  string
		OverdueSpec string
	}

	// SeedConfig is the admin account created along the demo data of the memory engine.
	// An empty password is generated at startup.
	SeedConfig struct {
		AdminEmail    string
		AdminPassword string
	}
)

// Address returns the database "host:port".
func (c DatabaseConfig) Address() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// DefaultFromEmail parses the configured sender address, falling back to a bare address.
func (c *Config) DefaultFromEmail() mail.Address {
	addr, err := mail.ParseAddress(c.defaultFromEmail)
	if err != nil {
		return mail.Address{Name: c.AppName, Address: c.defaultFromEmail}
	}
	return *addr
}

// NewConfig loads the configuration from defaults, the optional `config/.env.<env>` file and the environment.
// Environment variables are prefixed by the env name, e.g. `DEV_DATABASE_ENGINE=postgres`.
func NewConfig() *Config {
	v := viper.New()

	// defaults
	v.SetTypeByDefaultValue(true)
	v.SetDefault("debug", true)
	v.SetDefault("testMode", false)
	v.SetDefault("build", "develop")
	v.SetDefault("appName", "GMS")
	v.SetDefault("frontendBaseURL", "http://localhost:8000")
	v.SetDefault("secretKey", "k3#vq1z!r@8xwj0+2m&f_plt9c7%ub^h6(yo)dn5sea4gi")
	v.SetDefault("jwtExpirationDelta", 7*24*time.Hour)
	v.SetDefault("jwtRefreshExpirationDelta", 4*time.Hour)
	v.SetDefault("rollbarToken", "")
	v.SetDefault("sendgridApiKey", "")
	v.SetDefault("defaultFromEmail", "GMS <noreply@localhost>")

	v.SetDefault("server.address", ":8000")
	v.SetDefault("server.debugAddress", ":4000")
	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.shutdownTimeout", 5*time.Second)

	v.SetDefault("database.engine", "memory")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "gms")
	v.SetDefault("database.password", "")
	v.SetDefault("database.adminUser", "postgres")
	v.SetDefault("database.adminPassword", "")
	v.SetDefault("database.name", "gms")
	v.SetDefault("database.disableTLS", true)

	v.SetDefault("dashboard.itemsPerPage", 10)

	v.SetDefault("scheduler.expirySpec", "@daily")
	v.SetDefault("scheduler.overdueSpec", "@every 6h")

	v.SetDefault("seed.adminEmail", "admin@gms.local")
	v.SetDefault("seed.adminPassword", "")

	env := strings.ToUpper(os.Getenv("ENV"))
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		v.SetDefault("testMode", true)
	}
	v.SetEnvPrefix(env)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	wd, err := os.Getwd()
	if err != nil {
		log.Fatalf("config.os.Getwd: %v", err)
	}
	wd = projectRoot(wd)

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(wd, "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	v.AutomaticEnv()

	return &Config{
		Debug:                     v.GetBool("debug"),
		TestMode:                  v.GetBool("testMode"),
		Env:                       env,
		Build:                     v.GetString("build"),
		WorkDir:                   wd,
		AppName:                   v.GetString("appName"),
		FrontendBaseURL:           v.GetString("frontendBaseURL"),
		SecretKey:                 v.GetString("secretKey"),
		JWTExpirationDelta:        v.GetDuration("jwtExpirationDelta"),
		JWTRefreshExpirationDelta: v.GetDuration("jwtRefreshExpirationDelta"),
		RollbarToken:              v.GetString("rollbarToken"),
		SendgridApiKey:            v.GetString("sendgridApiKey"),
		defaultFromEmail:          v.GetString("defaultFromEmail"),
		Server: ServerConfig{
			Address:         v.GetString("server.address"),
			DebugAddress:    v.GetString("server.debugAddress"),
			Host:            v.GetString("server.host"),
			ShutdownTimeout: v.GetDuration("server.shutdownTimeout"),
		},
		Database: DatabaseConfig{
			Engine:        v.GetString("database.engine"),
			Host:          v.GetString("database.host"),
			Port:          v.GetInt("database.port"),
			User:          v.GetString("database.user"),
			Password:      v.GetString("database.password"),
			AdminUser:     v.GetString("database.adminUser"),
			AdminPassword: v.GetString("database.adminPassword"),
			Name:          v.GetString("database.name"),
			DisableTLS:    v.GetBool("database.disableTLS"),
		},
		Dashboard: DashboardConfig{
			ItemsPerPage: v.GetInt("dashboard.itemsPerPage"),
		},
		Scheduler: SchedulerConfig{
			ExpirySpec:  v.GetString("scheduler.expirySpec"),
			OverdueSpec: v.GetString("scheduler.overdueSpec"),
		},
		Seed: SeedConfig{
			AdminEmail:    v.GetString("seed.adminEmail"),
			AdminPassword: v.GetString("seed.adminPassword"),
		},
	}
}
