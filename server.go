// SPDX-License-Identifier: GPL-3.0-only

package main

import (
	"os"
	"slices"

	"deletion-server/commons"
	"deletion-server/crypto"
	"deletion-server/db"
	"deletion-server/deletion"
	"deletion-server/handlers"
	"deletion-server/hooks"
	"deletion-server/identity"
	"deletion-server/notifications"
	"deletion-server/rabbitmq"
	"deletion-server/ratelimit"
	"deletion-server/routes"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

func main() {
	commons.LoadEnvFile()
	commons.InitLogger()

	cfg, err := commons.LoadConfig()
	if err != nil {
		commons.Logger.Fatalf("Invalid configuration: %v", err)
	}

	e := echo.New()
	e.HideBanner = true

	e.Logger.SetLevel(commons.Logger.Level())
	e.Logger.SetHeader("${time_rfc3339} ${level} ${short_file}:${line} -")

	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:      true,
		LogStatus:   true,
		LogMethod:   true,
		LogLatency:  true,
		LogRemoteIP: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			logMsg := func(format string, args ...any) {
				switch {
				case v.Status >= 500:
					e.Logger.Errorf(format, args...)
				case v.Status >= 400:
					e.Logger.Warnf(format, args...)
				default:
					e.Logger.Infof(format, args...)
				}
			}
			// The confirm link carries the token in the query string.
			logMsg("%s %s - %d - %.2fms - %s",
				v.Method,
				c.Path(),
				v.Status,
				float64(v.Latency.Microseconds())/1000.0,
				v.RemoteIP,
			)
			return nil
		},
	}))
	debugMode := slices.Contains(os.Args[1:], "--debug")
	if debugMode {
		e.Logger.Warn("Debug mode is enabled.")
		e.Debug = true
		e.Logger.SetLevel(log.DEBUG)
	}

	e.Use(middleware.Recover())

	conn, err := db.Open(cfg.DB)
	if err != nil {
		commons.Logger.Fatalf("Failed to connect to database: %v", err)
	}
	if slices.Contains(os.Args[1:], "--migrate-db") {
		commons.Logger.Debug("--migrate-db flag detected, running migrations")
		if err := db.Migrate(conn); err != nil {
			commons.Logger.Fatal(err)
		}
	}

	verifier, deleter := newIdentityClients(cfg.Identity, conn)

	mailer, err := notifications.NewEmailSender(cfg.Mail)
	if err != nil {
		commons.Logger.Fatalf("Failed to configure mail transport: %v", err)
	}

	store := deletion.NewGormTokenStore(conn)
	issuer := deletion.NewIssuer(deletion.IssuerDeps{
		Verifier: verifier,
		Store:    store,
		Mailer:   mailer,
		Links:    deletion.LinkBuilder{BaseURL: cfg.SiteBaseURL, Path: cfg.ConfirmPath},
		Limiter:  newIssueLimiter(cfg.Throttle),
	})
	confirmer := deletion.NewConfirmer(deletion.ConfirmerDeps{
		Store:   store,
		Deleter: deleter,
		Hooks:   newHooks(cfg.Hooks, conn),
	})

	routes.RegisterRoutes(e, handlers.NewDeletionHandler(issuer, confirmer), cfg.AllowedOrigins)

	e.Logger.Fatal(e.Start(cfg.Port))
}

func newIdentityClients(cfg commons.IdentityConfig, conn *gorm.DB) (deletion.CredentialVerifier, deletion.AccountDeleter) {
	if cfg.Provider == "gotrue" {
		commons.Logger.Infof("Using GoTrue identity store at %s", cfg.SupabaseURL)
		return identity.NewGoTrueVerifier(cfg.SupabaseURL, cfg.AnonKey), identity.NewGoTrueAdmin(cfg.SupabaseURL, cfg.ServiceRoleKey)
	}
	commons.Logger.Info("Using local identity store")
	return identity.NewLocalVerifier(conn, crypto.NewCrypto()), identity.NewLocalAdmin(conn)
}

func newHooks(cfg commons.HooksConfig, conn *gorm.DB) []deletion.Hook {
	var out []deletion.Hook
	if cfg.CleanupRPCName != "" {
		hook, err := hooks.NewSQLFunctionHook(conn, cfg.CleanupRPCName, cfg.CleanupRPCParam)
		if err != nil {
			commons.Logger.Fatal(err)
		}
		out = append(out, hook)
	}
	if cfg.AMQPURL != "" {
		publisher, err := rabbitmq.NewPublisher(rabbitmq.PublisherConfig{AMQPURL: cfg.AMQPURL, Exchange: cfg.AMQPExchange})
		if err != nil {
			commons.Logger.Fatal(err)
		}
		out = append(out, hooks.NewBrokerHook(publisher))
	}
	commons.Logger.Infof("%d post-consume hook(s) enabled", len(out))
	return out
}

func newIssueLimiter(cfg commons.ThrottleConfig) deletion.Limiter {
	if cfg.RedisAddr == "" {
		return nil
	}
	client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	commons.Logger.Infof("Issue throttle enabled: %d per %s (redis %s)", cfg.Limit, cfg.Window, cfg.RedisAddr)
	return ratelimit.NewRedisLimiter(client, "deletion", cfg.Limit, cfg.Window)
}
