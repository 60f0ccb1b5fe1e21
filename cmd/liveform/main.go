// Command liveform serves the live-validated signup page.
//
// Configuration comes from the environment (and an optional .env file).
// LIVEFORM_BACKEND selects where taken usernames and emails are looked up:
// memory, postgres, redis or mongo. The redis backend also holds the rate
// limit buckets so several instances share them. CLIENTIP_TRUSTED_PROXIES
// lists the proxies whose forwarding headers name the client.
package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/liveform/modules/signup"
	"github.com/dmitrymomot/liveform/pkg/clientip"
	"github.com/dmitrymomot/liveform/pkg/config"
	"github.com/dmitrymomot/liveform/pkg/cookie"
	"github.com/dmitrymomot/liveform/pkg/csrf"
	"github.com/dmitrymomot/liveform/pkg/environment"
	"github.com/dmitrymomot/liveform/pkg/formvalidator"
	"github.com/dmitrymomot/liveform/pkg/httpserver"
	"github.com/dmitrymomot/liveform/pkg/logger"
	"github.com/dmitrymomot/liveform/pkg/mongo"
	"github.com/dmitrymomot/liveform/pkg/pg"
	"github.com/dmitrymomot/liveform/pkg/ratelimiter"
	"github.com/dmitrymomot/liveform/pkg/redis"
	"github.com/dmitrymomot/liveform/pkg/requestid"
	"github.com/dmitrymomot/liveform/pkg/uniqueness"
)

type appConfig struct {
	Name          string `env:"APP_NAME" envDefault:"liveform"`
	Env           string `env:"APP_ENV" envDefault:"development"`
	LogLevel      string `env:"LOG_LEVEL"`
	Backend       string `env:"LIVEFORM_BACKEND" envDefault:"memory"`
	MongoDatabase string `env:"MONGODB_DATABASE" envDefault:"liveform"`
}

var errUnknownBackend = errors.New("unknown backend")

func main() {
	var app appConfig
	config.MustLoad(&app)

	log := logger.New(
		logger.WithEnvironment(environment.Parse(app.Env), app.Name),
		logger.WithLevelName(app.LogLevel),
		logger.WithContextExtractors(requestid.LoggerExtractor()),
	)
	logger.SetAsDefault(log)

	if err := run(context.Background(), app, log); err != nil {
		log.Error("liveform stopped", logger.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, app appConfig, log *slog.Logger) error {
	var (
		cookieCfg cookie.Config
		csrfCfg   csrf.Config
		formCfg   formvalidator.Config
		signupCfg signup.Config
		serverCfg httpserver.Config
		ipCfg     clientip.Config
	)
	for _, load := range []func() error{
		func() error { return config.Load(&cookieCfg) },
		func() error { return config.Load(&csrfCfg) },
		func() error { return config.Load(&formCfg) },
		func() error { return config.Load(&signupCfg) },
		func() error { return config.Load(&serverCfg) },
		func() error { return config.Load(&ipCfg) },
	} {
		if err := load(); err != nil {
			return err
		}
	}

	cookies, err := cookie.NewFromConfig(cookieCfg)
	if err != nil {
		return err
	}
	ips, err := clientip.NewResolver(ipCfg)
	if err != nil {
		return err
	}

	be, err := openBackend(ctx, app, log)
	if err != nil {
		return err
	}
	defer be.close()

	opts := []signup.Option{
		signup.WithLogger(log),
		signup.WithCSRF(csrf.New(cookies, csrfCfg, csrf.WithLogger(log))),
		signup.WithFormOptions(formvalidator.WithConfig(formCfg)),
	}
	if be.rates != nil {
		opts = append(opts, signup.WithRateLimitStore(be.rates))
	}
	svc, err := signup.NewService(signupCfg, be.store, be.accounts, cookies, opts...)
	if err != nil {
		return err
	}
	defer svc.Close()

	r := chi.NewRouter()
	r.Use(requestid.Middleware)
	r.Use(ips.Middleware)
	r.Use(environment.Middleware(environment.Parse(app.Env)))

	r.Get("/health/live", httpserver.HealthCheckHandler(log))
	r.Get("/health/ready", httpserver.HealthCheckHandler(log, be.checks...))
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/signup/", http.StatusFound)
	})
	r.Mount("/signup", svc.Handle())

	log.Info("starting liveform", slog.String("backend", app.Backend), slog.String("addr", serverCfg.Addr))
	return httpserver.New(serverCfg, httpserver.WithLogger(log)).Run(ctx, r)
}

// backend bundles what the selected storage provides.
type backend struct {
	store    uniqueness.Store
	accounts signup.AccountStore
	rates    ratelimiter.Store // nil keeps rate limits in process
	checks   []httpserver.HealthCheck
	close    func()
}

// openBackend connects the uniqueness store selected by app.Backend. Only the
// postgres backend persists accounts; the others keep them in memory.
func openBackend(ctx context.Context, app appConfig, log *slog.Logger) (*backend, error) {
	fields := []string{"username", "email"}

	switch app.Backend {
	case "memory":
		return &backend{
			store:    uniqueness.NewMemory(fields...),
			accounts: signup.NewMemoryAccounts(),
			close:    func() {},
		}, nil

	case "postgres":
		var cfg pg.Config
		if err := config.Load(&cfg); err != nil {
			return nil, err
		}
		pool, err := pg.Connect(ctx, cfg)
		if err != nil {
			return nil, err
		}
		migrations, err := fs.Sub(signup.Migrations, signup.MigrationsDir)
		if err == nil {
			err = pg.MigrateFS(ctx, pool, cfg, migrations, log)
		}
		var store *uniqueness.Postgres
		if err == nil {
			store, err = uniqueness.NewPostgres(pool, map[string]uniqueness.Column{
				"username": {Table: "accounts", Column: "username_key"},
				"email":    {Table: "accounts", Column: "email_key"},
			})
		}
		if err != nil {
			pool.Close()
			return nil, err
		}
		return &backend{
			store:    store,
			accounts: signup.NewPostgresAccounts(pool),
			checks:   []httpserver.HealthCheck{pg.Healthcheck(pool)},
			close:    pool.Close,
		}, nil

	case "redis":
		var cfg redis.Config
		if err := config.Load(&cfg); err != nil {
			return nil, err
		}
		client, err := redis.Connect(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return &backend{
			store:    uniqueness.NewRedis(client, uniqueness.DefaultRedisPrefix, fields...),
			accounts: signup.NewMemoryAccounts(),
			rates:    ratelimiter.NewRedisStore(client, ratelimiter.DefaultRedisPrefix),
			checks:   []httpserver.HealthCheck{redis.Healthcheck(client)},
			close:    func() { _ = client.Close() },
		}, nil

	case "mongo":
		var cfg mongo.Config
		if err := config.Load(&cfg); err != nil {
			return nil, err
		}
		client, err := mongo.New(ctx, cfg)
		if err != nil {
			return nil, err
		}
		disconnect := func() { _ = client.Disconnect(context.Background()) }
		store := uniqueness.NewMongo(client.Database(app.MongoDatabase).Collection("taken_values"), fields...)
		if err := store.EnsureIndex(ctx); err != nil {
			disconnect()
			return nil, err
		}
		return &backend{
			store:    store,
			accounts: signup.NewMemoryAccounts(),
			checks:   []httpserver.HealthCheck{mongo.Healthcheck(client)},
			close:    disconnect,
		}, nil

	default:
		return nil, fmt.Errorf("%w: %q", errUnknownBackend, app.Backend)
	}
}
