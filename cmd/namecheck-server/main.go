// Command namecheck-server runs the lookup engine behind an HTTP API.
//
// Configuration comes from the environment, with an optional .env file in
// the working directory. Credentials are only ever read from the
// environment; they are never logged or echoed.
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/urrwish/namecheck"
	"github.com/urrwish/namecheck/httpapi"
)

type serverEnv struct {
	Addr    string `env:"NAMECHECK_ADDR" envDefault:":8080"`
	Backend string `env:"NAMECHECK_BACKEND" envDefault:"web"`

	Email    string `env:"UNIPIN_EMAIL"`
	Password string `env:"UNIPIN_PASSWORD"`
	APIToken string `env:"ROOTER_TOKEN"`

	RedisAddr  string `env:"REDIS_ADDR"`
	CacheFile  string `env:"NAMECHECK_CACHE_FILE" envDefault:"data/cache.db"`
	StatePath  string `env:"NAMECHECK_SESSION_STATE" envDefault:"data/session_state.json"`
	ResumePath string `env:"NAMECHECK_SESSION_RESUME" envDefault:"data/session_resume.txt"`

	AuditLog bool `env:"NAMECHECK_AUDIT" envDefault:"false"`
}

func main() {
	// A missing .env file is fine; the environment alone may be complete.
	_ = godotenv.Load()

	var ev serverEnv
	if err := env.Parse(&ev); err != nil {
		log.Fatalf("parse environment: %v", err)
	}

	cfg := namecheck.DefaultConfig()
	cfg.Web.Email = ev.Email
	cfg.Web.Password = ev.Password
	cfg.API.Token = ev.APIToken
	cfg.Session.StatePath = ev.StatePath
	cfg.Session.ResumePath = ev.ResumePath
	cfg.Cache.FilePath = ev.CacheFile
	cfg.Audit.Enabled = ev.AuditLog

	switch ev.Backend {
	case "web":
		cfg.Backend = namecheck.BackendWeb
	case "api":
		cfg.Backend = namecheck.BackendAPI
	default:
		log.Fatalf("unknown backend %q (want web or api)", ev.Backend)
	}

	b := namecheck.NewBuilder().WithConfig(cfg)
	if ev.AuditLog {
		b = b.WithAuditSink(namecheck.NewJSONWriterSink(os.Stdout))
	}
	if ev.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: ev.RedisAddr})
		defer rdb.Close()
		b = b.WithRedis(rdb)
	}

	engine, err := b.Build()
	if err != nil {
		log.Fatalf("build engine: %v", err)
	}
	defer engine.Close()

	srv := &http.Server{
		Addr:         ev.Addr,
		Handler:      httpapi.New(engine),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Printf("listening on %s (backend=%s)", ev.Addr, ev.Backend)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("serve: %v", err)
		}
		return
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}
