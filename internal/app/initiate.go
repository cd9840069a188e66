package app

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/cors"
	"github.com/shandysiswandi/hijackaudit/internal/pkg/pkgconfig"
	"github.com/shandysiswandi/hijackaudit/internal/pkg/pkglog"
	"github.com/shandysiswandi/hijackaudit/internal/pkg/pkgrouter"
	"github.com/shandysiswandi/hijackaudit/internal/pkg/pkguid"
)

func (a *App) initConfig() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("failed to load .env file", "error", err)
	}

	path := "/config/config.yaml"
	if os.Getenv("LOCAL") == "true" {
		path = "./config/config.yaml"
	}
	if p := os.Getenv("CONFIG_PATH"); p != "" {
		path = p
	}

	cfg, err := pkgconfig.NewViper(path)
	if err != nil {
		slog.Error("failed to init config", "error", err)
		os.Exit(1)
	}

	//nolint:errcheck,gosec // ignore error
	os.Setenv("TZ", cfg.GetString("tz"))

	if lvl := cfg.GetString("log.level"); lvl != "" && !pkglog.SetLevel(lvl) {
		slog.Warn("unknown log level, keeping default", "level", lvl)
	}

	a.config = cfg
}

func (a *App) initLibraries() {
	a.uuid = pkguid.NewUUID()

	sf, err := pkguid.NewSnowflake()
	if err != nil {
		slog.Error("failed to init snowflake", "error", err)
		os.Exit(1)
	}
	a.snowflake = sf
}

func (a *App) initHTTPServer() {
	a.router = pkgrouter.NewRouter(a.uuid)

	corsHandler := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{"Content-Disposition", pkgrouter.HeaderCorrelationID},
		AllowCredentials: true,
	})

	a.httpServer = &http.Server{
		Addr:              a.config.GetString("server.address.http"),
		Handler:           corsHandler.Handler(a.router),
		ReadHeaderTimeout: 10 * time.Second,
	}
}

//nolint:unparam // is always nil
func (a *App) initClosers() {
	if a.closerFn == nil {
		a.closerFn = map[string]func(context.Context) error{}
	}

	a.closerFn["HTTP Server"] = func(ctx context.Context) error {
		return a.httpServer.Shutdown(ctx)
	}
	a.closerFn["Config"] = func(context.Context) error {
		return a.config.Close()
	}
}
