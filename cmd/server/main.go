// Copyright (C) 2025 the vowlist maintainers
// See root-dir/LICENSE for more information

package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"time"

	"net/http"
	"net/url"

	bolt "go.etcd.io/bbolt"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/vowlist/core/internal/db"
	"github.com/vowlist/core/internal/db/kvdb"
	"github.com/vowlist/core/internal/db/sqlitedb"
	"github.com/vowlist/core/internal/model"
	"github.com/vowlist/core/internal/server"
	"github.com/vowlist/core/internal/server/session"
)

func main() {
	var (
		serviceName = flag.String("service-name", "vowlist", "otel service name")
		addr        = flag.String("addr", "0.0.0.0:8080", "default server address")
		dbStr       = flag.String("db", "sqlite://data/vowlist.db", "database connection string, sqlite:// or kvdb://")
		otlpAddr    = flag.String("otlp-grpc", "", "default otlp/gRPC address, by default disabled. Example value: localhost:4317")
		logLevelArg = flag.String("log-level", "INFO", "log level")
		staticDir   = flag.String("static-dir", "", "path to static directory, overrides the embedded pages")
		uploadDir   = flag.String("upload-dir", "data/uploads", "path to uploaded header images")
		sessionTTL  = flag.Duration("session-ttl", 24*time.Hour, "admin session lifetime")
	)
	flag.Parse()

	var logLevel slog.Level
	err := logLevel.UnmarshalText([]byte(*logLevelArg))
	jsonHandler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})
	logger := slog.New(jsonHandler)
	if err != nil {
		logger.Error("unable to parse log level", "level-input", *logLevelArg, "error", err)
		os.Exit(1)
	}

	slog.SetDefault(logger)
	logger.Info("start and listen", "address", *addr)
	logger.Info("otlp/gRPC", "address", *otlpAddr, "service", *serviceName)
	logger.Info("static-dir", "directory", *staticDir)

	if *otlpAddr != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		grpcOptions := []grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials()), grpc.WithBlock()}
		conn, err := grpc.DialContext(ctx, *otlpAddr, grpcOptions...)
		if err != nil {
			logger.Error("failed to create gRPC connection to collector", "error", err)
			os.Exit(1)
		}
		defer conn.Close()

		otelExporter, err := otlptracegrpc.New(ctx, otlptracegrpc.WithGRPCConn(conn))
		if err != nil {
			logger.Error("failed to create trace exporter", "error", err)
			os.Exit(1)
		}
		tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(otelExporter))
		otel.SetTracerProvider(tp)
	}

	var (
		weddingStore db.WeddingStore
		guestStore   db.GuestStore
		adminStore   db.AdminStore
	)

	u, err := url.Parse(*dbStr)
	if err != nil {
		logger.Error("unable to parse db connection string", "error", err)
		os.Exit(1)
	}

	switch u.Scheme {
	case "sqlite":
		path := u.Host + u.Path
		sqldb, err := sqlitedb.Open(path)
		if err != nil {
			logger.Error("could not open sqlite database", "path", path, "error", err)
			os.Exit(1)
		}
		defer sqldb.Close()

		weddingStore = sqlitedb.NewWeddingStore(sqldb)
		guestStore = sqlitedb.NewGuestStore(sqldb)
		adminStore = sqlitedb.NewAdminStore(sqldb)
	case "kvdb":
		path := u.Host + u.Path
		kv, err := bolt.Open(path, 0600, nil)
		if err != nil {
			logger.Error("could not open key-value database", "path", path, "error", err)
			os.Exit(1)
		}
		defer kv.Close()

		weddingStore, err = kvdb.NewWeddingStore(kv)
		if err != nil {
			logger.Error("could not initialize wedding bucket", "error", err)
			os.Exit(1)
		}
		guestStore, err = kvdb.NewGuestStore(kv)
		if err != nil {
			logger.Error("could not initialize guest bucket", "error", err)
			os.Exit(1)
		}
		adminStore, err = kvdb.NewAdminStore(kv)
		if err != nil {
			logger.Error("could not initialize admin bucket", "error", err)
			os.Exit(1)
		}
	default:
		logger.Error("Unknown storage backend", "type", u.Scheme)
		os.Exit(1)
	}

	if err := ensureDefaultAdmin(adminStore, logger); err != nil {
		logger.Error("could not ensure default admin", "error", err)
		os.Exit(1)
	}

	sessions := session.NewManager([]byte(os.Getenv("VOWLIST_SESSION_SECRET")), *sessionTTL)

	srv := &http.Server{
		Addr: *addr,
		Handler: server.NewServer(
			*serviceName,
			*staticDir,
			*uploadDir,
			weddingStore,
			guestStore,
			adminStore,
			sessions,
		),
	}

	if err := srv.ListenAndServe(); err != nil {
		logger.Error("error during listen and serve", "error", err)
		os.Exit(1)
	}
	logger.Info("shutdown")
}

// ensureDefaultAdmin seeds the initial admin account on first start.
// Credentials come from VOWLIST_ADMIN and VOWLIST_PASSWORD, the well
// known defaults are only meant for local development.
func ensureDefaultAdmin(store db.AdminStore, logger *slog.Logger) error {
	username := os.Getenv("VOWLIST_ADMIN")
	if username == "" {
		username = "admin"
	}
	password := os.Getenv("VOWLIST_PASSWORD")
	if password == "" {
		password = "admin123"
		logger.Warn("no VOWLIST_PASSWORD set, using the default admin password")
	}

	admin, err := model.NewAdminUser(username, password)
	if err != nil {
		return err
	}
	return store.EnsureAdmin(context.Background(), admin)
}
