// Copyright (C) 2025 the vowlist maintainers
// See root-dir/LICENSE for more information

package server

import (
	"embed"
	"io/fs"
	"log/slog"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	sloggin "github.com/samber/slog-gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/trace"

	"github.com/vowlist/core/internal/db"
	"github.com/vowlist/core/internal/server/api"
	"github.com/vowlist/core/internal/server/session"
)

//go:embed all:static
var staticFS embed.FS

func NewServer(
	serviceName string,
	staticDir string,
	uploadDir string,
	wStore db.WeddingStore,
	gStore db.GuestStore,
	aStore db.AdminStore,
	sessions *session.Manager,
) *Server {
	s := &Server{
		logger:      slog.Default().WithGroup("http"),
		serviceName: serviceName,
		staticDir:   staticDir,
		wStore:      wStore,
		sessions:    sessions,
		handler:     api.NewHandler(wStore, gStore, aStore, sessions, uploadDir),
	}
	s.mux = s.buildRouter()
	return s
}

type Server struct {
	serviceName string
	staticDir   string
	logger      *slog.Logger
	wStore      db.WeddingStore
	sessions    *session.Manager
	handler     *api.Handler
	mux         *gin.Engine
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) buildRouter() *gin.Engine {
	if os.Getenv("GIN_MODE") == "" {
		gin.SetMode(gin.ReleaseMode)
	}
	mux := gin.New()

	mux.Use(
		sloggin.NewWithConfig(s.logger,
			sloggin.Config{
				DefaultLevel:     slog.LevelInfo,
				ClientErrorLevel: slog.LevelWarn,
				ServerErrorLevel: slog.LevelError,
			},
		),
		gin.Recovery(), otelgin.Middleware(s.serviceName), slogAddTraceAttributes,
	)

	var pages fs.FS
	var err error
	switch {
	case s.staticDir != "":
		pages = os.DirFS(s.staticDir)
	default:
		pages, err = fs.Sub(staticFS, "static")
		if err != nil {
			panic(err)
		}
	}
	mux.StaticFS("/static", http.FS(pages))

	mux.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	mux.GET("/", func(c *gin.Context) {
		c.Redirect(http.StatusFound, "/admin")
	})
	mux.GET("/admin", func(c *gin.Context) {
		if _, err := s.sessions.Verify(c.Request); err == nil {
			c.Redirect(http.StatusFound, "/admin/weddings")
			return
		}
		servePage(c, pages, "admin-login.html")
	})
	mux.GET("/admin/weddings", s.sessions.Required(), func(c *gin.Context) {
		servePage(c, pages, "admin-weddings.html")
	})
	mux.GET("/admin/wedding/:slug", s.sessions.Required(), s.weddingExists, func(c *gin.Context) {
		servePage(c, pages, "admin-wedding.html")
	})
	mux.GET("/rsvp/:slug", s.weddingExists, func(c *gin.Context) {
		servePage(c, pages, "rsvp.html")
	})
	mux.GET("/share/:slug", s.weddingExists, func(c *gin.Context) {
		servePage(c, pages, "share.html")
	})

	mux.GET("/api/wedding/:slug", s.handler.PublicWedding)
	mux.POST("/api/rsvp/:slug", s.handler.SubmitRSVP)
	mux.GET("/api/guests/:slug", s.handler.ListGuests)

	mux.POST("/api/admin/login", s.handler.Login)

	adminArea := mux.Group("/api/admin", s.sessions.Required())
	adminArea.POST("/logout", s.handler.Logout)
	adminArea.GET("/weddings", s.handler.ListWeddings)
	adminArea.POST("/weddings", s.handler.CreateWedding)
	adminArea.PUT("/weddings/:id", s.handler.UpdateWedding)
	adminArea.DELETE("/weddings/:id", s.handler.DeleteWedding)
	adminArea.GET("/wedding/:slug", s.handler.GetWedding)
	adminArea.GET("/wedding/:slug/guests", s.handler.ListGuests)
	adminArea.GET("/wedding/:slug/stats", s.handler.GuestStats)
	adminArea.GET("/wedding/:slug/export", s.handler.ExportGuests)
	adminArea.DELETE("/wedding/:slug/guests/:guestid", s.handler.DeleteGuest)

	mux.NoRoute(notFound)
	return mux
}

// weddingExists guards the public pages, an unknown slug yields a 404
// before any page is served.
func (s *Server) weddingExists(c *gin.Context) {
	if _, err := s.wStore.GetWeddingBySlug(c.Request.Context(), c.Param("slug")); err != nil {
		notFound(c)
		c.Abort()
		return
	}
	c.Next()
}

func servePage(c *gin.Context, pages fs.FS, name string) {
	data, err := fs.ReadFile(pages, name)
	if err != nil {
		notFound(c)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", data)
}

func notFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{"code": "PAGE_NOT_FOUND", "message": "Page not found"})
}

func slogAddTraceAttributes(c *gin.Context) {
	sloggin.AddCustomAttributes(c,
		slog.String("trace-id", trace.SpanFromContext(c.Request.Context()).SpanContext().TraceID().String()),
	)
	sloggin.AddCustomAttributes(c,
		slog.String("span-id", trace.SpanFromContext(c.Request.Context()).SpanContext().SpanID().String()),
	)
	c.Next()
}
