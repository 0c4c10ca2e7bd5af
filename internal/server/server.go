// Package server exposes the assessment flow, survey builder and account
// endpoints over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/nashtech/odmat/internal/assessment"
	"github.com/nashtech/odmat/internal/auth"
	"github.com/nashtech/odmat/internal/metrics"
	"github.com/nashtech/odmat/internal/questions"
	"github.com/nashtech/odmat/internal/store"
	"github.com/nashtech/odmat/internal/survey"
)

// Deps are the services the handlers run on.
type Deps struct {
	Bank        *questions.Bank
	Assessments store.AssessmentRepo
	Events      store.EventRepo
	Recommender assessment.Recommender
	Auth        *auth.Service
	Surveys     *survey.Service
	Logger      *zap.Logger

	// Now stamps generated reports. Defaults to time.Now.
	Now func() time.Time
}

// Options tune the HTTP listener.
type Options struct {
	Addr            string
	ShutdownTimeout time.Duration
	Metrics         bool
}

// Server is the configured echo instance.
type Server struct {
	e    *echo.Echo
	opts Options
	log  *zap.Logger
}

// New registers every route on a fresh echo instance.
func New(d Deps, opts Options) *Server {
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	if opts.ShutdownTimeout <= 0 {
		opts.ShutdownTimeout = 10 * time.Second
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = errorHandler(d.Logger)
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{AllowOrigins: []string{"*"}, MaxAge: 3600}))
	e.Use(requestLog(d.Logger))
	e.Use(observeDuration)

	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	if opts.Metrics {
		e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{})))
	}

	api := e.Group("/api")

	cat := catalogue{bank: d.Bank}
	api.GET("/themes", cat.themes)
	api.GET("/questions", cat.list)
	api.GET("/questions/:id", cat.get)

	ah := assessments{deps: d, locks: newKeyedLocks()}
	as := api.Group("/assessments")
	as.POST("", ah.start)
	as.GET("/:id", ah.get)
	as.GET("/:id/progress", ah.progress)
	as.PUT("/:id/answers/:qid", ah.answer)
	as.PUT("/:id/step", ah.step)
	as.POST("/:id/complete", ah.complete)
	as.GET("/:id/results", ah.results)
	as.GET("/:id/report.xlsx", ah.report)
	as.GET("/:id/report.pdf", ah.report)

	if d.Auth != nil {
		acc := accounts{svc: d.Auth}
		api.POST("/auth/signup", acc.signup)
		api.POST("/auth/signin", acc.signin)
		api.POST("/auth/verify", acc.verify)

		if d.Surveys != nil {
			sh := surveys{svc: d.Surveys}
			sv := api.Group("/surveys", requireToken(d.Auth))
			sv.POST("", sh.create)
			sv.GET("", sh.list)
			sv.GET("/:id", sh.get)
			sv.PUT("/:id", sh.update)
			sv.DELETE("/:id", sh.delete)
			sv.POST("/:id/elements", sh.addElement)
			sv.PATCH("/:id/elements/:eid", sh.updateElement)
			sv.PUT("/:id/elements/:eid/position", sh.moveElement)
			sv.DELETE("/:id/elements/:eid", sh.removeElement)
			sv.POST("/:id/elements/:eid/choices", sh.addChoice)
			sv.DELETE("/:id/elements/:eid/choices/:index", sh.removeChoice)
		}
	}

	return &Server{e: e, opts: opts, log: d.Logger}
}

// Handler returns the root handler for tests and embedding.
func (s *Server) Handler() http.Handler { return s.e }

// Run serves until ctx is canceled and then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.opts.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.opts.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{Handler: s.e, ReadHeaderTimeout: 10 * time.Second}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.log.Info("http server listening", zap.String("addr", ln.Addr().String()))
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.opts.ShutdownTimeout)
		defer cancel()
		s.log.Info("http server shutting down", zap.NamedError("cause", context.Cause(gctx)))
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
