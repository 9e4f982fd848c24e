package server

import (
	"context"
	"embed"
	"errors"
	"html/template"
	"net/http"
	"time"

	"feastiq/internal/domain"
	"feastiq/internal/service/export"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

//go:embed templates/*.html
var templatesFS embed.FS

// Dispatcher - часть outbox, нужная обработчикам.
type Dispatcher interface {
	Channels() []string
	DeliverNow(ctx context.Context, reservationID uint, channel string) error
	Notify()
}

type Authenticator interface {
	Authenticate(ctx context.Context, username, password string) (string, error)
}

type Deps struct {
	Reservations domain.ReservationRepo
	Dispatcher   Dispatcher
	Auth         Authenticator
	Sessions     *SessionStore
	Logger       *zap.Logger
	// SyncMail - письмо отправляется до ответа на POST /reserve, ошибка релея дает 500.
	SyncMail bool
}

type Server struct {
	Deps
	engine *gin.Engine
}

func New(deps Deps) (*Server, error) {
	tmpl, err := template.New("").Funcs(template.FuncMap{
		"createdAt": export.FormatCreatedAt,
	}).ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, err
	}

	engine := gin.New()
	if err := engine.SetTrustedProxies(nil); err != nil {
		return nil, err
	}
	engine.SetHTMLTemplate(tmpl)
	engine.Use(Recovery(deps.Logger), RequestLogger(deps.Logger))

	s := &Server{Deps: deps, engine: engine}
	s.registerRoutes()
	return s, nil
}

func (s *Server) registerRoutes() {
	r := s.engine
	r.GET("/healthz", s.healthz)
	r.GET("/", s.home)
	r.POST("/reserve", s.reserve)

	admin := r.Group("/admin")
	{
		admin.GET("/login", s.loginPage)
		admin.POST("/login", s.login)
		admin.GET("/logout", s.logout)

		protected := admin.Group("", RequireAdmin(s.Sessions))
		protected.GET("/reservation", s.listReservations)
		protected.GET("/export", s.exportCSV)
		protected.POST("/delete/:id", s.deleteReservation)
	}
}

func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run обслуживает запросы до отмены ctx, затем дожидается завершения активных запросов.
func (s *Server) Run(ctx context.Context, addr string, shutdownTimeout time.Duration) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.Logger.Info("http server started", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.Logger.Info("shutting down http server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}
