// Package httpapi exposes the identity workflow over HTTP using fiber.
package httpapi

import (
	"context"
	"net"

	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/dmitrijs2005/gophauth/internal/server/auth"
	"github.com/dmitrijs2005/gophauth/internal/server/services"
	"github.com/gofiber/fiber/v2"
)

// IdentityService is the workflow the handlers drive.
type IdentityService interface {
	Register(ctx context.Context, in services.RegisterInput) (string, error)
	SignIn(ctx context.Context, emailAddress, password string) (string, error)
	Activate(ctx context.Context, emailAddress, tokenID string) (string, error)
	ForgetPassword(ctx context.Context, emailAddress string) (string, error)
	Recover(ctx context.Context, in services.RecoverInput) (string, error)
}

type HTTPServer struct {
	address  string
	identity IdentityService
	tokens   *auth.TokenIssuer
	logger   logging.Logger
	app      *fiber.App
}

func NewHTTPServer(a string, l logging.Logger, is IdentityService, tokens *auth.TokenIssuer) *HTTPServer {
	s := &HTTPServer{
		address:  a,
		identity: is,
		tokens:   tokens,
		logger:   l.With("module", "http_server"),
	}

	s.app = fiber.New(fiber.Config{
		AppName:               "gophauth",
		DisableStartupMessage: true,
		ErrorHandler:          s.errorHandler,
	})
	s.routes()

	return s
}

func (s *HTTPServer) routes() {
	s.app.Get("/healthz", s.Health)

	a := s.app.Group("/auth")
	a.Post("/register", s.Register)
	a.Post("/sign-in", s.SignIn)
	a.Post("/activate", s.Activate)
	a.Post("/forget-password", s.ForgetPassword)
	a.Post("/recover", s.Recover)

	s.app.Get("/users/me", s.bearerAuth, s.Me)
}

// Run serves until ctx is cancelled, then shuts the server down gracefully.
func (s *HTTPServer) Run(ctx context.Context) error {

	// announces address
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		if err := s.app.Shutdown(); err != nil {
			s.logger.Error(ctx, "HTTP server shutdown", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", listen.Addr().String())

	// starts accepting incoming connections
	if err := s.app.Listener(listen); err != nil {
		return err
	}

	return nil
}
