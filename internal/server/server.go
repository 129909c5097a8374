package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/vitormoschetta/go-grammar/internal/config"
	"github.com/vitormoschetta/go-grammar/internal/engine"
	"github.com/vitormoschetta/go-grammar/internal/mcpserver"
	"github.com/vitormoschetta/go-grammar/internal/service"
)

// Version é informada pelo endpoint de info e pelo servidor MCP
const Version = "1.0.0"

// Corrector corrige uma frase
type Corrector interface {
	Correct(ctx context.Context, text string) (string, error)
}

// Server representa o servidor HTTP com todas as dependências
type Server struct {
	Corrector Corrector
	Engine    *engine.LazyEngine
	MCP       *mcp.Server
	Config    *config.Config
	Logger    *zap.Logger
	Router    chi.Router
}

// Routes são os handlers registrados pelo SetupRouter
type Routes struct {
	Index       http.HandlerFunc
	CorrectForm http.HandlerFunc
	Health      http.HandlerFunc
	Info        http.HandlerFunc
	Correct     http.HandlerFunc
}

// NewServer cria uma nova instância do servidor. O engine é carregado no
// primeiro uso.
func NewServer(cfg *config.Config, logger *zap.Logger) *Server {
	lazy := engine.Lazy(func() (engine.Engine, error) {
		return engine.New(context.Background(), cfg.Engine)
	})
	corrector := service.NewCorrectionService(lazy)

	return &Server{
		Corrector: corrector,
		Engine:    lazy,
		MCP:       mcpserver.New(corrector, Version),
		Config:    cfg,
		Logger:    logger,
	}
}

// SetupRouter configura as rotas e middlewares do Chi
func (s *Server) SetupRouter(routes Routes) {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger(s.Logger))
	r.Use(middleware.Recoverer)

	r.Get("/health", routes.Health)

	// O transport MCP mantém streams abertos, por isso fica fora do timeout
	// das requisições
	if s.MCP != nil {
		r.Handle("/mcp", mcpserver.Handler(s.MCP))
	}

	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(s.Config.Server.GetRequestTimeout()))

		r.Get("/", routes.Index)
		r.Post("/", routes.CorrectForm)

		r.Route("/api", func(r chi.Router) {
			r.Use(cors.Handler(cors.Options{
				AllowedOrigins: s.Config.Server.AllowedOrigins,
				AllowedMethods: []string{"GET", "POST", "OPTIONS"},
				AllowedHeaders: []string{"Origin", "Content-Type"},
			}))
			r.Get("/", routes.Info)
			r.Post("/correct", routes.Correct)
		})
	})

	s.Router = r
}

// Start inicia o servidor HTTP com graceful shutdown quando ctx termina
func (s *Server) Start(ctx context.Context) error {
	cfg := s.Config.Server
	httpServer := &http.Server{
		Addr:         cfg.Addr,
		Handler:      s.Router,
		ReadTimeout:  cfg.GetReadTimeout(),
		WriteTimeout: cfg.GetWriteTimeout(),
		IdleTimeout:  cfg.GetIdleTimeout(),
	}

	// Carregar o modelo em background para a página responder enquanto
	// ele aquece
	if s.Engine != nil {
		go s.warmup()
	}

	errCh := make(chan error, 1)
	go func() {
		s.Logger.Info("http server started",
			zap.String("addr", cfg.Addr),
			zap.String("provider", s.Config.Engine.Provider),
		)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	s.Logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.GetShutdownTimeout())
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return err
	}
	s.Logger.Info("server stopped gracefully")
	return nil
}

func (s *Server) warmup() {
	start := time.Now()
	if _, err := s.Engine.Get(); err != nil {
		s.Logger.Error("failed to load correction engine", zap.Error(err))
		return
	}
	s.Logger.Info("correction engine loaded",
		zap.String("provider", s.Config.Engine.Provider),
		zap.Duration("elapsed", time.Since(start)),
	)
}
