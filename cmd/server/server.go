package main

import (
	"time"

	"github.com/JaimeStill/marlin/internal/config"
	"github.com/JaimeStill/marlin/internal/infrastructure"
)

// Server owns the shared infrastructure, the API module and the HTTP
// listener for one marlin process.
type Server struct {
	infra   *infrastructure.Infrastructure
	modules *Modules
	http    *httpServer
	version string
}

func NewServer(cfg *config.Config) (*Server, error) {
	infra, err := infrastructure.New(cfg)
	if err != nil {
		return nil, err
	}

	modules, err := NewModules(infra, cfg)
	if err != nil {
		return nil, err
	}

	router := buildRouter(infra)
	modules.Mount(router)

	infra.Logger.Info(
		"marlin initialized",
		"addr", cfg.Server.Addr(),
		"env", cfg.Env(),
		"api_base_path", cfg.API.BasePath,
		"top_n", cfg.Identification.TopN,
	)

	return &Server{
		infra:   infra,
		modules: modules,
		http:    newHTTPServer(&cfg.Server, router, infra.Logger),
		version: cfg.Version,
	}, nil
}

// Start brings up storage and the listener. Readiness follows once every
// startup hook has finished.
func (s *Server) Start() error {
	s.infra.Logger.Info("marlin starting", "version", s.version)

	if err := s.infra.Start(); err != nil {
		return err
	}

	if err := s.http.Start(s.infra.Lifecycle); err != nil {
		return err
	}

	go func() {
		s.infra.Lifecycle.WaitForStartup()
		s.infra.Logger.Info("all subsystems ready", "checks", s.infra.Lifecycle.Status())
	}()

	return nil
}

func (s *Server) Shutdown(timeout time.Duration) error {
	s.infra.Logger.Info("initiating shutdown", "timeout", timeout)
	if err := s.infra.Lifecycle.Shutdown(timeout); err != nil {
		return err
	}
	s.infra.Logger.Info("marlin stopped")
	return nil
}
