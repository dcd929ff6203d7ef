// Package httpapi exposes the broker over HTTP. The handlers translate
// request bodies into published messages and read replies back out of the
// mailbox, since dispatch is synchronous in-process while the HTTP
// request/response cycle is not coupled to it.
package httpapi

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/casualjim/courier/agentsim"
	"github.com/casualjim/courier/broker"
	"github.com/casualjim/courier/config"
	"github.com/casualjim/courier/mailbox"
	"github.com/casualjim/courier/messaging"
	"github.com/casualjim/courier/pkg/slogx"
)

// Server wires the broker, mailbox, and agent simulation behind the HTTP
// routes of the original application server.
type Server struct {
	cfg     *config.Config
	log     *slog.Logger
	broker  *broker.Broker
	user    *broker.Emitter
	mailbox *mailbox.Mailbox
	factory *agentsim.Factory
}

// New builds the full setup-phase wiring: one channel, the mailbox listener
// for server-originated messages, the factory and runtime listeners for user
// instructions, and the user emitter the handlers publish through.
func New(cfg *config.Config, log *slog.Logger) (*Server, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}
	if log == nil {
		log = slog.Default()
	}

	brk := broker.New()
	if _, err := brk.CreateChannel(cfg.Channel); err != nil {
		return nil, err
	}

	mbox, err := mailbox.New(mailbox.WithCapacity(cfg.MailboxCapacity))
	if err != nil {
		return nil, err
	}
	if err := brk.RegisterListener(cfg.Channel, mbox.Deliver, messaging.IsServerMessage()); err != nil {
		return nil, err
	}

	factoryEmitter, err := brk.Emitter(cfg.Channel, cfg.FactorySender, messaging.RoleAgentFactory)
	if err != nil {
		return nil, err
	}
	agentEmitter, err := brk.Emitter(cfg.Channel, cfg.AgentSender, messaging.RoleAgent)
	if err != nil {
		return nil, err
	}

	factory := agentsim.NewFactory(cfg.WorkspaceRoot, factoryEmitter)
	runtime := agentsim.NewRuntime(factory, agentEmitter)
	if err := brk.RegisterListener(cfg.Channel, factory.BootstrapAgent, messaging.IsUserInstruction(agentsim.InstructionBootstrap)); err != nil {
		return nil, err
	}
	if err := brk.RegisterListener(cfg.Channel, runtime.LaunchAgent, messaging.IsUserInstruction(agentsim.InstructionLaunch)); err != nil {
		return nil, err
	}

	user, err := brk.Emitter(cfg.Channel, cfg.UserSender, messaging.RoleUser)
	if err != nil {
		return nil, err
	}

	return &Server{
		cfg:     cfg,
		log:     log.With("component", "httpapi.server"),
		broker:  brk,
		user:    user,
		mailbox: mbox,
		factory: factory,
	}, nil
}

// Broker exposes the underlying broker, mainly for additional listener
// registration before traffic starts.
func (s *Server) Broker() *broker.Broker { return s.broker }

// Handler returns the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/agents", s.requireAPIKey(s.createAgent))
	mux.HandleFunc("GET /api/v1/agents", s.listAgents)
	mux.HandleFunc("POST /api/v1/agents/{id}", s.requireAPIKey(s.interact))
	mux.HandleFunc("GET /api/v1/agents/{id}", s.history)
	return mux
}

// Run serves until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.log.Info("listening", "addr", s.cfg.Addr, "channel", s.cfg.Channel)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.log.Error("shutdown failed", slogx.Error(err))
			return err
		}
		return nil
	}
}
