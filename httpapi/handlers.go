package httpapi

import (
	"net/http"

	"github.com/casualjim/courier/agentsim"
	"github.com/casualjim/courier/messaging"
	"github.com/casualjim/courier/pkg/jsonx"
	"github.com/casualjim/courier/pkg/slogx"
	json "github.com/goccy/go-json"
)

// headerAPIKey matches the header the original application server required
// on mutating routes.
const headerAPIKey = "openai_api_key"

type errorResponse struct {
	Detail string `json:"detail"`
}

type createAgentRequest struct {
	AIName  string   `json:"ai_name"`
	AIRole  string   `json:"ai_role"`
	AIGoals []string `json:"ai_goals"`
}

type createAgentResponse struct {
	AgentID string `json:"agent_id"`
}

type interactRequest struct {
	UserInput string `json:"user_input"`
}

// bootstrapPayload and launchPayload are the publish contents for the two
// mutating routes, keyed the way the factory and runtime listeners read them.
type bootstrapPayload struct {
	AgentName  string   `json:"agent_name"`
	AgentRole  string   `json:"agent_role"`
	AgentGoals []string `json:"agent_goals"`
}

type launchPayload struct {
	AgentID   string `json:"agent_id"`
	UserInput string `json:"user_input"`
}

type interactResponse struct {
	Result    any `json:"result"`
	Assistant any `json:"assistant"`
}

type listAgentsResponse struct {
	Agents []agentsim.Agent `json:"agents"`
}

type historyResponse struct {
	History []agentsim.Interaction `json:"history"`
}

func (s *Server) requireAPIKey(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get(headerAPIKey) == "" {
			s.writeJSON(w, http.StatusUnauthorized, errorResponse{Detail: "missing openai_api_key header key"})
			return
		}
		next(w, r)
	}
}

func (s *Server) createAgent(w http.ResponseWriter, r *http.Request) {
	var body createAgentRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Detail: "invalid request body"})
		return
	}
	if body.AIName == "" {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Detail: "ai_name is required"})
		return
	}

	content, err := jsonx.ToDynamic(bootstrapPayload{
		AgentName:  body.AIName,
		AgentRole:  body.AIRole,
		AgentGoals: body.AIGoals,
	})
	if err != nil {
		s.log.Error("encoding bootstrap payload failed", slogx.Error(err))
		s.writeJSON(w, http.StatusInternalServerError, errorResponse{Detail: "failed to publish bootstrap message"})
		return
	}

	result, err := s.user.Send(r.Context(), content,
		map[string]any{messaging.KeyInstruction: agentsim.InstructionBootstrap},
	)
	if err != nil {
		s.log.Error("bootstrap publish failed", slogx.Error(err))
		s.writeJSON(w, http.StatusInternalServerError, errorResponse{Detail: "failed to publish bootstrap message"})
		return
	}
	if !result.Ok() {
		s.log.Warn("bootstrap partially failed", "failed", result.Failed)
	}

	// Collate the factory's replies; we are in-process, so they are already
	// in the mailbox by the time Send returns. The mailbox is shared across
	// requests, so callers are expected to issue one request at a time.
	replies := s.mailbox.Drain(s.cfg.FactorySender)
	if len(replies) == 0 {
		s.writeJSON(w, http.StatusInternalServerError, errorResponse{Detail: "agent factory did not reply"})
		return
	}
	last := replies[len(replies)-1]
	agentID, _ := last.Get("agent_id")
	id, ok := agentID.(string)
	if !ok {
		s.writeJSON(w, http.StatusInternalServerError, errorResponse{Detail: "agent factory reply is malformed"})
		return
	}
	s.writeJSON(w, http.StatusOK, createAgentResponse{AgentID: id})
}

func (s *Server) interact(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if _, ok := s.factory.Get(id); !ok {
		s.writeJSON(w, http.StatusNotFound, errorResponse{Detail: "unknown agent"})
		return
	}

	var body interactRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Detail: "invalid request body"})
		return
	}

	content, err := jsonx.ToDynamic(launchPayload{AgentID: id, UserInput: body.UserInput})
	if err != nil {
		s.log.Error("encoding launch payload failed", slogx.Error(err))
		s.writeJSON(w, http.StatusInternalServerError, errorResponse{Detail: "failed to publish launch message"})
		return
	}

	_, err = s.user.Send(r.Context(), content,
		map[string]any{messaging.KeyInstruction: agentsim.InstructionLaunch},
	)
	if err != nil {
		s.log.Error("launch publish failed", slogx.Error(err))
		s.writeJSON(w, http.StatusInternalServerError, errorResponse{Detail: "failed to publish launch message"})
		return
	}

	// Same single-client assumption as createAgent: the agent's mailbox is
	// shared, so a concurrent request could take this reply instead.
	reply, ok := s.mailbox.Pop(s.cfg.AgentSender)
	if !ok {
		s.writeJSON(w, http.StatusInternalServerError, errorResponse{Detail: "agent did not reply"})
		return
	}
	result, _ := reply.Get("result")
	assistant, _ := reply.Get("assistant")
	s.writeJSON(w, http.StatusOK, interactResponse{Result: result, Assistant: assistant})
}

func (s *Server) listAgents(w http.ResponseWriter, _ *http.Request) {
	agents := s.factory.Agents()
	if agents == nil {
		agents = []agentsim.Agent{}
	}
	s.writeJSON(w, http.StatusOK, listAgentsResponse{Agents: agents})
}

func (s *Server) history(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	history, ok := s.factory.History(id)
	if !ok {
		s.writeJSON(w, http.StatusNotFound, errorResponse{Detail: "unknown agent"})
		return
	}
	if history == nil {
		history = []agentsim.Interaction{}
	}
	s.writeJSON(w, http.StatusOK, historyResponse{History: history})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Error("encoding response failed", slogx.Error(err))
	}
}
