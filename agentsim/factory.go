// Package agentsim holds the simulated application side of the broker: the
// agent factory that bootstraps agents and the runtime that answers launch
// and feedback messages. Both are wired in as channel listeners and reply
// through emitters minted from the same broker, so their replies surface in
// the mailbox like any other server-originated message.
package agentsim

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/casualjim/courier/broker"
	"github.com/casualjim/courier/messaging"
	"github.com/casualjim/courier/pkg/uuidx"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

const (
	StatusBootstrapped = "bootstrapped"
	StatusActive       = "active"

	// InstructionBootstrap requests a new agent from the factory.
	InstructionBootstrap = "bootstrap_agent"
	// InstructionLaunch hands a user turn to a bootstrapped agent.
	InstructionLaunch = "launch_agent"
	// InstructionBootstrapped tags the factory's reply to a bootstrap request.
	InstructionBootstrapped = "agent_bootstrapped"
	// InstructionReply tags the runtime's reply to a launch or feedback request.
	InstructionReply = "agent_reply"
)

// Agent is the factory's record of one bootstrapped agent.
type Agent struct {
	ID            string   `json:"agent_id"`
	Name          string   `json:"ai_name"`
	Role          string   `json:"ai_role"`
	Goals         []string `json:"ai_goals"`
	Status        string   `json:"status"`
	WorkspacePath string   `json:"workspace_path"`
	CreatedAt     int64    `json:"created_at"`
	UpdatedAt     int64    `json:"updated_at"`
}

// Interaction is one entry in an agent's conversation history.
type Interaction struct {
	CreatedAt int64          `json:"created_at"`
	Response  map[string]any `json:"response"`
}

type record struct {
	agent   Agent
	history []Interaction
}

// Factory bootstraps agents in response to user bootstrap messages and keeps
// the registry of everything it created, in creation order.
type Factory struct {
	workspaceRoot string
	emitter       *broker.Emitter

	mu     sync.Mutex
	agents *orderedmap.OrderedMap[string, *record]
}

// NewFactory creates a factory that places agent workspaces under
// workspaceRoot and replies through emitter.
func NewFactory(workspaceRoot string, emitter *broker.Emitter) *Factory {
	return &Factory{
		workspaceRoot: workspaceRoot,
		emitter:       emitter,
		agents:        orderedmap.New[string, *record](),
	}
}

// BootstrapAgent is the listener for user messages carrying the
// "bootstrap_agent" instruction. It allocates an agent id, resolves the
// workspace path, records the agent, and replies with the new identity.
func (f *Factory) BootstrapAgent(ctx context.Context, msg messaging.Message) error {
	name, ok := stringField(msg, "agent_name")
	if !ok || name == "" {
		return fmt.Errorf("bootstrap message is missing agent_name")
	}
	role, _ := stringField(msg, "agent_role")
	goals := stringSliceField(msg, "agent_goals")

	now := time.Now().UnixMilli()
	agent := Agent{
		ID:            uuidx.NewString(),
		Name:          name,
		Role:          role,
		Goals:         goals,
		Status:        StatusBootstrapped,
		WorkspacePath: filepath.Join(f.workspaceRoot, name),
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	f.mu.Lock()
	f.agents.Set(agent.ID, &record{agent: agent})
	f.mu.Unlock()

	_, err := f.emitter.Send(ctx, map[string]any{
		"agent_id":       agent.ID,
		"agent_name":     agent.Name,
		"workspace_path": agent.WorkspacePath,
		"status":         agent.Status,
	}, map[string]any{messaging.KeyInstruction: InstructionBootstrapped})
	return err
}

// Get returns a snapshot of one agent.
func (f *Factory) Get(id string) (Agent, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec, ok := f.agents.Get(id)
	if !ok {
		return Agent{}, false
	}
	return rec.agent, true
}

// Agents returns snapshots of every bootstrapped agent in creation order.
func (f *Factory) Agents() []Agent {
	f.mu.Lock()
	defer f.mu.Unlock()
	agents := make([]Agent, 0, f.agents.Len())
	for pair := f.agents.Oldest(); pair != nil; pair = pair.Next() {
		agents = append(agents, pair.Value.agent)
	}
	return agents
}

// History returns the interaction history for one agent, oldest first.
func (f *Factory) History(id string) ([]Interaction, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec, ok := f.agents.Get(id)
	if !ok {
		return nil, false
	}
	return append([]Interaction(nil), rec.history...), true
}

func (f *Factory) recordInteraction(id string, response map[string]any) (Agent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec, ok := f.agents.Get(id)
	if !ok {
		return Agent{}, fmt.Errorf("unknown agent %q", id)
	}
	now := time.Now().UnixMilli()
	rec.agent.Status = StatusActive
	rec.agent.UpdatedAt = now
	rec.history = append(rec.history, Interaction{CreatedAt: now, Response: response})
	return rec.agent, nil
}

func stringField(msg messaging.Message, key string) (string, bool) {
	v, ok := msg.Get(key)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// stringSliceField tolerates both []string and the []any that JSON decoding
// produces.
func stringSliceField(msg messaging.Message, key string) []string {
	v, ok := msg.Get(key)
	if !ok {
		return nil
	}
	switch vals := v.(type) {
	case []string:
		return append([]string(nil), vals...)
	case []any:
		out := make([]string, 0, len(vals))
		for _, item := range vals {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}
