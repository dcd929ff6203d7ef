package agentsim

import (
	"context"
	"testing"

	"github.com/casualjim/courier/broker"
	"github.com/casualjim/courier/mailbox"
	"github.com/casualjim/courier/messaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// harness wires a broker the way the server does: a mailbox capturing
// server-originated replies plus the factory and runtime listeners.
type harness struct {
	broker  *broker.Broker
	mailbox *mailbox.Mailbox
	factory *Factory
	user    *broker.Emitter
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	brk := broker.New()
	_, err := brk.CreateChannel("autogpt")
	require.NoError(t, err)

	mbox, err := mailbox.New()
	require.NoError(t, err)
	require.NoError(t, brk.RegisterListener("autogpt", mbox.Deliver, messaging.IsServerMessage()))

	factoryEmitter, err := brk.Emitter("autogpt", "autogpt-agent-factory", messaging.RoleAgentFactory)
	require.NoError(t, err)
	agentEmitter, err := brk.Emitter("autogpt", "autogpt-agent", messaging.RoleAgent)
	require.NoError(t, err)

	factory := NewFactory(t.TempDir(), factoryEmitter)
	runtime := NewRuntime(factory, agentEmitter)
	require.NoError(t, brk.RegisterListener("autogpt", factory.BootstrapAgent, messaging.IsUserInstruction("bootstrap_agent")))
	require.NoError(t, brk.RegisterListener("autogpt", runtime.LaunchAgent, messaging.IsUserInstruction("launch_agent")))

	user, err := brk.Emitter("autogpt", "autogpt-user", messaging.RoleUser)
	require.NoError(t, err)

	return &harness{broker: brk, mailbox: mbox, factory: factory, user: user}
}

func (h *harness) bootstrap(t *testing.T, name string) Agent {
	t.Helper()
	result, err := h.user.Send(context.Background(),
		map[string]any{"agent_name": name, "agent_role": "test role", "agent_goals": []string{"a goal"}},
		map[string]any{"instruction": "bootstrap_agent"},
	)
	require.NoError(t, err)
	require.True(t, result.Ok())

	agents := h.factory.Agents()
	require.NotEmpty(t, agents)
	return agents[len(agents)-1]
}

func TestFactoryBootstrap(t *testing.T) {
	ctx := context.Background()

	t.Run("records the agent and replies as the factory", func(t *testing.T) {
		h := newHarness(t)
		agent := h.bootstrap(t, "HelloBot")

		assert.NotEmpty(t, agent.ID)
		assert.Equal(t, "HelloBot", agent.Name)
		assert.Equal(t, "test role", agent.Role)
		assert.Equal(t, []string{"a goal"}, agent.Goals)
		assert.Equal(t, StatusBootstrapped, agent.Status)
		assert.Contains(t, agent.WorkspacePath, "HelloBot")

		replies := h.mailbox.Drain("autogpt-agent-factory")
		require.Len(t, replies, 1)
		reply := replies[0]
		assert.Equal(t, messaging.RoleAgentFactory, reply.Metadata().Sender().Role)
		instruction, _ := reply.Metadata().Instruction()
		assert.Equal(t, InstructionBootstrapped, instruction)
		id, _ := reply.Get("agent_id")
		assert.Equal(t, agent.ID, id)
	})

	t.Run("lists agents in creation order", func(t *testing.T) {
		h := newHarness(t)
		first := h.bootstrap(t, "First")
		second := h.bootstrap(t, "Second")

		agents := h.factory.Agents()
		require.Len(t, agents, 2)
		assert.Equal(t, first.ID, agents[0].ID)
		assert.Equal(t, second.ID, agents[1].ID)
	})

	t.Run("missing agent name is a listener failure", func(t *testing.T) {
		h := newHarness(t)
		result, err := h.user.Send(ctx, map[string]any{}, map[string]any{"instruction": "bootstrap_agent"})
		require.NoError(t, err) // transport still succeeds
		assert.Equal(t, 1, result.Failed)
		assert.Empty(t, h.factory.Agents())
	})

	t.Run("tolerates goals decoded from JSON", func(t *testing.T) {
		h := newHarness(t)
		_, err := h.user.Send(ctx,
			map[string]any{"agent_name": "JsonBot", "agent_goals": []any{"one", "two"}},
			map[string]any{"instruction": "bootstrap_agent"},
		)
		require.NoError(t, err)
		agents := h.factory.Agents()
		require.Len(t, agents, 1)
		assert.Equal(t, []string{"one", "two"}, agents[0].Goals)
	})
}

func TestRuntimeLaunch(t *testing.T) {
	ctx := context.Background()

	t.Run("activates the agent and replies as the agent", func(t *testing.T) {
		h := newHarness(t)
		agent := h.bootstrap(t, "HelloBot")
		h.mailbox.Drain("autogpt-agent-factory")

		result, err := h.user.Send(ctx,
			map[string]any{"agent_id": agent.ID, "user_input": "write the file"},
			map[string]any{"instruction": "launch_agent"},
		)
		require.NoError(t, err)
		require.True(t, result.Ok())

		updated, ok := h.factory.Get(agent.ID)
		require.True(t, ok)
		assert.Equal(t, StatusActive, updated.Status)

		history, ok := h.factory.History(agent.ID)
		require.True(t, ok)
		require.Len(t, history, 1)
		assert.Equal(t, "Acknowledged: write the file", history[0].Response["result"])

		reply, ok := h.mailbox.Pop("autogpt-agent")
		require.True(t, ok)
		assert.Equal(t, messaging.RoleAgent, reply.Metadata().Sender().Role)
		instruction, _ := reply.Metadata().Instruction()
		assert.Equal(t, InstructionReply, instruction)
	})

	t.Run("unknown agent id fails without disturbing dispatch", func(t *testing.T) {
		h := newHarness(t)
		result, err := h.user.Send(ctx,
			map[string]any{"agent_id": "nope"},
			map[string]any{"instruction": "launch_agent"},
		)
		require.NoError(t, err)
		assert.Equal(t, 1, result.Failed)
		require.Len(t, result.Failures, 1)
		assert.ErrorContains(t, result.Failures[0], "unknown agent")
	})
}
