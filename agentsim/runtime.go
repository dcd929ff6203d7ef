package agentsim

import (
	"context"
	"fmt"

	"github.com/casualjim/courier/broker"
	"github.com/casualjim/courier/messaging"
)

// Runtime answers user launch and feedback messages for agents the factory
// already bootstrapped. The agent's thinking is simulated: every launch
// produces a canned assistant turn, recorded in the agent's history and
// sent back through the runtime's emitter.
type Runtime struct {
	registry *Factory
	emitter  *broker.Emitter
}

// NewRuntime creates a runtime that resolves agents through factory and
// replies through emitter.
func NewRuntime(factory *Factory, emitter *broker.Emitter) *Runtime {
	return &Runtime{registry: factory, emitter: emitter}
}

// LaunchAgent is the listener for user messages carrying the "launch_agent"
// instruction. Unknown agent ids are reported as listener failures and do
// not disturb dispatch to other listeners.
func (r *Runtime) LaunchAgent(ctx context.Context, msg messaging.Message) error {
	id, ok := stringField(msg, "agent_id")
	if !ok || id == "" {
		return fmt.Errorf("launch message is missing agent_id")
	}
	userInput, _ := stringField(msg, "user_input")

	reply := assistantReply(id, userInput)
	if _, err := r.registry.recordInteraction(id, reply); err != nil {
		return err
	}

	_, err := r.emitter.Send(ctx, reply, map[string]any{messaging.KeyInstruction: InstructionReply})
	return err
}

func assistantReply(agentID, userInput string) map[string]any {
	result := "Command write_to_file returned: File written to successfully."
	if userInput != "" {
		result = fmt.Sprintf("Acknowledged: %s", userInput)
	}
	return map[string]any{
		"agent_id": agentID,
		"result":   result,
		"assistant": map[string]any{
			"thoughts": map[string]any{
				"text":      "My goal has been achieved, so I will use the 'task_complete' command to shut down.",
				"reasoning": "Since my goal has been achieved, there is no need to perform any further actions.",
				"plan":      "- Use 'task_complete' command to shut down",
				"criticism": "I did not consider any alternative plans or potential issues that may arise.",
				"speak":     "I have completed my task and will now shut down.",
			},
			"command": map[string]any{
				"name": "task_complete",
				"args": map[string]any{"reason": "Message has been written to file."},
			},
		},
	}
}
