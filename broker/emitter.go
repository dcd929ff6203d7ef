package broker

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/casualjim/courier/messaging"
	"github.com/casualjim/courier/pkg/jsonx"
	"github.com/casualjim/courier/pkg/slogx"
	"github.com/fogfish/opts"
)

// EmitterOptions configures content and metadata an emitter stamps onto
// every message it sends.
type EmitterOptions struct {
	ExtraContent  map[string]any
	ExtraMetadata map[string]any
}

var (
	// WithExtraContent sets content fields merged into every send. Emitter
	// fields win over caller fields when keys collide (last-write-wins).
	WithExtraContent = opts.ForName[EmitterOptions, map[string]any]("ExtraContent")
	// WithExtraMetadata sets metadata fields merged into every send, with the
	// same last-write-wins precedence as WithExtraContent.
	WithExtraMetadata = opts.ForName[EmitterOptions, map[string]any]("ExtraMetadata")
)

// Emitter is a (channel, sender identity) binding. It constructs messages
// and publishes them on its channel; the identity is fixed when the emitter
// is minted.
type Emitter struct {
	channel       *Channel
	sender        messaging.SenderIdentity
	extraContent  map[string]any
	extraMetadata map[string]any
}

// Sender returns the identity stamped on every message this emitter sends.
func (e *Emitter) Sender() messaging.SenderIdentity { return e.sender }

// Send merges content and metadata with the emitter's bound extras (the
// extras take precedence on key collision), validates the envelope, builds
// an immutable message, and publishes it. A nil error means the channel
// accepted the message for dispatch; per-listener outcomes are reported in
// the DispatchResult and never fail the send.
func (e *Emitter) Send(ctx context.Context, content, metadata map[string]any) (DispatchResult, error) {
	mergedContent := jsonx.Merge(content, e.extraContent)
	mergedMetadata := jsonx.Merge(metadata, e.extraMetadata)

	if err := validateEnvelope(mergedMetadata); err != nil {
		return DispatchResult{}, err
	}

	msg := messaging.NewMessage(mergedContent, messaging.NewMetadata(e.sender, mergedMetadata))
	slog.DebugContext(ctx, "publishing message",
		slog.String("channel", e.channel.Name()),
		slogx.Stringer("sender", e.sender),
		slogx.Stringer("message_id", msg.ID()),
	)
	return e.channel.Publish(ctx, msg), nil
}

// validateEnvelope catches malformed instructions at the emitter boundary,
// before dispatch. The instruction key is optional, but when present it must
// name an operation.
func validateEnvelope(metadata map[string]any) error {
	v, ok := metadata[messaging.KeyInstruction]
	if !ok {
		return nil
	}
	s, ok := v.(string)
	if !ok {
		return fmt.Errorf("metadata %q must be a string, got %T", messaging.KeyInstruction, v)
	}
	if s == "" {
		return fmt.Errorf("metadata %q must not be empty", messaging.KeyInstruction)
	}
	return nil
}
