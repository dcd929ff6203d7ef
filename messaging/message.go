package messaging

import (
	"fmt"
	"maps"
	"time"

	"github.com/casualjim/courier/pkg/uuidx"
	"github.com/go-openapi/strfmt"
	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// KeyInstruction is the conventional metadata key naming the operation a
// message requests.
const KeyInstruction = "instruction"

var messageJSON = []byte(`{"type":"message"}`)

// SenderIdentity is the (name, role) pair identifying a message's origin.
// Names are unique per logical participant; the broker enforces this when
// minting emitters.
type SenderIdentity struct {
	Name string `json:"name"`
	Role Role   `json:"role"`
}

func (s SenderIdentity) String() string {
	return fmt.Sprintf("%s(%s)", s.Name, s.Role)
}

// Metadata carries a message's provenance: the sender identity plus an
// open-ended map of additional keys defined by convention between emitters
// and listeners. It is immutable after construction.
type Metadata struct {
	sender     SenderIdentity
	additional map[string]any
}

// NewMetadata builds metadata for the given sender. The additional map is
// cloned, so later mutation by the caller has no effect.
func NewMetadata(sender SenderIdentity, additional map[string]any) Metadata {
	return Metadata{sender: sender, additional: maps.Clone(additional)}
}

// Sender returns the identity of the participant that published the message.
func (m Metadata) Sender() SenderIdentity { return m.sender }

// Get looks up a key in the additional metadata.
func (m Metadata) Get(key string) (any, bool) {
	v, ok := m.additional[key]
	return v, ok
}

// Instruction returns the instruction metadata value. The second result is
// false when the key is absent or not a string; a missing instruction is
// never an error.
func (m Metadata) Instruction() (string, bool) {
	v, ok := m.additional[KeyInstruction]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// Additional returns a copy of the open metadata map.
func (m Metadata) Additional() map[string]any {
	return maps.Clone(m.additional)
}

// Message is an immutable envelope created exactly once per send. The
// content map is cloned on construction and copied back out by Content, so
// every listener sees the same payload and none can alter it for the others.
type Message struct {
	id        uuid.UUID
	content   map[string]any
	metadata  Metadata
	timestamp strfmt.DateTime
}

// NewMessage builds a message carrying a clone of content.
func NewMessage(content map[string]any, metadata Metadata) Message {
	return Message{
		id:        uuidx.New(),
		content:   maps.Clone(content),
		metadata:  metadata,
		timestamp: strfmt.DateTime(time.Now().UTC()),
	}
}

// ID returns the message's unique, time-ordered identifier.
func (m Message) ID() uuid.UUID { return m.id }

// Content returns a copy of the payload map. The copy is shallow; by
// convention nested values are treated as read-only too.
func (m Message) Content() map[string]any { return maps.Clone(m.content) }

// Get looks up a single content key without copying the whole map.
func (m Message) Get(key string) (any, bool) {
	v, ok := m.content[key]
	return v, ok
}

// Metadata returns the message's provenance.
func (m Message) Metadata() Metadata { return m.metadata }

// Timestamp returns when the message was constructed.
func (m Message) Timestamp() strfmt.DateTime { return m.timestamp }

// MarshalJSON implements custom JSON marshaling for Message
func (m Message) MarshalJSON() ([]byte, error) {
	result := messageJSON

	var err error
	result, err = sjson.SetBytes(result, "id", m.id.String())
	if err != nil {
		return nil, err
	}

	content := m.content
	if content == nil {
		content = map[string]any{}
	}
	contentBytes, err := json.Marshal(content)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal content: %w", err)
	}
	result, err = sjson.SetRawBytes(result, "content", contentBytes)
	if err != nil {
		return nil, err
	}

	result, err = sjson.SetBytes(result, "metadata.sender.name", m.metadata.sender.Name)
	if err != nil {
		return nil, err
	}
	result, err = sjson.SetBytes(result, "metadata.sender.role", m.metadata.sender.Role.String())
	if err != nil {
		return nil, err
	}

	if len(m.metadata.additional) > 0 {
		additionalBytes, err := json.Marshal(m.metadata.additional)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal additional metadata: %w", err)
		}
		result, err = sjson.SetRawBytes(result, "metadata.additional", additionalBytes)
		if err != nil {
			return nil, err
		}
	}

	if !m.timestamp.IsZero() {
		result, err = sjson.SetBytes(result, "timestamp", m.timestamp.String())
		if err != nil {
			return nil, err
		}
	}

	return result, nil
}

// UnmarshalJSON implements custom JSON unmarshaling for Message
func (m *Message) UnmarshalJSON(data []byte) error {
	if !gjson.ValidBytes(data) {
		return fmt.Errorf("invalid json: %s", data)
	}

	msgType := gjson.GetBytes(data, "type")
	if !msgType.Exists() || msgType.String() != "message" {
		return fmt.Errorf("missing or invalid type, expected 'message'")
	}

	id := gjson.GetBytes(data, "id")
	if !id.Exists() {
		return fmt.Errorf("missing required field 'id'")
	}
	if err := m.id.UnmarshalText([]byte(id.String())); err != nil {
		return fmt.Errorf("invalid id: %w", err)
	}

	content := gjson.GetBytes(data, "content")
	if !content.Exists() {
		return fmt.Errorf("missing required field 'content'")
	}
	contentMap := make(map[string]any)
	if err := json.Unmarshal([]byte(content.Raw), &contentMap); err != nil {
		return fmt.Errorf("invalid content: %w", err)
	}
	m.content = contentMap

	senderName := gjson.GetBytes(data, "metadata.sender.name")
	if !senderName.Exists() {
		return fmt.Errorf("missing required field 'metadata.sender.name'")
	}
	senderRole := gjson.GetBytes(data, "metadata.sender.role")
	if !senderRole.Exists() {
		return fmt.Errorf("missing required field 'metadata.sender.role'")
	}
	role, err := ParseRole(senderRole.String())
	if err != nil {
		return fmt.Errorf("invalid sender role: %w", err)
	}
	sender := SenderIdentity{Name: senderName.String(), Role: role}

	var additional map[string]any
	if extra := gjson.GetBytes(data, "metadata.additional"); extra.Exists() {
		additional = make(map[string]any)
		if err := json.Unmarshal([]byte(extra.Raw), &additional); err != nil {
			return fmt.Errorf("invalid additional metadata: %w", err)
		}
	}
	m.metadata = Metadata{sender: sender, additional: additional}

	if timestamp := gjson.GetBytes(data, "timestamp"); timestamp.Exists() {
		if err := m.timestamp.UnmarshalText([]byte(timestamp.String())); err != nil {
			return fmt.Errorf("invalid timestamp: %w", err)
		}
	}

	return nil
}
