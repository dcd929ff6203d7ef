package messaging

import "fmt"

// Role identifies which side of the simulated architecture a participant
// belongs to.
type Role uint8

const (
	RoleUnknown Role = iota
	RoleUser
	RoleAgent
	RoleAgentFactory
)

func (r Role) String() string {
	switch r {
	case RoleUser:
		return "USER"
	case RoleAgent:
		return "AGENT"
	case RoleAgentFactory:
		return "AGENT_FACTORY"
	default:
		return "UNKNOWN"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (r Role) MarshalText() ([]byte, error) {
	if r == RoleUnknown {
		return nil, fmt.Errorf("cannot marshal unknown role")
	}
	return []byte(r.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (r *Role) UnmarshalText(text []byte) error {
	parsed, err := ParseRole(string(text))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// ParseRole converts the wire representation of a role back into a Role.
func ParseRole(s string) (Role, error) {
	switch s {
	case "USER":
		return RoleUser, nil
	case "AGENT":
		return RoleAgent, nil
	case "AGENT_FACTORY":
		return RoleAgentFactory, nil
	default:
		return RoleUnknown, fmt.Errorf("unknown role: %q", s)
	}
}
