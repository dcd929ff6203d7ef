package messaging

// Predicate is a pure boolean function over a message, used to decide whether
// a listener receives it. Predicates must be total: they never fail for a
// well-formed message.
type Predicate func(Message) bool

// IsRole matches messages whose sender carries the given role.
func IsRole(role Role) Predicate {
	return func(msg Message) bool {
		return msg.Metadata().Sender().Role == role
	}
}

// HasInstruction matches messages whose instruction metadata equals name.
// A missing or non-string instruction means the condition is not met.
func HasInstruction(name string) Predicate {
	return func(msg Message) bool {
		instruction, ok := msg.Metadata().Instruction()
		return ok && instruction == name
	}
}

// And combines predicates with short-circuit logical conjunction.
func And(predicates ...Predicate) Predicate {
	return func(msg Message) bool {
		for _, p := range predicates {
			if !p(msg) {
				return false
			}
		}
		return true
	}
}

// Or combines predicates with short-circuit logical disjunction.
func Or(predicates ...Predicate) Predicate {
	return func(msg Message) bool {
		for _, p := range predicates {
			if p(msg) {
				return true
			}
		}
		return false
	}
}

// Not inverts a predicate.
func Not(p Predicate) Predicate {
	return func(msg Message) bool {
		return !p(msg)
	}
}

// IsUserInstruction matches user messages carrying the named instruction.
func IsUserInstruction(name string) Predicate {
	return And(IsRole(RoleUser), HasInstruction(name))
}

// IsServerMessage matches messages originating from the server side of the
// simulation: the agent or the agent factory.
func IsServerMessage() Predicate {
	return Or(IsRole(RoleAgent), IsRole(RoleAgentFactory))
}
