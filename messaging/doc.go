// Package messaging defines the value types that flow through the broker:
// messages, their metadata, the identity of the participant that sent them,
// and the filter predicates used to gate listener delivery.
//
// Design decisions:
//   - Immutability: a Message is built exactly once per send. The constructor
//     clones the caller's maps and the accessors hand out copies, so no
//     listener can mutate shared state through a message it received.
//   - Total predicates: filters never fail for a well-formed message. A
//     missing metadata key means "condition not met", not an error.
//   - Logical combinators: And and Or are genuine short-circuit boolean
//     operators over predicates, composed with explicit parentheses at the
//     call site.
//   - Open payloads: content and additional metadata are string-keyed maps
//     whose schema is a convention between specific emitters and listeners.
//     The only key the package itself knows about is "instruction".
//
// Example:
//
//	sender := messaging.SenderIdentity{Name: "autogpt-user", Role: messaging.RoleUser}
//	msg := messaging.NewMessage(
//		map[string]any{"agent_name": "HelloBot"},
//		messaging.NewMetadata(sender, map[string]any{"instruction": "bootstrap_agent"}),
//	)
//
//	bootstrap := messaging.IsUserInstruction("bootstrap_agent")
//	bootstrap(msg) // true
package messaging
