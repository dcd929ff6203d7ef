// Package broker implements the in-process pub/sub message broker that
// routes messages between the named roles of the simulated agent
// architecture: the user, the agent, and the agent factory.
//
// Design decisions:
//   - Explicit lifecycle: a Broker is constructed with New, wired during a
//     single-threaded setup phase, and discarded at process exit. There is
//     no package-level shared state.
//   - Deterministic dispatch: Publish evaluates filters and invokes matching
//     listeners strictly in registration order, awaiting each before moving
//     to the next. One slow listener stalls only the publish call that
//     triggered it.
//   - Partial-failure isolation: a listener error (or panic) is recorded in
//     the DispatchResult and dispatch continues. Transport success is
//     independent of handling success.
//   - Setup errors propagate, dispatch errors are data: duplicate or unknown
//     channel names fail the setup call immediately; listener failures are
//     never thrown past Publish.
//
// Structure:
//   - Broker: owns the channel registry and mints emitters
//     └── Channel: ordered listener registrations plus the dispatch loop
//     └── Emitter: a (channel, sender identity) binding with a Send operation
//
// Example usage:
//
//	brk := broker.New()
//	if _, err := brk.CreateChannel("autogpt"); err != nil {
//	    return err
//	}
//	err := brk.RegisterListener("autogpt", mbox.Deliver, messaging.IsServerMessage())
//	if err != nil {
//	    return err
//	}
//
//	emitter, err := brk.Emitter("autogpt", "autogpt-user", messaging.RoleUser)
//	if err != nil {
//	    return err
//	}
//	result, err := emitter.Send(ctx,
//	    map[string]any{"agent_name": "HelloBot"},
//	    map[string]any{"instruction": "bootstrap_agent"},
//	)
//
// Cross-process delivery, message persistence, and retries of failed
// listener invocations are out of scope: the broker simulates a distributed
// architecture inside a single process.
package broker
