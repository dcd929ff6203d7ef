package broker

import "fmt"

// DuplicateChannelError reports an attempt to create a channel whose name is
// already taken. The existing channel is unaffected.
type DuplicateChannelError struct {
	Channel string
}

func (e *DuplicateChannelError) Error() string {
	return fmt.Sprintf("channel %q already exists", e.Channel)
}

// UnknownChannelError reports an operation against a channel that was never
// created on this broker.
type UnknownChannelError struct {
	Channel string
}

func (e *UnknownChannelError) Error() string {
	return fmt.Sprintf("unknown channel %q", e.Channel)
}

// DuplicateSenderError reports an attempt to mint an emitter for a sender
// name that is already bound. Sender names key downstream mailbox lookups,
// so two emitters sharing one would conflate their traffic.
type DuplicateSenderError struct {
	Sender string
}

func (e *DuplicateSenderError) Error() string {
	return fmt.Sprintf("sender %q already has an emitter", e.Sender)
}

// ListenerInvocationError records a single listener failure during dispatch.
// It is reported once in the DispatchResult and never re-attempted.
type ListenerInvocationError struct {
	Channel  string
	Position int
	Err      error
}

func (e *ListenerInvocationError) Error() string {
	return fmt.Sprintf("listener %d on channel %q failed: %v", e.Position, e.Channel, e.Err)
}

func (e *ListenerInvocationError) Unwrap() error {
	return e.Err
}
