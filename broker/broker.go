package broker

import (
	"github.com/alphadose/haxmap"
	"github.com/casualjim/courier/messaging"
	"github.com/fogfish/opts"
)

// Broker owns the set of channels and mints emitters bound to them. It is
// created once at process start and torn down at process exit; channel and
// listener registration is expected to happen during a single-threaded setup
// phase before message traffic begins.
type Broker struct {
	channels *haxmap.Map[string, *Channel]
	senders  *haxmap.Map[string, *Emitter]
}

// New creates an empty broker.
func New() *Broker {
	return &Broker{
		channels: haxmap.New[string, *Channel](),
		senders:  haxmap.New[string, *Emitter](),
	}
}

// CreateChannel inserts an empty channel into the broker. It returns a
// DuplicateChannelError if the name is already taken, leaving the existing
// channel untouched.
func (b *Broker) CreateChannel(name string) (*Channel, error) {
	created := newChannel(name)
	existing, loaded := b.channels.GetOrCompute(name, func() *Channel { return created })
	if loaded {
		return nil, &DuplicateChannelError{Channel: name}
	}
	return existing, nil
}

// Channel looks up a channel by name.
func (b *Broker) Channel(name string) (*Channel, bool) {
	return b.channels.Get(name)
}

// RegisterListener appends a listener registration to the named channel. The
// append position fixes the listener's place in dispatch order. A nil filter
// matches every message.
func (b *Broker) RegisterListener(channel string, listener Listener, filter messaging.Predicate) error {
	ch, ok := b.channels.Get(channel)
	if !ok {
		return &UnknownChannelError{Channel: channel}
	}
	ch.register(listener, filter)
	return nil
}

// Emitter mints an emitter bound to the named channel and a fresh sender
// identity. Sender names are unique across the broker: a second emitter for
// the same name fails with a DuplicateSenderError, since mailbox traffic is
// keyed by sender name.
func (b *Broker) Emitter(channel, senderName string, role messaging.Role, options ...opts.Option[EmitterOptions]) (*Emitter, error) {
	ch, ok := b.channels.Get(channel)
	if !ok {
		return nil, &UnknownChannelError{Channel: channel}
	}

	var eo EmitterOptions
	if err := opts.Apply(&eo, options); err != nil {
		return nil, err
	}

	created := &Emitter{
		channel:       ch,
		sender:        messaging.SenderIdentity{Name: senderName, Role: role},
		extraContent:  eo.ExtraContent,
		extraMetadata: eo.ExtraMetadata,
	}
	if _, loaded := b.senders.GetOrCompute(senderName, func() *Emitter { return created }); loaded {
		return nil, &DuplicateSenderError{Sender: senderName}
	}
	return created, nil
}
