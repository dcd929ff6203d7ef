package mailbox

import (
	"context"
	"fmt"
	"testing"

	"github.com/casualjim/courier/messaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testMessage(sender string, n int) messaging.Message {
	return messaging.NewMessage(
		map[string]any{"n": n},
		messaging.NewMetadata(messaging.SenderIdentity{Name: sender, Role: messaging.RoleAgent}, nil),
	)
}

func TestMailbox(t *testing.T) {
	t.Run("pop preserves FIFO order", func(t *testing.T) {
		mbox, err := New()
		require.NoError(t, err)

		for i := 0; i < 3; i++ {
			require.NoError(t, mbox.Push("agent", testMessage("agent", i)))
		}

		for i := 0; i < 3; i++ {
			msg, ok := mbox.Pop("agent")
			require.True(t, ok)
			n, _ := msg.Get("n")
			assert.Equal(t, i, n)
		}
		_, ok := mbox.Pop("agent")
		assert.False(t, ok)
	})

	t.Run("queues are keyed by sender", func(t *testing.T) {
		mbox, err := New()
		require.NoError(t, err)

		require.NoError(t, mbox.Push("factory", testMessage("factory", 1)))
		require.NoError(t, mbox.Push("agent", testMessage("agent", 2)))

		assert.Equal(t, 1, mbox.Len("factory"))
		assert.Equal(t, 1, mbox.Len("agent"))
		assert.Equal(t, 0, mbox.Len("user"))
	})

	t.Run("push fails at capacity", func(t *testing.T) {
		mbox, err := New(WithCapacity(2))
		require.NoError(t, err)

		require.NoError(t, mbox.Push("agent", testMessage("agent", 0)))
		require.NoError(t, mbox.Push("agent", testMessage("agent", 1)))

		err = mbox.Push("agent", testMessage("agent", 2))
		var full *FullError
		require.ErrorAs(t, err, &full)
		assert.Equal(t, "agent", full.Sender)
		assert.Equal(t, 2, full.Capacity)

		// Other senders are unaffected by one full queue.
		assert.NoError(t, mbox.Push("factory", testMessage("factory", 0)))
	})

	t.Run("drain empties the queue", func(t *testing.T) {
		mbox, err := New()
		require.NoError(t, err)

		for i := 0; i < 4; i++ {
			require.NoError(t, mbox.Push("factory", testMessage("factory", i)))
		}

		drained := mbox.Drain("factory")
		require.Len(t, drained, 4)
		for i, msg := range drained {
			n, _ := msg.Get("n")
			assert.Equal(t, i, n)
		}
		assert.Equal(t, 0, mbox.Len("factory"))
		assert.Empty(t, mbox.Drain("factory"))
	})

	t.Run("rejects a non-positive capacity", func(t *testing.T) {
		_, err := New(WithCapacity(0))
		assert.Error(t, err)
	})
}

func TestDeliver(t *testing.T) {
	mbox, err := New()
	require.NoError(t, err)

	msg := testMessage("autogpt-agent-factory", 7)
	require.NoError(t, mbox.Deliver(context.Background(), msg))

	got, ok := mbox.Pop("autogpt-agent-factory")
	require.True(t, ok)
	assert.Equal(t, msg.ID(), got.ID())
}

func TestMailboxConcurrentPush(t *testing.T) {
	mbox, err := New(WithCapacity(1000))
	require.NoError(t, err)

	done := make(chan struct{})
	for g := 0; g < 4; g++ {
		g := g
		go func() {
			defer func() { done <- struct{}{} }()
			sender := fmt.Sprintf("sender-%d", g)
			for i := 0; i < 100; i++ {
				assert.NoError(t, mbox.Push(sender, testMessage(sender, i)))
			}
		}()
	}
	for g := 0; g < 4; g++ {
		<-done
	}
	for g := 0; g < 4; g++ {
		assert.Equal(t, 100, mbox.Len(fmt.Sprintf("sender-%d", g)))
	}
}
