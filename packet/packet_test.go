package packet_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comalice/fsmx"
	"github.com/comalice/fsmx/packet"
	"github.com/comalice/fsmx/queue"
)

type message1 struct{ X int }
type message2 struct{ S string }
type message3 struct{}

func (message1) EventID() fsmx.EventID { return 1 }
func (message2) EventID() fsmx.EventID { return 2 }
func (message3) EventID() fsmx.EventID { return 3 }

func TestPackAndRecover(t *testing.T) {
	set := packet.NewSet(message1{}, message2{}, message1{})
	assert.Equal(t, []fsmx.EventID{1, 2}, set.IDs())

	p, err := set.Pack(message1{X: 42})
	require.NoError(t, err)
	assert.True(t, p.Valid())
	assert.Equal(t, fsmx.EventID(1), p.ID())

	m1, ok := packet.As[message1](p)
	require.True(t, ok)
	assert.Equal(t, 42, m1.X)

	_, ok = packet.As[message2](p)
	assert.False(t, ok)
}

func TestPackCopiesByValue(t *testing.T) {
	set := packet.NewSet(message1{})
	msg := message1{X: 1}
	p, err := set.Pack(msg)
	require.NoError(t, err)

	msg.X = 2
	got, _ := packet.As[message1](p)
	assert.Equal(t, 1, got.X)
}

func TestPackRejectsUnsupported(t *testing.T) {
	set := packet.NewSet(message1{}, message2{})
	assert.True(t, set.Accepts(2))
	assert.False(t, set.Accepts(3))

	_, err := set.Pack(message3{})
	assert.ErrorIs(t, err, packet.ErrUnsupported)
	_, err = set.Pack(nil)
	assert.ErrorIs(t, err, packet.ErrUnsupported)
}

func TestEmptyPacket(t *testing.T) {
	var p packet.Packet
	assert.False(t, p.Valid())
	assert.Equal(t, fsmx.NoEvent, p.ID())
	assert.Nil(t, p.Event())
}

func TestPacketsInQueue(t *testing.T) {
	set := packet.NewSet(message1{}, message2{})
	q := queue.New[packet.Packet](2)

	for _, e := range []fsmx.Event{message1{X: 7}, message2{S: "hi"}} {
		p, err := set.Pack(e)
		require.NoError(t, err)
		require.NoError(t, q.Push(p))
	}
	p, _ := set.Pack(message1{})
	assert.ErrorIs(t, q.Push(p), queue.ErrFull)

	first, _ := q.Pop()
	assert.Equal(t, message1{X: 7}, first.Event())
	second, _ := q.Pop()
	assert.Equal(t, message2{S: "hi"}, second.Event())
}
