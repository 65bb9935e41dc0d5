package realtime

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"collabboard/internal/model"
)

func testUser(id int64, name string) *model.User {
	u := &model.User{Name: name}
	u.ID = id
	return u
}

func TestRegistryJoinLeave(t *testing.T) {
	r := NewRegistry(nil)
	a := newSession("a", testUser(1, "A"))
	b := newSession("b", testUser(2, "B"))
	r.Register(a)
	r.Register(b)

	r.Join(10, a)
	r.Join(10, a)
	r.Join(10, b)
	r.Join(20, a)

	assert.Equal(t, []string{"a", "b"}, r.Members(10))
	assert.Equal(t, []int64{10, 20}, r.Rooms(a))
	assert.True(t, r.InRoom(20, a))

	r.Leave(10, a)
	r.Leave(10, a)
	assert.Equal(t, []string{"b"}, r.Members(10))
	assert.Equal(t, []int64{20}, r.Rooms(a))

	r.Leave(99, b)
	assert.Equal(t, []int64{10}, r.Rooms(b))
}

func TestRegistryUnregisterLeavesAllRooms(t *testing.T) {
	r := NewRegistry(nil)
	a := newSession("a", testUser(1, "A"))
	b := newSession("b", testUser(2, "B"))
	r.Register(a)
	r.Register(b)
	r.Join(10, a)
	r.Join(20, a)
	r.Join(10, b)

	left := r.Unregister(a)
	assert.Equal(t, []int64{10, 20}, left)
	assert.Equal(t, []string{"b"}, r.Members(10))
	assert.Empty(t, r.Members(20))
	assert.Equal(t, 1, r.Connections())

	require.NoError(t, r.Broadcast(10, EventNewMessage, map[string]string{"message": "hi"}))
	assert.Empty(t, a.envelopes(t))
	assert.Len(t, b.envelopes(t), 1)
}

func TestRegistryBroadcastExcept(t *testing.T) {
	r := NewRegistry(nil)
	a := newSession("a", testUser(1, "A"))
	b := newSession("b", testUser(2, "B"))
	r.Join(10, a)
	r.Join(10, b)

	require.NoError(t, r.BroadcastExcept(10, EventNewMessage, "x", "a"))
	assert.Empty(t, a.envelopes(t))
	assert.Len(t, b.envelopes(t), 1)
}

func TestRegistryDropsWhenBufferFull(t *testing.T) {
	r := NewRegistry(nil)
	slow := newSession("slow", testUser(1, "S"))
	slow.limit = 1
	fast := newSession("fast", testUser(2, "F"))
	r.Join(10, slow)
	r.Join(10, fast)

	frame, err := Encode(EventNewMessage, "one")
	require.NoError(t, err)
	assert.Equal(t, 2, r.BroadcastRaw(10, frame, ""))
	assert.Equal(t, 1, r.BroadcastRaw(10, frame, ""))

	assert.Len(t, slow.envelopes(t), 1)
	assert.Len(t, fast.envelopes(t), 2)
}

func TestRegistryOrderIsSharedAcrossMembers(t *testing.T) {
	r := NewRegistry(nil)
	a := newSession("a", testUser(1, "A"))
	b := newSession("b", testUser(2, "B"))
	r.Join(10, a)
	r.Join(10, b)

	for i := 0; i < 5; i++ {
		require.NoError(t, r.Broadcast(10, EventNewMessage, i))
	}
	assert.Equal(t, a.events(t, EventNewMessage), b.events(t, EventNewMessage))
}

func TestRegistrySendToUser(t *testing.T) {
	r := NewRegistry(nil)
	tab1 := newSession("tab1", testUser(1, "A"))
	tab2 := newSession("tab2", testUser(1, "A"))
	other := newSession("other", testUser(2, "B"))
	r.Register(tab1)
	r.Register(tab2)
	r.Register(other)

	require.NoError(t, r.SendToUser(1, EventNotification, map[string]string{"message": "hey"}))
	assert.Len(t, tab1.events(t, EventNotification), 1)
	assert.Len(t, tab2.events(t, EventNotification), 1)
	assert.Empty(t, other.envelopes(t))

	r.Unregister(tab1)
	r.Unregister(tab2)
	require.NoError(t, r.SendToUser(1, EventNotification, "again"))
	assert.Len(t, tab1.events(t, EventNotification), 1)
}
