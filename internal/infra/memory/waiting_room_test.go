package memory

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"gameroom-service/internal/domain"
)

func TestWaitingRoomEnqueueIsIdempotent(t *testing.T) {
	room := NewWaitingRoom()

	assert.True(t, room.Enqueue("5", "c1"))
	assert.False(t, room.Enqueue("5", "c1"))

	queue, err := room.Queue("5")
	require.NoError(t, err)
	assert.Equal(t, []string{"c1"}, queue)
	assert.True(t, room.HasPlayers("5"))
}

func TestWaitingRoomQueueRequiresTopic(t *testing.T) {
	_, err := NewWaitingRoom().Queue("")
	assert.ErrorIs(t, err, domain.ErrMissingTopic)
}

func TestWaitingRoomDequeueAllScansEveryTopic(t *testing.T) {
	room := NewWaitingRoom()
	room.Enqueue("1", "c1")
	room.Enqueue("2", "c1")
	room.Enqueue("2", "c2")

	room.DequeueAll("c1")

	q1, _ := room.Queue("1")
	q2, _ := room.Queue("2")
	assert.Empty(t, q1)
	assert.Equal(t, []string{"c2"}, q2)
	assert.False(t, room.HasPlayers("1"))
}

func TestWaitingRoomReleaseTopic(t *testing.T) {
	room := NewWaitingRoom()

	assert.ErrorIs(t, room.ReleaseTopic("never"), domain.ErrUnknownTopic)

	room.Enqueue("5", "c1")
	room.DequeueAll("c1")
	// known topic with nobody queued releases cleanly
	require.NoError(t, room.ReleaseTopic("5"))
	// ...and is unknown afterwards
	assert.ErrorIs(t, room.ReleaseTopic("5"), domain.ErrUnknownTopic)
}

func TestWaitingRoomTakeOldestFirst(t *testing.T) {
	room := NewWaitingRoom()
	for _, id := range []string{"a", "b", "c"} {
		room.Enqueue("7", id)
	}

	assert.Equal(t, []string{"a", "b"}, room.Take("7", 2))
	queue, _ := room.Queue("7")
	assert.Equal(t, []string{"c"}, queue)

	assert.Nil(t, room.Take("7", 2), "one waiting is not enough")
	queue, _ = room.Queue("7")
	assert.Equal(t, []string{"c"}, queue)
}

func TestWaitingRoomTakeReleasesEmptiedTopic(t *testing.T) {
	room := NewWaitingRoom()
	room.Enqueue("5", "a")
	room.Enqueue("5", "b")

	assert.Equal(t, []string{"a", "b"}, room.Take("5", 2))
	assert.False(t, room.HasPlayers("5"))
	assert.ErrorIs(t, room.ReleaseTopic("5"), domain.ErrUnknownTopic)
	assert.Nil(t, room.Take("never", 2))
}

func TestWaitingRoomRestoreGoesFirst(t *testing.T) {
	room := NewWaitingRoom()
	room.Enqueue("5", "c")
	room.Enqueue("5", "a")

	room.Restore("5", "a", "b")
	queue, _ := room.Queue("5")
	assert.Equal(t, []string{"b", "c", "a"}, queue)

	room.Restore("9")
	assert.False(t, room.HasPlayers("9"))
}

// Property: a connection id never appears twice in one topic queue.
func TestPropertyWaitingRoomNoDuplicates(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		room := NewWaitingRoom()
		ops := rapid.SliceOfN(rapid.IntRange(0, 5), 1, 60).Draw(t, "ops")
		for i, n := range ops {
			topic := fmt.Sprintf("t%d", n%2)
			id := fmt.Sprintf("c%d", n)
			if i%7 == 6 {
				room.DequeueAll(id)
				continue
			}
			room.Enqueue(topic, id)
		}
		for _, topic := range []string{"t0", "t1"} {
			queue, _ := room.Queue(topic)
			seen := map[string]bool{}
			for _, id := range queue {
				if seen[id] {
					t.Fatalf("duplicate %s in %s", id, topic)
				}
				seen[id] = true
			}
		}
	})
}
