package presence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"testing"
	"time"

	"notifyflow/cmd/internal/contract"
	"notifyflow/cmd/internal/domain/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubResolver struct {
	users map[int64]*entity.User
	err   error
}

func (s *stubResolver) ResolvePresenceUser(_ context.Context, userID int64) (*entity.User, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.users[userID], nil
}

type recordingBroadcaster struct {
	mu    sync.Mutex
	snaps []*contract.PresenceSnapshot
}

func (r *recordingBroadcaster) PublishPresence(snapshot *contract.PresenceSnapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snaps = append(r.snaps, snapshot)
}

func (r *recordingBroadcaster) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.snaps)
}

func (r *recordingBroadcaster) last() *contract.PresenceSnapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.snaps) == 0 {
		return nil
	}
	return r.snaps[len(r.snaps)-1]
}

var (
	ana  = &entity.User{ID: 7, Name: "Ana", Email: "ana@x", Role: entity.RoleAdmin, Active: true}
	bob  = &entity.User{ID: 9, Name: "Bob", Email: "bob@x", Role: entity.RoleUser, Active: true}
	cleo = &entity.User{ID: 4, Name: "Cleo", Email: "cleo@x", Active: false}
)

func startTracker(t *testing.T) (*Tracker, *recordingBroadcaster) {
	t.Helper()
	resolver := &stubResolver{users: map[int64]*entity.User{ana.ID: ana, bob.ID: bob, cleo.ID: cleo}}
	return startTrackerWith(t, resolver)
}

func startTrackerWith(t *testing.T, resolver IdentityResolver) (*Tracker, *recordingBroadcaster) {
	t.Helper()
	rec := &recordingBroadcaster{}
	tracker := NewTracker(resolver, rec)

	var tick int64 = 1_700_000_000_000
	tracker.clock = func() int64 {
		tick += 1000
		return tick
	}

	ctx, cancel := context.WithCancel(context.Background())
	go tracker.Run(ctx)
	t.Cleanup(func() {
		cancel()
		<-tracker.done
	})
	return tracker, rec
}

func snapshot(t *testing.T, tracker *Tracker) *contract.PresenceSnapshot {
	t.Helper()
	snap, err := tracker.Snapshot(context.Background())
	require.NoError(t, err)
	return snap
}

func TestJoinAndLeaveScenario(t *testing.T) {
	tracker, rec := startTracker(t)
	ctx := context.Background()

	socketsOf := func(snap *contract.PresenceSnapshot, userID int64) int {
		for _, u := range snap.Users {
			if u.ID == userID {
				return u.Sockets
			}
		}
		return 0
	}

	assert.True(t, tracker.Join(ctx, "A", ana.ID))
	require.Equal(t, 1, rec.count())
	snap := rec.last()
	require.Equal(t, 1, snap.Count)
	assert.Equal(t, int64(7), snap.Users[0].ID)
	assert.Equal(t, "Ana", snap.Users[0].Name)
	assert.Equal(t, "admin", snap.Users[0].Role)
	assert.Equal(t, 1, snap.Users[0].Sockets)

	assert.True(t, tracker.Join(ctx, "B", ana.ID))
	require.Equal(t, 2, rec.count())
	assert.Equal(t, 1, rec.last().Count)
	assert.Equal(t, 2, socketsOf(rec.last(), ana.ID))

	assert.True(t, tracker.Join(ctx, "C", bob.ID))
	require.Equal(t, 3, rec.count())
	snap = rec.last()
	require.Equal(t, 2, snap.Count)
	assert.Equal(t, 2, socketsOf(snap, ana.ID))
	assert.Equal(t, 1, socketsOf(snap, bob.ID))

	assert.True(t, tracker.Leave(ctx, "A"))
	require.Equal(t, 4, rec.count())
	snap = rec.last()
	assert.Equal(t, 2, snap.Count)
	assert.Equal(t, 1, socketsOf(snap, ana.ID))

	assert.True(t, tracker.Leave(ctx, "B"))
	require.Equal(t, 5, rec.count())
	snap = rec.last()
	require.Equal(t, 1, snap.Count)
	assert.Equal(t, bob.ID, snap.Users[0].ID)
	assert.Equal(t, 1, snap.Users[0].Sockets)

	assert.True(t, tracker.Leave(ctx, "C"))
	require.Equal(t, 6, rec.count())
	assert.Equal(t, 0, rec.last().Count)
	assert.Empty(t, rec.last().Users)
}

func TestLastSeenRefreshedOnJoinAndLeave(t *testing.T) {
	tracker, rec := startTracker(t)
	ctx := context.Background()

	tracker.Join(ctx, "A", ana.ID)
	first := rec.last().Users[0].LastSeen

	tracker.Join(ctx, "B", ana.ID)
	second := rec.last().Users[0].LastSeen
	assert.NotEqual(t, first, second)

	tracker.Leave(ctx, "B")
	third := rec.last().Users[0].LastSeen
	assert.NotEqual(t, second, third)

	_, err := time.Parse(time.RFC3339Nano, third)
	assert.NoError(t, err)
}

func TestRejectedJoinsChangeNothing(t *testing.T) {
	resolver := &stubResolver{users: map[int64]*entity.User{ana.ID: ana, cleo.ID: cleo}}
	tracker, rec := startTrackerWith(t, resolver)
	ctx := context.Background()

	assert.False(t, tracker.Join(ctx, "C", cleo.ID), "inactive user")
	assert.False(t, tracker.Join(ctx, "C", 12345), "unknown user")
	assert.False(t, tracker.Join(ctx, "C", 0), "zero id")
	assert.False(t, tracker.Join(ctx, "C", -3), "negative id")

	assert.Zero(t, rec.count())
	assert.Equal(t, 0, snapshot(t, tracker).Count)

	// the connection stays unattributed, so leaving is also silent
	assert.False(t, tracker.Leave(ctx, "C"))
	assert.Zero(t, rec.count())
}

func TestResolverErrorIsSilent(t *testing.T) {
	tracker, rec := startTrackerWith(t, &stubResolver{err: errors.New("db down")})

	assert.False(t, tracker.Join(context.Background(), "A", ana.ID))
	assert.Zero(t, rec.count())
	assert.Equal(t, 0, snapshot(t, tracker).Count)
}

func TestOrphanLeaveIsNoop(t *testing.T) {
	tracker, rec := startTracker(t)
	ctx := context.Background()

	tracker.Join(ctx, "A", ana.ID)
	before := snapshot(t, tracker)

	assert.False(t, tracker.Leave(ctx, "never-joined"))
	assert.Equal(t, 1, rec.count())
	assert.Equal(t, before, snapshot(t, tracker))
}

func TestSnapshotIsIdempotent(t *testing.T) {
	tracker, rec := startTracker(t)
	ctx := context.Background()

	tracker.Join(ctx, "A", ana.ID)
	tracker.Join(ctx, "B", bob.ID)
	broadcasts := rec.count()

	first, err := json.Marshal(snapshot(t, tracker))
	require.NoError(t, err)
	second, err := json.Marshal(snapshot(t, tracker))
	require.NoError(t, err)

	assert.Equal(t, string(first), string(second))
	assert.Equal(t, broadcasts, rec.count(), "reads never broadcast")
}

func TestEmptySnapshotShape(t *testing.T) {
	tracker, _ := startTracker(t)

	data, err := json.Marshal(snapshot(t, tracker))
	require.NoError(t, err)
	assert.JSONEq(t, `{"count":0,"users":[]}`, string(data))
}

func TestSnapshotOrderedByFirstJoin(t *testing.T) {
	tracker, _ := startTracker(t)
	ctx := context.Background()

	tracker.Join(ctx, "B1", bob.ID)
	tracker.Join(ctx, "A1", ana.ID)
	tracker.Join(ctx, "B2", bob.ID)

	snap := snapshot(t, tracker)
	require.Equal(t, 2, snap.Count)
	assert.Equal(t, bob.ID, snap.Users[0].ID)
	assert.Equal(t, ana.ID, snap.Users[1].ID)

	// bob drops out entirely and comes back as the newest entry
	tracker.Leave(ctx, "B1")
	tracker.Leave(ctx, "B2")
	tracker.Join(ctx, "B3", bob.ID)

	snap = snapshot(t, tracker)
	assert.Equal(t, ana.ID, snap.Users[0].ID)
	assert.Equal(t, bob.ID, snap.Users[1].ID)
}

func TestRejoinAsDifferentUserMovesConnection(t *testing.T) {
	tracker, _ := startTracker(t)
	ctx := context.Background()

	tracker.Join(ctx, "A", ana.ID)
	tracker.Join(ctx, "A", bob.ID)

	snap := snapshot(t, tracker)
	require.Equal(t, 1, snap.Count)
	assert.Equal(t, bob.ID, snap.Users[0].ID)
	assert.Equal(t, 1, snap.Users[0].Sockets)

	assert.True(t, tracker.Leave(ctx, "A"))
	assert.Equal(t, 0, snapshot(t, tracker).Count)
}

func TestRepeatedJoinOnSameConnection(t *testing.T) {
	tracker, rec := startTracker(t)
	ctx := context.Background()

	tracker.Join(ctx, "A", ana.ID)
	tracker.Join(ctx, "A", ana.ID)

	assert.Equal(t, 2, rec.count())
	assert.Equal(t, 1, snapshot(t, tracker).Users[0].Sockets)
}

func TestConnectionsOf(t *testing.T) {
	tracker, _ := startTracker(t)
	ctx := context.Background()

	tracker.Join(ctx, "z", ana.ID)
	tracker.Join(ctx, "a", ana.ID)
	tracker.Join(ctx, "m", bob.ID)

	conns, err := tracker.ConnectionsOf(ctx, ana.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "z"}, conns)

	conns, err = tracker.ConnectionsOf(ctx, 555)
	require.NoError(t, err)
	assert.Empty(t, conns)
}

func TestRandomSequencesMatchModel(t *testing.T) {
	tracker, rec := startTracker(t)
	ctx := context.Background()
	rnd := rand.New(rand.NewSource(42))

	users := []*entity.User{ana, bob, cleo}
	model := map[string]int64{}

	for i := 0; i < 500; i++ {
		conn := fmt.Sprintf("c%d", rnd.Intn(12))
		before := rec.count()

		if rnd.Intn(2) == 0 {
			u := users[rnd.Intn(len(users))]
			joined := tracker.Join(ctx, conn, u.ID)
			assert.Equal(t, u.Active, joined)
			if u.Active {
				model[conn] = u.ID
				assert.Equal(t, before+1, rec.count())
			} else {
				assert.Equal(t, before, rec.count())
			}
		} else {
			_, known := model[conn]
			assert.Equal(t, known, tracker.Leave(ctx, conn))
			delete(model, conn)
			if known {
				assert.Equal(t, before+1, rec.count())
			} else {
				assert.Equal(t, before, rec.count())
			}
		}

		sockets := map[int64]int{}
		for _, id := range model {
			sockets[id]++
		}

		snap := snapshot(t, tracker)
		require.Equal(t, len(sockets), snap.Count)
		require.Len(t, snap.Users, snap.Count)
		for _, u := range snap.Users {
			assert.Equal(t, sockets[u.ID], u.Sockets)
			assert.Positive(t, u.Sockets)
		}
	}
}

func TestConcurrentCallersStayConsistent(t *testing.T) {
	tracker, _ := startTracker(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			conn := fmt.Sprintf("conn-%d", i)
			user := ana.ID
			if i%2 == 0 {
				user = bob.ID
			}
			tracker.Join(ctx, conn, user)
			if i%5 == 0 {
				tracker.Leave(ctx, conn)
			}
		}(i)
	}
	wg.Wait()

	snap := snapshot(t, tracker)
	total := 0
	for _, u := range snap.Users {
		total += u.Sockets
	}
	assert.Equal(t, 40, total)
	assert.Equal(t, 2, snap.Count)
}

func TestStoppedTracker(t *testing.T) {
	rec := &recordingBroadcaster{}
	tracker := NewTracker(&stubResolver{users: map[int64]*entity.User{ana.ID: ana}}, rec)

	ctx, cancel := context.WithCancel(context.Background())
	go tracker.Run(ctx)
	cancel()
	<-tracker.done

	assert.False(t, tracker.Join(context.Background(), "A", ana.ID))
	assert.False(t, tracker.Leave(context.Background(), "A"))
	_, err := tracker.Snapshot(context.Background())
	assert.ErrorIs(t, err, ErrStopped)
	assert.Zero(t, rec.count())
}

func TestCancelledCallerContext(t *testing.T) {
	tracker := NewTracker(&stubResolver{}, nil)

	// Run never started, so only the caller's context can release it
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := tracker.Snapshot(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
