// Package presence keeps the authoritative, in-memory view of which users are
// online and through how many connections.
//
// All state is owned by a single goroutine started with Tracker.Run. Joins,
// leaves and reads are submitted to it as operations and the caller waits for
// the result, so no two mutations ever interleave and every read observes a
// consistent state. Nothing is persisted: a restart starts from empty.
package presence

import (
	"context"
	"errors"
	"sort"

	"notifyflow/cmd/internal/contract"
	"notifyflow/cmd/internal/domain/entity"
	"notifyflow/cmd/internal/metrics"
	"notifyflow/cmd/internal/utils"

	"github.com/labstack/gommon/log"
)

// ErrStopped is returned when an operation is submitted after Run returned.
var ErrStopped = errors.New("presence tracker stopped")

// IdentityResolver turns a claimed user id into the account it belongs to.
// Implementations return (nil, nil) when no such user exists.
type IdentityResolver interface {
	ResolvePresenceUser(ctx context.Context, userID int64) (*entity.User, error)
}

// Broadcaster receives every snapshot produced after a mutation. It is called
// from the tracker goroutine and must not block.
type Broadcaster interface {
	PublishPresence(snapshot *contract.PresenceSnapshot)
}

type entry struct {
	userID     int64
	name       string
	email      string
	role       string
	conns      map[string]struct{}
	lastSeenAt int64

	// order of creation, snapshots list users oldest first
	seq uint64
}

type Tracker struct {
	resolver    IdentityResolver
	broadcaster Broadcaster
	clock       func() int64

	ops  chan func()
	done chan struct{}

	// owned by the Run goroutine
	entries map[int64]*entry
	owners  map[string]int64
	nextSeq uint64
}

func NewTracker(resolver IdentityResolver, broadcaster Broadcaster) *Tracker {
	return &Tracker{
		resolver:    resolver,
		broadcaster: broadcaster,
		clock:       utils.NowUTC,
		ops:         make(chan func()),
		done:        make(chan struct{}),
		entries:     make(map[int64]*entry),
		owners:      make(map[string]int64),
	}
}

// Run processes operations until ctx is cancelled. It must be called exactly once.
func (t *Tracker) Run(ctx context.Context) {
	defer close(t.done)
	log.Info("presence tracker started")

	for {
		select {
		case <-ctx.Done():
			log.Info("presence tracker stopped")
			return
		case op := <-t.ops:
			op()
		}
	}
}

// submit hands op to the Run goroutine and waits until it has been executed.
func (t *Tracker) submit(ctx context.Context, op func()) error {
	finished := make(chan struct{})
	task := func() {
		defer close(finished)
		op()
	}

	select {
	case t.ops <- task:
	case <-t.done:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}

	// Once accepted the operation always runs to completion
	<-finished
	return nil
}

// Join attributes connID to the user claimed by claimedUserID.
//
// Claims that do not resolve to an active user are dropped silently: nothing
// changes, nothing is broadcast and false is returned. The caller is never
// told why.
func (t *Tracker) Join(ctx context.Context, connID string, claimedUserID int64) bool {
	user, err := t.resolver.ResolvePresenceUser(ctx, claimedUserID)
	if err != nil {
		log.Warnf("failed to resolve presence user %d for connection %s: %v", claimedUserID, connID, err)
		metrics.PresenceJoinsRejected.WithLabelValues("lookup").Inc()
		return false
	}

	if user == nil {
		metrics.PresenceJoinsRejected.WithLabelValues("unknown").Inc()
		return false
	}

	if !user.Active {
		metrics.PresenceJoinsRejected.WithLabelValues("inactive").Inc()
		return false
	}

	err = t.submit(ctx, func() {
		t.join(connID, user)
	})
	if err != nil {
		log.Debugf("presence join for connection %s aborted: %v", connID, err)
		return false
	}
	return true
}

// Leave removes connID from whichever user it was attributed to. Connections
// that never joined are ignored and trigger no broadcast.
func (t *Tracker) Leave(ctx context.Context, connID string) bool {
	var left bool
	err := t.submit(ctx, func() {
		left = t.leave(connID)
	})
	if err != nil {
		log.Debugf("presence leave for connection %s aborted: %v", connID, err)
		return false
	}
	return left
}

// Snapshot returns the current aggregate view without changing anything.
func (t *Tracker) Snapshot(ctx context.Context) (*contract.PresenceSnapshot, error) {
	var snap *contract.PresenceSnapshot
	err := t.submit(ctx, func() {
		snap = t.snapshot()
	})
	if err != nil {
		return nil, err
	}
	return snap, nil
}

// ConnectionsOf lists the connections currently attributed to userID, sorted.
func (t *Tracker) ConnectionsOf(ctx context.Context, userID int64) ([]string, error) {
	var conns []string
	err := t.submit(ctx, func() {
		e, ok := t.entries[userID]
		if !ok {
			return
		}

		conns = make([]string, 0, len(e.conns))
		for id := range e.conns {
			conns = append(conns, id)
		}
		sort.Strings(conns)
	})
	return conns, err
}

func (t *Tracker) join(connID string, user *entity.User) {
	now := t.clock()

	// A connection re-joining as someone else stops counting for the old user
	if prev, ok := t.owners[connID]; ok && prev != user.ID {
		t.detach(connID, prev, now)
	}

	e, ok := t.entries[user.ID]
	if !ok {
		t.nextSeq++
		e = &entry{
			userID: user.ID,
			name:   user.Name,
			email:  user.Email,
			role:   string(user.EffectiveRole()),
			conns:  make(map[string]struct{}, 1),
			seq:    t.nextSeq,
		}
		t.entries[user.ID] = e
	}

	e.conns[connID] = struct{}{}
	e.lastSeenAt = now
	t.owners[connID] = user.ID

	t.publish()
}

func (t *Tracker) leave(connID string) bool {
	userID, ok := t.owners[connID]
	if !ok {
		return false
	}

	t.detach(connID, userID, t.clock())
	t.publish()
	return true
}

func (t *Tracker) detach(connID string, userID, now int64) {
	delete(t.owners, connID)

	e, ok := t.entries[userID]
	if !ok {
		return
	}

	delete(e.conns, connID)
	e.lastSeenAt = now
	if len(e.conns) == 0 {
		delete(t.entries, userID)
	}
}

func (t *Tracker) snapshot() *contract.PresenceSnapshot {
	ordered := make([]*entry, 0, len(t.entries))
	for _, e := range t.entries {
		ordered = append(ordered, e)
	}
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].seq < ordered[j].seq
	})

	users := make([]*contract.PresenceUser, 0, len(ordered))
	for _, e := range ordered {
		users = append(users, &contract.PresenceUser{
			ID:       e.userID,
			Name:     e.name,
			Email:    e.email,
			Role:     e.role,
			Sockets:  len(e.conns),
			LastSeen: utils.FormatISO(e.lastSeenAt),
		})
	}

	return &contract.PresenceSnapshot{
		Count: len(users),
		Users: users,
	}
}

func (t *Tracker) publish() {
	snap := t.snapshot()
	metrics.OnlineUsers.Set(float64(snap.Count))
	metrics.PresenceConnections.Set(float64(len(t.owners)))

	if t.broadcaster == nil {
		return
	}
	t.broadcaster.PublishPresence(snap)
	metrics.PresenceBroadcasts.Inc()
}
