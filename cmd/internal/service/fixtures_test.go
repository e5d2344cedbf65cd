package service

import (
	"context"
	"sync"
	"testing"

	"notifyflow/cmd/internal/contract"
	"notifyflow/cmd/internal/domain/entity"
	"notifyflow/cmd/internal/domain/events"
	"notifyflow/cmd/internal/domain/sqlite"
	"notifyflow/cmd/internal/domain/sqlite/repository"
	"notifyflow/cmd/internal/utils/validators"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type fixture struct {
	users         *repository.DefaultUserRepository
	events        *repository.DefaultEventRepository
	notifications *repository.DefaultNotificationRepository
	logs          *repository.DefaultLogRepository
	conns         *repository.DefaultConnectionRepository
	validate      *validator.Validate
	audit         *AuditLogger
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := sqlite.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		_ = sqlDB.Close()
	})

	validate := validator.New()
	validators.Register(validate)

	logs := repository.NewLogRepository(db)
	return &fixture{
		users:         repository.NewUserRepository(db),
		events:        repository.NewEventRepository(db),
		notifications: repository.NewNotificationRepository(db),
		logs:          logs,
		conns:         repository.NewConnectionRepository(db),
		validate:      validate,
		audit:         NewAuditLogger(logs),
	}
}

func (f *fixture) addUser(t *testing.T, name, email string, role entity.Role, active bool) *entity.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)

	user := &entity.User{Name: name, Email: email, Role: role, Active: active, PasswordHash: string(hash)}
	require.NoError(t, f.users.Save(user))
	return user
}

// fakeGateway records pushes instead of sending them anywhere.
type fakeGateway struct {
	mu      sync.Mutex
	posts   map[string][]interface{}
	deleted []string
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{posts: map[string][]interface{}{}}
}

func (g *fakeGateway) PostToConnection(_ context.Context, connID string, data interface{}) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.posts[connID] = append(g.posts[connID], data)
	return nil
}

func (g *fakeGateway) DeleteConnection(_ context.Context, connID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.deleted = append(g.deleted, connID)
	return nil
}

func (g *fakeGateway) postsTo(connID string) []interface{} {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]interface{}(nil), g.posts[connID]...)
}

func (g *fakeGateway) deletedConns() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]string(nil), g.deleted...)
}

type fakeTerminator struct {
	calls map[int64]contract.KillCode
}

func (f *fakeTerminator) TerminateUserConnections(_ context.Context, userID int64, ck *events.ConnectionKill) {
	if f.calls == nil {
		f.calls = map[int64]contract.KillCode{}
	}
	f.calls[userID] = ck.Code
}

type fakeArchive struct {
	keys []string
	data [][]byte
	err  error
}

func (f *fakeArchive) UploadFile(_ context.Context, key string, data []byte) error {
	if f.err != nil {
		return f.err
	}
	f.keys = append(f.keys, key)
	f.data = append(f.data, data)
	return nil
}
