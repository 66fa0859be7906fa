package guard_test

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/eringen/poetbook/collection"
	"github.com/eringen/poetbook/guard"
	"github.com/eringen/poetbook/storage"
	"github.com/eringen/poetbook/storage/mock"
)

const secret = "poet2025!"

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type clock struct {
	t time.Time
}

func (c *clock) Now() time.Time          { return c.t }
func (c *clock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newGuard(kv storage.Storage) (*guard.Guard, *clock) {
	c := &clock{t: time.Date(2026, time.October, 17, 9, 0, 0, 0, time.UTC)}
	return guard.New(kv, secret, guard.WithClock(c.Now)), c
}

func TestLoginScenario(t *testing.T) {
	ctx := context.Background()
	g, c := newGuard(storage.NewMemory())

	ok, err := g.Login(ctx, "wrong")
	require.NoError(t, err)
	assert.False(t, ok)
	ok, err = g.CheckStatus(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = g.Login(ctx, secret)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = g.CheckStatus(ctx)
	require.NoError(t, err)
	assert.True(t, ok)

	c.Advance(31 * time.Minute)
	ok, err = g.CheckStatus(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSessionWindow(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemory()
	g, c := newGuard(kv)

	_, err := g.Login(ctx, secret)
	require.NoError(t, err)

	c.Advance(29 * time.Minute)
	st, err := g.Status(ctx)
	require.NoError(t, err)
	assert.True(t, st.Authenticated)
	assert.Equal(t, time.Minute, st.Remaining)

	c.Advance(time.Minute)
	ok, err := g.IsAuthorized(ctx)
	require.NoError(t, err)
	assert.False(t, ok, "session must expire at exactly the timeout")

	_, present, err := kv.Get(ctx, storage.KeySession)
	require.NoError(t, err)
	assert.False(t, present, "expired session must be cleared")
}

func TestReloginRestartsWindow(t *testing.T) {
	ctx := context.Background()
	g, c := newGuard(storage.NewMemory())

	_, err := g.Login(ctx, secret)
	require.NoError(t, err)
	c.Advance(20 * time.Minute)
	_, err = g.Login(ctx, secret)
	require.NoError(t, err)
	c.Advance(20 * time.Minute)

	ok, err := g.CheckStatus(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestWrongPasswordDoesNotTouchStorage(t *testing.T) {
	ctrl := gomock.NewController(t)
	kv := mock.NewMockStorage(ctrl)
	g, _ := newGuard(kv)

	ok, err := g.Login(context.Background(), "poet2024!")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestWrongPasswordKeepsExistingSession(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemory()
	g, _ := newGuard(kv)

	_, err := g.Login(ctx, secret)
	require.NoError(t, err)
	before, _, _ := kv.Get(ctx, storage.KeySession)

	ok, err := g.Login(ctx, "nope")
	require.NoError(t, err)
	assert.False(t, ok)

	after, _, _ := kv.Get(ctx, storage.KeySession)
	assert.Equal(t, before, after)
}

func TestEmptySecretRejectsEverything(t *testing.T) {
	g := guard.New(storage.NewMemory(), "")
	ok, err := g.Login(context.Background(), "")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLogoutIsIdempotent(t *testing.T) {
	ctx := context.Background()
	g, _ := newGuard(storage.NewMemory())

	require.NoError(t, g.Logout(ctx))
	_, err := g.Login(ctx, secret)
	require.NoError(t, err)
	require.NoError(t, g.Logout(ctx))
	require.NoError(t, g.Logout(ctx))

	ok, err := g.CheckStatus(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStoredRecordShape(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemory()
	g, c := newGuard(kv)

	_, err := g.Login(ctx, secret)
	require.NoError(t, err)
	raw, ok, err := kv.Get(ctx, storage.KeySession)
	require.NoError(t, err)
	require.True(t, ok)
	assert.JSONEq(t, `{"authenticated":true,"timestamp":`+itoa(c.t.UnixMilli())+`}`, raw)
}

func TestBadRecordsAreCleared(t *testing.T) {
	records := map[string]string{
		"malformed":         `{"authenticated":`,
		"not authenticated": `{"authenticated":false,"timestamp":1792227600000}`,
		"ancient":           `{"authenticated":true,"timestamp":0}`,
	}
	for name, raw := range records {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			kv := storage.NewMemory()
			require.NoError(t, kv.Set(ctx, storage.KeySession, raw))
			g, _ := newGuard(kv)

			ok, err := g.CheckStatus(ctx)
			require.NoError(t, err)
			assert.False(t, ok)
			_, present, _ := kv.Get(ctx, storage.KeySession)
			assert.False(t, present)
		})
	}
}

func TestStorageErrorsSurface(t *testing.T) {
	ctrl := gomock.NewController(t)
	kv := mock.NewMockStorage(ctrl)
	boom := errors.New("unavailable")
	kv.EXPECT().Get(gomock.Any(), storage.KeySession).Return("", false, boom)
	kv.EXPECT().Set(gomock.Any(), storage.KeySession, gomock.Any()).Return(boom)
	g, _ := newGuard(kv)

	_, err := g.CheckStatus(context.Background())
	assert.ErrorIs(t, err, boom)
	ok, err := g.Login(context.Background(), secret)
	assert.ErrorIs(t, err, boom)
	assert.False(t, ok)
}

func TestWithTimeout(t *testing.T) {
	ctx := context.Background()
	c := &clock{t: time.Unix(1_800_000_000, 0)}
	g := guard.New(storage.NewMemory(), secret, guard.WithClock(c.Now), guard.WithTimeout(5*time.Minute))
	assert.Equal(t, 5*time.Minute, g.Timeout())

	_, err := g.Login(ctx, secret)
	require.NoError(t, err)
	c.Advance(6 * time.Minute)
	ok, err := g.CheckStatus(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestGuardAuthorizesCollection(t *testing.T) {
	ctx := context.Background()
	g, c := newGuard(storage.NewMemory())
	s, err := collection.Open(ctx, storage.NewMemory())
	require.NoError(t, err)
	guarded := collection.NewGuarded(s, g)

	_, err = guarded.Add(ctx, collection.Input{Title: "Locked", Content: "x"})
	assert.ErrorIs(t, err, collection.ErrDenied)

	_, err = g.Login(ctx, secret)
	require.NoError(t, err)
	_, err = guarded.Add(ctx, collection.Input{Title: "Unlocked", Content: "x"})
	assert.NoError(t, err)

	c.Advance(guard.DefaultTimeout)
	_, err = guarded.Delete(ctx, "unlocked")
	assert.ErrorIs(t, err, collection.ErrDenied)
}

func itoa(n int64) string {
	return strconv.FormatInt(n, 10)
}
