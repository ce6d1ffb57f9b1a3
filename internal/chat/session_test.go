package chat

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Potowai/nomad-nantes/internal/ids"
	"github.com/Potowai/nomad-nantes/internal/kv"
	"github.com/Potowai/nomad-nantes/internal/messages"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2025, 6, 14, 23, 5, 0, 0, time.UTC)

func newStore(t *testing.T) *messages.Store {
	t.Helper()
	storage, err := kv.Open(kv.Options{InMemory: true})
	require.NoError(t, err)
	t.Cleanup(func() { _ = storage.Close() })

	store, err := messages.NewStore(messages.StoreConfig{Storage: storage, WorkDir: t.TempDir()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func newSession(t *testing.T, store MessageStore) *Session {
	t.Helper()
	return NewSession(Config{
		Store:      store,
		IDProvider: &ids.Sequence{Prefix: "msg_"},
		Now:        func() time.Time { return fixedNow },
	})
}

func TestActivateDetailLoadsSeededChat(t *testing.T) {
	session := newSession(t, newStore(t))

	require.NoError(t, session.Activate(context.Background(), SurfaceDetail))

	view := session.Messages()
	require.Len(t, view, 4)
	assert.Equal(t, "Lucia", view[0].Sender)
	assert.True(t, session.Ready())
	assert.Equal(t, SurfaceDetail, session.Surface())
}

func TestActivateListLeavesViewEmpty(t *testing.T) {
	session := newSession(t, newStore(t))

	require.NoError(t, session.Activate(context.Background(), SurfaceList))
	assert.Empty(t, session.Messages())
	assert.True(t, session.Ready())
}

func TestSendMessageAppendsAndReloads(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	session := newSession(t, store)
	require.NoError(t, session.Activate(ctx, SurfaceDetail))

	sentMessage, sent, err := session.SendMessage(ctx, "On se retrouve au Lieu Unique ?")
	require.NoError(t, err)
	require.True(t, sent)

	view := session.Messages()
	require.Len(t, view, 5)
	last := view[4]
	assert.Equal(t, messages.Message{
		ID:        "msg_1",
		Sender:    "Moi",
		Text:      "On se retrouve au Lieu Unique ?",
		Timestamp: "23:05",
		IsMe:      true,
		Status:    messages.StatusSent,
	}, last)
	assert.Equal(t, last, sentMessage)

	stored, err := store.Messages(ctx, DefaultChatID)
	require.NoError(t, err)
	assert.Equal(t, view, stored)
}

func TestSendMessageIgnoresBlankText(t *testing.T) {
	ctx := context.Background()
	session := newSession(t, newStore(t))
	require.NoError(t, session.Activate(ctx, SurfaceDetail))

	for _, text := range []string{"", "   ", "\n\t"} {
		_, sent, err := session.SendMessage(ctx, text)
		require.NoError(t, err)
		assert.False(t, sent)
	}
	assert.Len(t, session.Messages(), 4)
}

func TestPreviewAndChatList(t *testing.T) {
	ctx := context.Background()
	session := newSession(t, newStore(t))
	require.NoError(t, session.Activate(ctx, SurfaceList))

	preview, err := session.Preview(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Yassine", preview.Sender)

	list, err := session.ChatList(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, preview.Text, list[0].Preview)
	assert.Equal(t, "22:11", list[0].Time)
	assert.True(t, list[1].Placeholder)
	assert.Equal(t, "Mission Co-working", list[1].Title)

	_, _, err = session.SendMessage(ctx, "J'arrive")
	require.NoError(t, err)
	list, err = session.ChatList(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Vous : J'arrive", list[0].Preview)
}

func TestPreviewBeforeActivationIsPlaceholder(t *testing.T) {
	session := newSession(t, newStore(t))

	preview, err := session.Preview(context.Background())
	require.NoError(t, err)
	assert.Equal(t, PlaceholderPreview, preview)
	assert.Empty(t, preview.ID)
}

type brokenStore struct{}

func (brokenStore) Initialize(context.Context) error { return errors.New("storage offline") }
func (brokenStore) Messages(context.Context, string) ([]messages.Message, error) {
	return nil, errors.New("storage offline")
}
func (brokenStore) AddMessage(context.Context, string, messages.Message) error {
	return errors.New("storage offline")
}

func TestActivatePropagatesStoreFailure(t *testing.T) {
	session := newSession(t, brokenStore{})

	assert.Error(t, session.Activate(context.Background(), SurfaceDetail))
	assert.False(t, session.Ready())

	_, sent, err := session.SendMessage(context.Background(), "hello")
	assert.Error(t, err)
	assert.False(t, sent)
}
