// Package chat mediates between a chat surface and the message store.
package chat

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/Potowai/nomad-nantes/internal/ids"
	"github.com/Potowai/nomad-nantes/internal/messages"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

const (
	// DefaultChatID is the only chat backed by the message store.
	DefaultChatID = messages.SeedChatID
	// LocalSender is the sender name of messages typed by the local user.
	LocalSender = "Moi"

	timestampLayout = "15:04"
	ownPrefix       = "Vous : "
)

// Surface identifies which chat screen is active.
type Surface string

const (
	SurfaceList   Surface = "list"
	SurfaceDetail Surface = "detail"
)

// PlaceholderPreview stands in for the last message of an empty chat.
var PlaceholderPreview = messages.Message{
	Sender: "Système",
	Text:   "Aucun message",
	Status: messages.StatusRead,
}

// MessageStore is the persistence the session reads and appends through.
type MessageStore interface {
	Initialize(ctx context.Context) error
	Messages(ctx context.Context, chatID string) ([]messages.Message, error)
	AddMessage(ctx context.Context, chatID string, message messages.Message) error
}

// Summary is one row of the chat list.
type Summary struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Avatar      string `json:"avatar"`
	Preview     string `json:"preview"`
	Time        string `json:"time"`
	Unread      int    `json:"unread"`
	Placeholder bool   `json:"placeholder,omitempty"`
}

var placeholderSummary = Summary{
	ID:          "chat_2",
	Title:       "Mission Co-working",
	Avatar:      "https://picsum.photos/seed/cowork/100",
	Preview:     "Qui est chaud pour demain ?",
	Time:        "Hier",
	Placeholder: true,
}

// Config wires a Session.
type Config struct {
	Store      MessageStore
	ChatID     string
	IDProvider ids.Provider
	Now        func() time.Time
	Logger     *zap.Logger
}

// Session holds the current chat and the message view-model of the detail
// surface. The view-model is always reloaded from the store, never appended to
// optimistically.
type Session struct {
	mu         sync.Mutex
	store      MessageStore
	chatID     string
	idProvider ids.Provider
	now        func() time.Time
	logger     *zap.Logger
	ready      bool
	surface    Surface
	view       []messages.Message
}

func NewSession(cfg Config) *Session {
	session := &Session{
		store:      cfg.Store,
		chatID:     cfg.ChatID,
		idProvider: cfg.IDProvider,
		now:        cfg.Now,
		logger:     cfg.Logger,
	}
	if session.chatID == "" {
		session.chatID = DefaultChatID
	}
	if session.idProvider == nil {
		session.idProvider = ids.NewUUIDProvider()
	}
	if session.now == nil {
		session.now = time.Now
	}
	if session.logger == nil {
		session.logger = zap.NewNop()
	}
	return session
}

// ChatID returns the chat this session reads and writes.
func (s *Session) ChatID() string {
	return s.chatID
}

// Activate initializes the store and, for the detail surface, loads the
// current chat into the view-model.
func (s *Session) Activate(ctx context.Context, surface Surface) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.store.Initialize(ctx); err != nil {
		return err
	}
	s.ready = true
	s.surface = surface
	if surface == SurfaceDetail {
		return s.reloadLocked(ctx)
	}
	return nil
}

// SendMessage appends text as a message from the local user and reloads the
// view-model. Blank text is ignored; the returned flag reports whether a
// message was sent.
func (s *Session) SendMessage(ctx context.Context, text string) (messages.Message, bool, error) {
	if strings.TrimSpace(text) == "" {
		return messages.Message{}, false, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	id, err := s.idProvider.NewID()
	if err != nil {
		return messages.Message{}, false, err
	}
	message := messages.Message{
		ID:        id,
		Sender:    LocalSender,
		Text:      text,
		Timestamp: s.now().Format(timestampLayout),
		IsMe:      true,
		Status:    messages.StatusSent,
	}
	if err := s.store.AddMessage(ctx, s.chatID, message); err != nil {
		return messages.Message{}, false, err
	}
	s.logger.Debug("chat message sent", zap.String("chat_id", s.chatID), zap.String("message_id", id))
	if err := s.reloadLocked(ctx); err != nil {
		return message, true, err
	}
	return message, true, nil
}

// Messages returns a copy of the view-model.
func (s *Session) Messages() []messages.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]messages.Message(nil), s.view...)
}

// Surface returns the surface passed to the last Activate.
func (s *Session) Surface() Surface {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.surface
}

// Ready reports whether the session has been activated.
func (s *Session) Ready() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ready
}

// Preview returns the last message of the chat, or PlaceholderPreview when the
// chat is empty or the store is not ready.
func (s *Session) Preview(ctx context.Context) (messages.Message, error) {
	history, err := s.store.Messages(ctx, s.chatID)
	if err != nil {
		return messages.Message{}, err
	}
	return lo.LastOr(history, PlaceholderPreview), nil
}

// ChatList returns the chat list rows: the stored chat followed by the static
// placeholder entry.
func (s *Session) ChatList(ctx context.Context) ([]Summary, error) {
	preview, err := s.Preview(ctx)
	if err != nil {
		return nil, err
	}
	text := preview.Text
	if preview.IsMe {
		text = ownPrefix + text
	}
	primary := Summary{
		ID:      s.chatID,
		Title:   "Rencontre Nomades Nantes",
		Avatar:  "https://picsum.photos/seed/nantes/100",
		Preview: text,
		Time:    preview.Timestamp,
	}
	return []Summary{primary, placeholderSummary}, nil
}

func (s *Session) reloadLocked(ctx context.Context) error {
	history, err := s.store.Messages(ctx, s.chatID)
	if err != nil {
		return err
	}
	s.view = history
	return nil
}
