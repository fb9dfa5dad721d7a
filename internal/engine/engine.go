package engine

import (
	"context"
	"sync"

	"collabdesk/internal/api"
	"collabdesk/internal/domain"
	"collabdesk/internal/events"
	"collabdesk/internal/history"
	"collabdesk/internal/lifecycle"
	"collabdesk/internal/notify"
	"collabdesk/internal/store"
	"collabdesk/internal/typing"
	pkgevents "collabdesk/pkg/events"
	"collabdesk/pkg/logger"
)

const hydrateLimit = 100

// Engine wires the stores and managers into the single surface UI
// consumers talk to. All mutation of conversation/message state passes
// through it; consumers are callers of explicit APIs, never direct
// mutators.
type Engine struct {
	Conversations *store.ConversationStore
	Messages      *store.MessageStore
	Lifecycle     *lifecycle.Manager
	Typing        *typing.Coordinator
	History       *history.Loader
	Preferences   *notify.Preferences
	Fanout        *notify.Fanout
	Poller        *notify.Poller

	client *api.Client
	source events.Source
	bus    *pkgevents.Bus
	logger *logger.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
}

type Deps struct {
	Conversations *store.ConversationStore
	Messages      *store.MessageStore
	Lifecycle     *lifecycle.Manager
	Typing        *typing.Coordinator
	History       *history.Loader
	Preferences   *notify.Preferences
	Fanout        *notify.Fanout
	Poller        *notify.Poller
	Client        *api.Client
	Source        events.Source
	Bus           *pkgevents.Bus
	Logger        *logger.Logger
}

func New(deps Deps) *Engine {
	return &Engine{
		Conversations: deps.Conversations,
		Messages:      deps.Messages,
		Lifecycle:     deps.Lifecycle,
		Typing:        deps.Typing,
		History:       deps.History,
		Preferences:   deps.Preferences,
		Fanout:        deps.Fanout,
		Poller:        deps.Poller,
		client:        deps.Client,
		source:        deps.Source,
		bus:           deps.Bus,
		logger:        deps.Logger,
	}
}

// Start hydrates session state and launches the background tasks: the
// fan-out subscription, the count poller and the remote event pump.
func (e *Engine) Start(ctx context.Context) error {
	e.mu.Lock()
	ctx, e.cancel = context.WithCancel(ctx)
	e.mu.Unlock()

	if err := e.Preferences.Load(ctx); err != nil {
		// Defaults already in place; the session degrades, not dies.
		e.logger.Warnf("preferences hydration: %s", err)
	}
	if err := e.hydrateConversations(ctx); err != nil {
		e.logger.Warnf("conversation hydration: %s", err)
	}

	e.Fanout.Start(ctx)
	e.Poller.Start(ctx)

	if e.source != nil {
		if err := e.source.Start(ctx); err != nil {
			return err
		}
		go e.pump(ctx)
	}
	return nil
}

// Stop cancels all background tasks.
func (e *Engine) Stop() {
	e.mu.Lock()
	if e.cancel != nil {
		e.cancel()
		e.cancel = nil
	}
	e.mu.Unlock()
	e.Poller.Stop()
	e.Typing.Stop()
}

func (e *Engine) hydrateConversations(ctx context.Context) error {
	page, err := e.client.ListConversations(ctx, "", hydrateLimit)
	if err != nil {
		return err
	}
	for _, wire := range page.Conversations {
		if err := e.Conversations.Upsert(wire.ToDomain()); err != nil {
			e.logger.Warnf("hydrate conversation %s: %s", wire.ID, err)
		}
	}
	e.logger.Infof("hydrated %d conversations", len(page.Conversations))
	return nil
}

// pump translates remote events into state machine calls.
func (e *Engine) pump(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case evt, ok := <-e.source.Events():
			if !ok {
				return
			}
			e.apply(evt)
		}
	}
}

func (e *Engine) apply(evt events.RemoteEvent) {
	switch evt.Kind {
	case events.RemoteMessageNew:
		if evt.Message != nil {
			e.Lifecycle.ApplyRemoteMessage(evt.ConversationID, *evt.Message)
		}
	case events.RemoteStatusAdvance:
		if evt.Status != nil {
			e.Lifecycle.ApplyStatusAdvance(*evt.Status)
		}
	case events.RemoteTyping:
		if evt.Typing != nil {
			e.Typing.HandleRemote(evt.ConversationID, evt.Typing.Started)
		}
	}
}

// SelectConversation makes a conversation the active one: in-flight
// history loads for the conversation being left are cancelled, the new
// conversation is marked read. Empty id deselects.
func (e *Engine) SelectConversation(id string) {
	e.History.Switch(id)
	e.Lifecycle.SetActive(id)
}

// CreateConversation asks the platform for a new thread and stores it.
func (e *Engine) CreateConversation(ctx context.Context, participantID, initialMessage string) (domain.Conversation, error) {
	wire, err := e.client.CreateConversation(ctx, api.CreateConversationRequest{
		ParticipantID:  participantID,
		InitialMessage: initialMessage,
	})
	if err != nil {
		return domain.Conversation{}, err
	}
	conv := wire.ToDomain()
	if err := e.Conversations.Upsert(conv); err != nil {
		return domain.Conversation{}, err
	}
	return conv, nil
}

// Notifications proxies the platform notification list.
func (e *Engine) Notifications(ctx context.Context) ([]domain.Notification, error) {
	return e.client.ListNotifications(ctx)
}

func (e *Engine) MarkNotificationRead(ctx context.Context, id string) error {
	return e.client.MarkNotificationRead(ctx, id)
}

func (e *Engine) MarkAllNotificationsRead(ctx context.Context) error {
	return e.client.MarkAllNotificationsRead(ctx)
}

func (e *Engine) DeleteNotification(ctx context.Context, id string) error {
	return e.client.DeleteNotification(ctx, id)
}
