package typing

import (
	"sync"
	"time"

	"collabdesk/internal/events"
	"collabdesk/internal/store"
	collab_errors "collabdesk/pkg/errors"
	pkgevents "collabdesk/pkg/events"
	"collabdesk/pkg/logger"
)

const (
	// DefaultDebounce is the quiet period after the last keystroke before
	// the local typing flag clears.
	DefaultDebounce = 2 * time.Second
	// DefaultRemoteTTL bounds how long a remote typing signal stays alive
	// without an explicit stop. A lost stop signal cannot leave the flag
	// stuck forever.
	DefaultRemoteTTL = 6 * time.Second
)

// Coordinator tracks the local "I am typing" signal (debounced) and the
// remote "they are typing" signal (time-boxed).
type Coordinator struct {
	conversations *store.ConversationStore
	bus           *pkgevents.Bus
	logger        *logger.Logger
	debounce      time.Duration
	remoteTTL     time.Duration

	mu           sync.Mutex
	localActive  map[string]bool
	localTimers  map[string]*time.Timer
	remoteTimers map[string]*time.Timer
}

func NewCoordinator(conversations *store.ConversationStore, bus *pkgevents.Bus, l *logger.Logger, debounce, remoteTTL time.Duration) *Coordinator {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if remoteTTL <= 0 {
		remoteTTL = DefaultRemoteTTL
	}
	return &Coordinator{
		conversations: conversations,
		bus:           bus,
		logger:        l,
		debounce:      debounce,
		remoteTTL:     remoteTTL,
		localActive:   make(map[string]bool),
		localTimers:   make(map[string]*time.Timer),
		remoteTimers:  make(map[string]*time.Timer),
	}
}

// Keystroke registers local typing activity. The first keystroke starts the
// typing window and publishes typing.started; each further keystroke resets
// the debounce timer. After the quiet period typing.stopped is published.
func (c *Coordinator) Keystroke(conversationID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.localActive[conversationID] {
		c.localActive[conversationID] = true
		c.publish(events.EventTypingStarted, conversationID)
	}
	if timer, ok := c.localTimers[conversationID]; ok {
		timer.Stop()
	}
	c.localTimers[conversationID] = time.AfterFunc(c.debounce, func() {
		c.stopLocal(conversationID)
	})
}

// StopLocal ends the local typing window immediately (e.g. the message was
// sent, which implies typing stopped).
func (c *Coordinator) StopLocal(conversationID string) {
	c.stopLocal(conversationID)
}

func (c *Coordinator) stopLocal(conversationID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if timer, ok := c.localTimers[conversationID]; ok {
		timer.Stop()
		delete(c.localTimers, conversationID)
	}
	if c.localActive[conversationID] {
		delete(c.localActive, conversationID)
		c.publish(events.EventTypingStopped, conversationID)
	}
}

// LocalTyping reports whether the local typing window is open.
func (c *Coordinator) LocalTyping(conversationID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.localActive[conversationID]
}

// HandleRemote applies an incoming typing signal. A started signal sets
// the conversation's typing flag and schedules an auto-clear; an explicit
// stop clears immediately.
func (c *Coordinator) HandleRemote(conversationID string, started bool) {
	c.mu.Lock()
	if timer, ok := c.remoteTimers[conversationID]; ok {
		timer.Stop()
		delete(c.remoteTimers, conversationID)
	}
	if started {
		c.remoteTimers[conversationID] = time.AfterFunc(c.remoteTTL, func() {
			c.clearRemote(conversationID)
		})
	}
	c.mu.Unlock()

	c.setTyping(conversationID, started)
}

func (c *Coordinator) clearRemote(conversationID string) {
	c.mu.Lock()
	delete(c.remoteTimers, conversationID)
	c.mu.Unlock()
	c.setTyping(conversationID, false)
}

func (c *Coordinator) setTyping(conversationID string, typing bool) {
	if err := c.conversations.SetTyping(conversationID, typing); err != nil {
		if err != collab_errors.ErrNotFound {
			c.logger.Warnf("set typing on %s: %s", conversationID, err)
		}
		return
	}
	c.bus.Publish(pkgevents.Event{
		Kind:      events.EventConversationUpdated,
		Timestamp: time.Now(),
		Payload:   conversationID,
	})
}

// Stop cancels all pending timers.
func (c *Coordinator) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for id, timer := range c.localTimers {
		timer.Stop()
		delete(c.localTimers, id)
	}
	for id, timer := range c.remoteTimers {
		timer.Stop()
		delete(c.remoteTimers, id)
	}
}

func (c *Coordinator) publish(kind, conversationID string) {
	c.bus.Publish(pkgevents.Event{
		Kind:      kind,
		Timestamp: time.Now(),
		Payload:   conversationID,
	})
}
