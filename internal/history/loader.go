package history

import (
	"context"
	"sync"

	"collabdesk/internal/api"
	"collabdesk/internal/domain"
	"collabdesk/internal/store"
	collab_errors "collabdesk/pkg/errors"
	"collabdesk/pkg/logger"
)

const defaultPageSize = 50

// Fetcher is the slice of the platform API the loader needs.
type Fetcher interface {
	ListMessages(ctx context.Context, conversationID, before string, limit int) (api.MessagePage, error)
}

// Page is one resolved history page, oldest to newest.
type Page struct {
	Messages   []domain.Message
	NextCursor string
	HasMore    bool
	// Added is how many messages were new to the window; re-requesting a
	// cursor already merged yields Added == 0.
	Added int
}

// Loader pages backwards through a conversation's history. A conversation
// switch cancels the in-flight request for the conversation being left, so
// a stale response can never land in the wrong window. Pages are merged
// into the message store deduplicated by id.
type Loader struct {
	messages *store.MessageStore
	remote   Fetcher
	self     domain.Identity
	logger   *logger.Logger

	mu       sync.Mutex
	inflight map[string]*pending
}

type pending struct {
	cancel context.CancelFunc
}

func NewLoader(messages *store.MessageStore, remote Fetcher, self domain.Identity, l *logger.Logger) *Loader {
	return &Loader{
		messages: messages,
		remote:   remote,
		self:     self,
		logger:   l,
		inflight: make(map[string]*pending),
	}
}

// LoadPage fetches the page of messages strictly older than cursor and
// merges it into the window. An empty cursor loads the newest page.
func (l *Loader) LoadPage(ctx context.Context, conversationID, cursor string, limit int) (Page, error) {
	if conversationID == "" {
		return Page{}, collab_errors.ErrInvalidInput
	}
	if limit <= 0 {
		limit = defaultPageSize
	}

	ctx, cancel := context.WithCancel(ctx)
	req := &pending{cancel: cancel}
	l.mu.Lock()
	if prev, ok := l.inflight[conversationID]; ok {
		prev.cancel()
	}
	l.inflight[conversationID] = req
	l.mu.Unlock()
	defer func() {
		cancel()
		l.mu.Lock()
		if l.inflight[conversationID] == req {
			delete(l.inflight, conversationID)
		}
		l.mu.Unlock()
	}()

	page, err := l.remote.ListMessages(ctx, conversationID, cursor, limit)
	if err != nil {
		if ctx.Err() != nil {
			return Page{}, collab_errors.ErrRequestCancelled
		}
		return Page{}, err
	}
	// A cancellation that raced the response still must not merge.
	if ctx.Err() != nil {
		return Page{}, collab_errors.ErrRequestCancelled
	}

	msgs := make([]domain.Message, 0, len(page.Messages))
	for _, wire := range page.Messages {
		msgs = append(msgs, wire.ToDomain(conversationID, l.self.ID))
	}
	if page.Order == "desc" {
		reverse(msgs)
	}

	added := l.messages.MergeOlder(conversationID, msgs)
	if added < len(msgs) {
		l.logger.Debugf("history page for %s had %d duplicates", conversationID, len(msgs)-added)
	}
	return Page{
		Messages:   msgs,
		NextCursor: page.NextCursor,
		HasMore:    page.HasMore,
		Added:      added,
	}, nil
}

// Cancel aborts the in-flight page load for a conversation, if any.
func (l *Loader) Cancel(conversationID string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if req, ok := l.inflight[conversationID]; ok {
		req.cancel()
		delete(l.inflight, conversationID)
	}
}

// Switch cancels every in-flight load except the conversation being
// navigated to. Called on conversation selection.
func (l *Loader) Switch(conversationID string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for id, req := range l.inflight {
		if id != conversationID {
			req.cancel()
			delete(l.inflight, id)
		}
	}
}

func reverse(msgs []domain.Message) {
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
}
