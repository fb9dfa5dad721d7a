package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// Key pattern: notify:seen:{user_id}:{notification_id}, TTL 7 days.
// Keeping the seen set in Redis means a restarted engine does not re-toast
// notifications it already delivered in a previous session.

const seenTTL = 7 * 24 * time.Hour

// SeenStore is the Redis-backed dedupe set for dispatched notifications.
type SeenStore struct {
	client *goredis.Client
	userID string
}

func NewSeenStore(client *goredis.Client, userID string) *SeenStore {
	return &SeenStore{client: client, userID: userID}
}

// MarkIfNew records the notification id and reports whether it was unseen.
func (s *SeenStore) MarkIfNew(ctx context.Context, id string) (bool, error) {
	key := fmt.Sprintf("notify:seen:%s:%s", s.userID, id)
	set, err := s.client.SetNX(ctx, key, 1, seenTTL).Result()
	if err != nil {
		return false, err
	}
	return set, nil
}
