package scan

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/mirai-garden/plant-backend/internal/shared"
	"github.com/redis/go-redis/v9"
)

const DefaultProgressTTL = time.Hour

type State string

const (
	StateIdle            State = "idle"
	StateEncoding        State = "encoding"
	StateIdentifying     State = "identifying"
	StateDetailLookup    State = "detail_lookup"
	StateHealthAssessing State = "health_assessing"
	StateMerging         State = "merging"
	StatePersisting      State = "persisting"
	StateDone            State = "done"
	StateFailed          State = "failed"
)

func (s State) Terminal() bool {
	return s == StateDone || s == StateFailed
}

type Progress struct {
	ScanID    string    `json:"scan_id"`
	UserID    string    `json:"user_id"`
	State     State     `json:"state"`
	Error     string    `json:"error,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Keys are scoped by owner so two users picking the same scan id never share state.
func progressKey(userID, scanID string) string {
	return "scan:" + userID + ":" + scanID + ":progress"
}

func progressChannel(userID, scanID string) string {
	return "scan:" + userID + ":" + scanID + ":events"
}

type ProgressRecorder interface {
	Record(ctx context.Context, p *Progress) error
}

type ProgressStore interface {
	ProgressRecorder
	Get(ctx context.Context, userID, scanID string) (*Progress, error)
	Watch(ctx context.Context, userID, scanID string) (<-chan *Progress, error)
	Delete(ctx context.Context, userID, scanID string) error
}

// ProgressTracker keeps the latest state of each scan in redis and publishes
// every transition on a per-scan channel.
type ProgressTracker struct {
	redis *redis.Client
	ttl   time.Duration
}

func NewProgressTracker(redisClient *redis.Client, ttl time.Duration) *ProgressTracker {
	if ttl == 0 {
		ttl = DefaultProgressTTL
	}
	return &ProgressTracker{
		redis: redisClient,
		ttl:   ttl,
	}
}

func (t *ProgressTracker) Record(ctx context.Context, p *Progress) error {
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = time.Now().UTC()
	}
	data, err := json.Marshal(p)
	if err != nil {
		return err
	}

	pipe := t.redis.TxPipeline()
	pipe.Set(ctx, progressKey(p.UserID, p.ScanID), data, t.ttl)
	pipe.Publish(ctx, progressChannel(p.UserID, p.ScanID), data)
	_, err = pipe.Exec(ctx)
	return err
}

func (t *ProgressTracker) Get(ctx context.Context, userID, scanID string) (*Progress, error) {
	data, err := t.redis.Get(ctx, progressKey(userID, scanID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, shared.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	var p Progress
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// Watch streams published transitions of a user's scan until ctx is done.
func (t *ProgressTracker) Watch(ctx context.Context, userID, scanID string) (<-chan *Progress, error) {
	sub := t.redis.Subscribe(ctx, progressChannel(userID, scanID))
	if _, err := sub.Receive(ctx); err != nil {
		sub.Close()
		return nil, err
	}

	out := make(chan *Progress, 8)
	go func() {
		defer close(out)
		defer sub.Close()

		msgs := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				var p Progress
				if err := json.Unmarshal([]byte(msg.Payload), &p); err != nil {
					continue
				}
				select {
				case out <- &p:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out, nil
}

func (t *ProgressTracker) Delete(ctx context.Context, userID, scanID string) error {
	return t.redis.Del(ctx, progressKey(userID, scanID)).Err()
}
