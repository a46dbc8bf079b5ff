package realtime

import (
	"sync"

	"github.com/google/uuid"

	"github.com/yungbote/careercoach-backend/internal/platform/logger"
)

// SSEClient is one open stream. Outbound is closed when the client is closed.
type SSEClient struct {
	ID       uuid.UUID
	UserID   uuid.UUID
	Channels map[string]bool
	Outbound chan SSEMessage

	log       *logger.Logger
	done      chan struct{}
	closeOnce sync.Once
}

func newSSEClient(userID uuid.UUID, log *logger.Logger) *SSEClient {
	id := uuid.New()
	return &SSEClient{
		ID:       id,
		UserID:   userID,
		Channels: map[string]bool{},
		Outbound: make(chan SSEMessage, clientBuffer),
		log:      log.With("client_id", id.String(), "user_id", userID.String()),
		done:     make(chan struct{}),
	}
}

// Done is closed once the client has been closed.
func (c *SSEClient) Done() <-chan struct{} { return c.done }

// offer queues msg without blocking and reports whether it was queued.
func (c *SSEClient) offer(msg SSEMessage) bool {
	select {
	case c.Outbound <- msg:
		return true
	default:
		return false
	}
}

func (c *SSEClient) close() {
	c.closeOnce.Do(func() {
		close(c.done)
		close(c.Outbound)
	})
}
