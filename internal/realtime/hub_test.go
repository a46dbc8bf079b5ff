package realtime

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/careercoach-backend/internal/platform/logger"
)

func recvMessage(t *testing.T, ch <-chan SSEMessage, timeout time.Duration) SSEMessage {
	t.Helper()
	select {
	case msg := <-ch:
		return msg
	case <-time.After(timeout):
		t.Fatalf("timed out waiting for SSE message")
	}
	return SSEMessage{}
}

func TestSSEHubDeliversInOrderPerChannel(t *testing.T) {
	hub := NewSSEHub(logger.Nop())
	userID := uuid.New()
	channel := UserChannel(userID)

	client := hub.NewSSEClient(userID)
	hub.AddChannel(client, channel)
	other := hub.NewSSEClient(uuid.New())
	hub.AddChannel(other, UserChannel(other.UserID))

	hub.Broadcast(SSEMessage{Channel: channel, Event: SSEEventGoalsUpdated, Data: map[string]any{"seq": 1}})
	hub.Broadcast(SSEMessage{Channel: channel, Event: SSEEventBaselineComplete, Data: map[string]any{"seq": 2}})

	if got := recvMessage(t, client.Outbound, time.Second); got.Event != SSEEventGoalsUpdated {
		t.Fatalf("first event: want=%s got=%s", SSEEventGoalsUpdated, got.Event)
	}
	if got := recvMessage(t, client.Outbound, time.Second); got.Event != SSEEventBaselineComplete {
		t.Fatalf("second event: want=%s got=%s", SSEEventBaselineComplete, got.Event)
	}
	select {
	case msg := <-other.Outbound:
		t.Fatalf("other user received %v", msg)
	default:
	}

	hub.CloseClient(client)
	if n := hub.Subscribers(channel); n != 0 {
		t.Fatalf("subscribers after close: want=0 got=%d", n)
	}
	if _, ok := <-client.Outbound; ok {
		t.Fatalf("outbound should be closed after CloseClient")
	}
	select {
	case <-client.Done():
	default:
		t.Fatalf("Done should be closed after CloseClient")
	}
	hub.CloseClient(client)
}

func TestSSEHubBroadcastDoesNotBlockOnFullClient(t *testing.T) {
	hub := NewSSEHub(logger.Nop())
	client := hub.NewSSEClient(uuid.New())
	channel := UserChannel(client.UserID)
	hub.AddChannel(client, channel)

	done := make(chan struct{})
	go func() {
		for i := 0; i < clientBuffer*3; i++ {
			hub.Broadcast(SSEMessage{Channel: channel, Event: SSEEventGoalsUpdated})
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("Broadcast blocked on a full client")
	}
	if len(client.Outbound) != clientBuffer {
		t.Fatalf("buffered: want=%d got=%d", clientBuffer, len(client.Outbound))
	}
}

func TestSSEHubServeHTTPWritesEvents(t *testing.T) {
	hub := NewSSEHub(logger.Nop())
	client := hub.NewSSEClient(uuid.New())
	channel := UserChannel(client.UserID)
	hub.AddChannel(client, channel)
	hub.Broadcast(SSEMessage{Channel: channel, Event: SSEEventGoalsUpdated, Data: map[string]any{"kind": "weekly"}})

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	req := httptest.NewRequest(http.MethodGet, "/stream", nil).WithContext(ctx)
	rec := httptest.NewRecorder()
	hub.ServeHTTP(rec, req, client)

	body := rec.Body.String()
	if !strings.Contains(body, "event: GoalsUpdated") || !strings.Contains(body, `"kind":"weekly"`) {
		t.Fatalf("unexpected stream body: %q", body)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("content type: %q", ct)
	}
}

func TestUserChannelRoundTrip(t *testing.T) {
	id := uuid.New()
	got, ok := UserFromChannel(UserChannel(id))
	if !ok || got != id {
		t.Fatalf("UserFromChannel: got=%s ok=%v", got, ok)
	}
	if _, ok := UserFromChannel("sse"); ok {
		t.Fatalf("non-user channel should not parse")
	}
}
