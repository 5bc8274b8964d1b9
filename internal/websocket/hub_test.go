package chatws

import (
	"testing"
	"time"

	"github.com/ENGLISHWITHTOTO/totobackend/internal/models"
	"github.com/ENGLISHWITHTOTO/totobackend/internal/services"
)

func waitForShutdown(t *testing.T, client *Client) {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		client.mu.Lock()
		closed := client.closed
		client.mu.Unlock()
		if closed {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("timed out waiting for client shutdown")
}

func fillSendBuffer(t *testing.T, client *Client) {
	t.Helper()

	for i := 0; i < cap(client.send); i++ {
		if !client.trySend([]byte("backlog")) {
			t.Fatalf("buffer filled early at %d", i)
		}
	}
}

func TestErrorWriteSurvivesUnregisteredClient(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	client := NewClient(hub, nil, "42")
	hub.Register(client)

	// A stalled writer: the buffer is full, so the error write cannot be
	// queued and the client gets unregistered.
	fillSendBuffer(t, client)
	writeError(client, "invalid message payload")
	waitForShutdown(t, client)

	// The connection is still up and keeps sending garbage. Further error
	// writes must be dropped, not crash the read goroutine.
	writeError(client, "invalid message payload")
	writeError(client, "unsupported message type")
}

func TestBroadcastDropsStalledClientWithoutBreakingErrorWrites(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	client := NewClient(hub, nil, "7")
	hub.Register(client)
	fillSendBuffer(t, client)

	hub.BroadcastDelivery(&services.ChatDelivery{
		Message: &models.Message{
			ID:             1,
			ConversationID: 5,
			SenderID:       7,
			Content:        "hello",
			CreatedAt:      time.Now().UTC(),
		},
		RecipientIDs: []int64{9},
	})
	waitForShutdown(t, client)

	writeError(client, "invalid conversation id")
}

func TestTrySendReportsFullAndClosed(t *testing.T) {
	client := NewClient(NewHub(), nil, "1")

	fillSendBuffer(t, client)
	if client.trySend([]byte("overflow")) {
		t.Fatal("expected trySend to report a full buffer")
	}

	client.closeSend()
	if client.trySend([]byte("late")) {
		t.Fatal("expected trySend to report a shutdown client")
	}

	// Repeated shutdown is a no-op.
	client.closeSend()
}
