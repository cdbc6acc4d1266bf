package websocket

import (
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockClient is a test double for Client that captures sent messages
type mockClient struct {
	id       string
	messages [][]byte
	mu       sync.Mutex
	closed   bool
}

func newMockClient(id string) *mockClient {
	return &mockClient{
		id:       id,
		messages: make([][]byte, 0),
	}
}

func (m *mockClient) ID() string {
	return m.id
}

func (m *mockClient) Send(data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClientClosed
	}
	m.messages = append(m.messages, data)
	return nil
}

func (m *mockClient) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

func (m *mockClient) IsClosed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

func (m *mockClient) GetMessages() [][]byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := make([][]byte, len(m.messages))
	copy(copied, m.messages)
	return copied
}

func TestHub_RegisterUnregister(t *testing.T) {
	hub := NewHub()

	client1 := newMockClient("client-1")
	client2 := newMockClient("client-2")

	hub.Register(client1)
	hub.Register(client2)
	assert.Equal(t, 2, hub.ClientCount())

	hub.Unregister(client1)
	assert.Equal(t, 1, hub.ClientCount())

	hub.Unregister(client2)
	assert.Equal(t, 0, hub.ClientCount())
}

func TestHub_Broadcast_FanOut(t *testing.T) {
	hub := NewHub()

	clients := make([]*mockClient, 5)
	for i := range clients {
		clients[i] = newMockClient(fmt.Sprintf("client-%d", i))
		hub.Register(clients[i])
	}

	hub.Broadcast(TransactionUpdated(map[string]interface{}{"id": "tx-1"}))

	assert.Eventually(t, func() bool {
		for _, c := range clients {
			if len(c.GetMessages()) != 1 {
				return false
			}
		}
		return true
	}, time.Second, 5*time.Millisecond)
}

func TestHub_Broadcast_PreservesOrderPerClient(t *testing.T) {
	hub := NewHub()
	client := newMockClient("ordered")
	hub.Register(client)

	for i := 0; i < 20; i++ {
		hub.Broadcast(TransactionCreated(map[string]interface{}{"id": fmt.Sprint(i)}))
		hub.Broadcast(TransactionDeleted(fmt.Sprint(i)))
	}

	messages := client.GetMessages()
	require.Len(t, messages, 40)
	for i, raw := range messages {
		var event struct {
			Type    string            `json:"type"`
			Payload map[string]string `json:"payload"`
		}
		require.NoError(t, json.Unmarshal(raw, &event))

		wantType := "transaction.created"
		if i%2 == 1 {
			wantType = "transaction.deleted"
		}
		assert.Equal(t, wantType, event.Type, "message %d", i)
		assert.Equal(t, fmt.Sprint(i/2), event.Payload["id"], "message %d", i)
	}
}

func TestHub_Broadcast_SkipsUnregistered(t *testing.T) {
	hub := NewHub()
	kept := newMockClient("kept")
	gone := newMockClient("gone")
	hub.Register(kept)
	hub.Register(gone)
	hub.Unregister(gone)

	hub.Broadcast(CategoryDeleted("9"))

	assert.Eventually(t, func() bool { return len(kept.GetMessages()) == 1 }, time.Second, 5*time.Millisecond)
	assert.Empty(t, gone.GetMessages())
}

func TestHub_ConcurrentAccess(t *testing.T) {
	hub := NewHub()

	var wg sync.WaitGroup
	clientCount := 50

	clients := make([]*mockClient, clientCount)
	for i := 0; i < clientCount; i++ {
		clients[i] = newMockClient(fmt.Sprintf("client-%d", i))
	}

	for i := 0; i < clientCount; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			hub.Register(clients[idx])
		}(i)
	}
	wg.Wait()
	assert.Equal(t, clientCount, hub.ClientCount())

	for i := 0; i < clientCount; i++ {
		wg.Add(2)
		go func(idx int) {
			defer wg.Done()
			hub.Broadcast(TransactionCreated(map[string]interface{}{"id": fmt.Sprint(idx)}))
		}(i)
		go func(idx int) {
			defer wg.Done()
			hub.Unregister(clients[idx])
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 0, hub.ClientCount())
}

func TestHub_UnregisterNonexistent(t *testing.T) {
	hub := NewHub()

	require.NotPanics(t, func() {
		hub.Unregister(newMockClient("client-1"))
	})
}

func TestHub_BroadcastWithNoClients(t *testing.T) {
	hub := NewHub()

	require.NotPanics(t, func() {
		hub.Broadcast(DataReset())
	})
}

func TestHub_CloseAll(t *testing.T) {
	hub := NewHub()
	c1 := newMockClient("a")
	c2 := newMockClient("b")
	hub.Register(c1)
	hub.Register(c2)

	hub.CloseAll()

	assert.Equal(t, 0, hub.ClientCount())
	assert.True(t, c1.IsClosed())
	assert.True(t, c2.IsClosed())
}
