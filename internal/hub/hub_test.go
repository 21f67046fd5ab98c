package hub

import (
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sensorbridge/sensorbridge/internal/logging"
	"github.com/sensorbridge/sensorbridge/internal/models"
)

type fakeConn struct {
	mu         sync.Mutex
	writes     [][]byte
	failWrites bool

	incoming  chan []byte
	closed    chan struct{}
	closeOnce sync.Once
}

func newFakeConn() *fakeConn {
	return &fakeConn{
		incoming: make(chan []byte, 8),
		closed:   make(chan struct{}),
	}
}

func (f *fakeConn) ReadMessage() (int, []byte, error) {
	select {
	case data := <-f.incoming:
		return textMessage, data, nil
	case <-f.closed:
		return 0, nil, errors.New("connection closed")
	}
}

func (f *fakeConn) WriteMessage(_ int, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWrites {
		return errors.New("write failed")
	}
	f.writes = append(f.writes, append([]byte(nil), data...))
	return nil
}

func (f *fakeConn) Close() error {
	f.closeOnce.Do(func() { close(f.closed) })
	return nil
}

// eventTypes decodes the type field of every frame written so far
func (f *fakeConn) eventTypes() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []string
	for _, data := range f.writes {
		var msg struct {
			Type string `json:"type"`
		}
		if json.Unmarshal(data, &msg) == nil {
			out = append(out, msg.Type)
		}
	}
	return out
}

func (f *fakeConn) hasEvent(eventType string) bool {
	for _, t := range f.eventTypes() {
		if t == eventType {
			return true
		}
	}
	return false
}

func startHub(t *testing.T) *Hub {
	t.Helper()
	h := New(logging.NewDevelopment())
	go h.Run()
	t.Cleanup(h.Stop)
	return h
}

func connect(t *testing.T, h *Hub) *fakeConn {
	t.Helper()
	conn := newFakeConn()
	go h.ServeConn(conn)
	return conn
}

func TestHub_WelcomeOnConnect(t *testing.T) {
	h := startHub(t)
	conn := connect(t, h)

	require.Eventually(t, func() bool {
		return conn.hasEvent(models.EventConnected)
	}, 2*time.Second, 10*time.Millisecond)

	assert.Equal(t, 1, h.Viewers())
}

func TestHub_BroadcastReachesAllViewers(t *testing.T) {
	h := startHub(t)
	a := connect(t, h)
	b := connect(t, h)

	require.Eventually(t, func() bool {
		return a.hasEvent(models.EventConnected) && b.hasEvent(models.EventConnected)
	}, 2*time.Second, 10*time.Millisecond)

	h.Broadcast(models.NewDeviceStateEvent("led", "on"))

	require.Eventually(t, func() bool {
		return a.hasEvent(models.EventDeviceState) && b.hasEvent(models.EventDeviceState)
	}, 2*time.Second, 10*time.Millisecond)
}

func TestHub_FailingViewerDoesNotBlockOthers(t *testing.T) {
	h := startHub(t)

	bad := newFakeConn()
	bad.failWrites = true
	go h.ServeConn(bad)

	a := connect(t, h)
	b := connect(t, h)

	require.Eventually(t, func() bool {
		return a.hasEvent(models.EventConnected) && b.hasEvent(models.EventConnected)
	}, 2*time.Second, 10*time.Millisecond)

	h.Broadcast(models.NewDeviceStateEvent("led", "on"))

	require.Eventually(t, func() bool {
		return a.hasEvent(models.EventDeviceState) && b.hasEvent(models.EventDeviceState)
	}, 2*time.Second, 10*time.Millisecond)

	// the failing viewer gets dropped from the set
	require.Eventually(t, func() bool {
		return h.Viewers() == 2
	}, 2*time.Second, 10*time.Millisecond)
}

func TestHub_PingRepliesOnlyToSender(t *testing.T) {
	h := startHub(t)
	a := connect(t, h)
	b := connect(t, h)

	require.Eventually(t, func() bool {
		return a.hasEvent(models.EventConnected) && b.hasEvent(models.EventConnected)
	}, 2*time.Second, 10*time.Millisecond)

	a.incoming <- []byte(`{"type":"ping"}`)

	require.Eventually(t, func() bool {
		return a.hasEvent(models.EventPong)
	}, 2*time.Second, 10*time.Millisecond)

	assert.False(t, b.hasEvent(models.EventPong))
}

func TestHub_MalformedViewerMessageIgnored(t *testing.T) {
	h := startHub(t)
	a := connect(t, h)

	require.Eventually(t, func() bool {
		return a.hasEvent(models.EventConnected)
	}, 2*time.Second, 10*time.Millisecond)

	a.incoming <- []byte("not json")
	a.incoming <- []byte(`{"type":"ping"}`)

	require.Eventually(t, func() bool {
		return a.hasEvent(models.EventPong)
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, 1, h.Viewers())
}

func TestHub_DisconnectRemovesViewer(t *testing.T) {
	h := startHub(t)
	a := connect(t, h)

	require.Eventually(t, func() bool {
		return h.Viewers() == 1
	}, 2*time.Second, 10*time.Millisecond)

	a.Close()

	require.Eventually(t, func() bool {
		return h.Viewers() == 0
	}, 2*time.Second, 10*time.Millisecond)

	// broadcasting to an empty hub is a no-op
	h.Broadcast(models.NewDeviceStateEvent("led", "off"))
}
