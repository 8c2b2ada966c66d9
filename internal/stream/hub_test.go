package stream

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func expectMessage(t *testing.T, c *Client, want string) {
	t.Helper()
	select {
	case msg := <-c.Send:
		if string(msg) != want {
			t.Fatalf("unexpected message %q, want %q", msg, want)
		}
	case <-time.After(500 * time.Millisecond):
		t.Fatalf("timeout waiting for %q", want)
	}
}

func expectSilence(t *testing.T, c *Client) {
	t.Helper()
	select {
	case msg := <-c.Send:
		t.Fatalf("unexpected message %q", msg)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHubBroadcast(t *testing.T) {
	hub := NewHub(nil)
	client := hub.Register("main")
	defer hub.Unregister(client)
	other := hub.Register("other")
	defer hub.Unregister(other)

	hub.Broadcast("main", []byte("hello"))

	expectMessage(t, client, "hello")
	expectSilence(t, other)
}

func TestHubDropsWhenBufferFull(t *testing.T) {
	hub := NewHub(nil)
	client := hub.Register("main")
	defer hub.Unregister(client)

	for i := 0; i < cap(client.Send)+10; i++ {
		hub.Broadcast("main", []byte("x"))
	}
	if len(client.Send) != cap(client.Send) {
		t.Fatalf("expected full buffer")
	}
}

func TestHubHelpers(t *testing.T) {
	ch := redisChannel("abc")
	if ch != "mapty:abc:render" {
		t.Fatalf("unexpected channel %q", ch)
	}
	if topicFromChannel(ch) != "abc" {
		t.Fatalf("unexpected topic")
	}
	if topicFromChannel("bad") != "" {
		t.Fatalf("expected empty topic")
	}
}

func TestUnregisterCloses(t *testing.T) {
	hub := NewHub(nil)
	client := hub.Register("main")
	hub.Unregister(client)
	_, ok := <-client.Send
	if ok {
		t.Fatalf("expected channel closed")
	}
	if hub.Clients("main") != 0 {
		t.Fatalf("expected no clients")
	}
}

func TestHubRedisFanOut(t *testing.T) {
	s := miniredis.RunT(t)
	rdbA := redis.NewClient(&redis.Options{Addr: s.Addr()})
	defer rdbA.Close()
	rdbB := redis.NewClient(&redis.Options{Addr: s.Addr()})
	defer rdbB.Close()

	hubA := NewHub(rdbA)
	defer hubA.Close()
	hubB := NewHub(rdbB)
	defer hubB.Close()
	<-hubA.Ready()
	<-hubB.Ready()

	local := hubA.Register("main")
	defer hubA.Unregister(local)
	remote := hubB.Register("main")
	defer hubB.Unregister(remote)

	hubA.Broadcast("main", []byte("ping"))

	expectMessage(t, local, "ping")
	expectMessage(t, remote, "ping")
	// the publishing hub ignores its own echo
	expectSilence(t, local)
}

func TestHubRedisPublishError(t *testing.T) {
	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	server.Close()
	defer client.Close()

	hub := NewHub(client)
	defer hub.Close()
	<-hub.Ready()

	local := hub.Register("main")
	defer hub.Unregister(local)

	hub.Broadcast("main", []byte("ping"))
	expectMessage(t, local, "ping")
}
