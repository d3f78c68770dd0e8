package pubsub

import (
	"context"
	"testing"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func receive(t *testing.T, ch <-chan Change) (Change, bool) {
	t.Helper()
	select {
	case c, ok := <-ch:
		return c, ok
	case <-time.After(50 * time.Millisecond):
		return Change{}, false
	}
}

func TestMemory_SkipsOrigin(t *testing.T) {
	bus := NewMemory()
	defer bus.Close()

	writer, cancelW := bus.Subscribe("tracker")
	defer cancelW()
	reader, cancelR := bus.Subscribe("scoreboard")
	defer cancelR()

	require.NoError(t, bus.Publish(context.Background(), Change{Key: "current_match", Value: []byte("v1"), Origin: "tracker"}))

	got, ok := receive(t, reader)
	require.True(t, ok)
	assert.Equal(t, []byte("v1"), got.Value)

	_, ok = receive(t, writer)
	assert.False(t, ok, "the writer must not hear its own change")
}

func TestMemory_CancelStopsDelivery(t *testing.T) {
	bus := NewMemory()
	ch, cancel := bus.Subscribe("jury")
	cancel()
	cancel()

	require.NoError(t, bus.Publish(context.Background(), Change{Key: "k", Origin: "other"}))
	_, ok := <-ch
	assert.False(t, ok, "channel is closed after cancel")
}

func TestMemory_DropsWhenSubscriberIsSlow(t *testing.T) {
	bus := NewMemory()
	ch, cancel := bus.Subscribe("stats")
	defer cancel()

	for i := 0; i < subscriberBuffer+10; i++ {
		require.NoError(t, bus.Publish(context.Background(), Change{Key: "k", Origin: "tracker"}))
	}
	assert.Len(t, ch, subscriberBuffer)
}

func TestCodec(t *testing.T) {
	in := Change{
		Key:     "current_match",
		Value:   []byte(`{"id":"m1"}`),
		Deleted: false,
		Origin:  "tracker",
		At:      time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC),
	}
	data, err := Encode(in)
	require.NoError(t, err)

	out, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, in.Key, out.Key)
	assert.Equal(t, in.Value, out.Value)
	assert.Equal(t, in.Origin, out.Origin)
	assert.True(t, in.At.Equal(out.At))

	_, err = Decode([]byte{0xc1})
	assert.Error(t, err)
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), Options{Driver: "carrier-pigeon"})
	assert.Error(t, err)

	bus, err := Open(context.Background(), Options{})
	require.NoError(t, err)
	assert.IsType(t, &Memory{}, bus)
}

func encoded(t *testing.T, c Change) []byte {
	t.Helper()
	data, err := Encode(c)
	require.NoError(t, err)
	return data
}

func TestRedis_RelayDecodesAndDelivers(t *testing.T) {
	r := &Redis{fanout: newFanout()}
	feed, cancel := r.Subscribe("scoreboard")
	defer cancel()

	ch := make(chan *redis.Message, 3)
	ch <- &redis.Message{Channel: DefaultTopic, Payload: "not msgpack"}
	ch <- &redis.Message{Channel: DefaultTopic, Payload: string(encoded(t, Change{Key: "current_match", Value: []byte("v1"), Origin: "tracker"}))}
	ch <- &redis.Message{Channel: DefaultTopic, Payload: string(encoded(t, Change{Key: "current_match", Value: []byte("own"), Origin: "scoreboard"}))}
	close(ch)
	r.relay(context.Background(), ch)

	got, ok := receive(t, feed)
	require.True(t, ok)
	assert.Equal(t, "tracker", got.Origin)
	assert.Equal(t, []byte("v1"), got.Value)

	_, ok = receive(t, feed)
	assert.False(t, ok, "garbage and the subscriber's own change are not delivered")
}

func TestRedis_RelayStopsWithContext(t *testing.T) {
	r := &Redis{fanout: newFanout()}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan struct{})
	go func() {
		r.relay(ctx, make(chan *redis.Message))
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("relay did not stop after cancellation")
	}
}

func TestNATS_HandleDecodesAndDelivers(t *testing.T) {
	n := &NATS{fanout: newFanout()}
	feed, cancel := n.Subscribe("jury")
	defer cancel()

	n.handle(&nats.Msg{Subject: DefaultTopic, Data: []byte{0xc1}})
	_, ok := receive(t, feed)
	assert.False(t, ok)

	n.handle(&nats.Msg{Subject: DefaultTopic, Data: encoded(t, Change{Key: "match_history", Value: []byte("[]"), Origin: "tracker"})})
	got, ok := receive(t, feed)
	require.True(t, ok)
	assert.Equal(t, "match_history", got.Key)
}

func TestGCP_HandleDecodesAndDelivers(t *testing.T) {
	g := &GCP{fanout: newFanout()}
	feed, cancel := g.Subscribe("stats")
	defer cancel()

	g.handle("msg-1", []byte("garbage"))
	_, ok := receive(t, feed)
	assert.False(t, ok)

	g.handle("msg-2", encoded(t, Change{Key: "current_match", Deleted: true, Origin: "tracker"}))
	got, ok := receive(t, feed)
	require.True(t, ok)
	assert.True(t, got.Deleted)
}
