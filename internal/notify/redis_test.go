package notify

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
)

func TestRedisNotifyPublishesEvent(t *testing.T) {
	mr := miniredis.RunT(t)

	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	defer client.Close()

	sub := client.Subscribe(context.Background(), RedisDefaultChannel)
	defer sub.Close()
	msgs := sub.Channel()

	notifier := newRedisFromClient(client, RedisConfig{})
	defer notifier.Close()

	if err := notifier.Notify(context.Background(), sampleEvent()); err != nil {
		t.Fatalf("Notify: %v", err)
	}

	msg := <-msgs
	var got RunCompletedEvent
	if err := json.Unmarshal([]byte(msg.Payload), &got); err != nil {
		t.Fatalf("unmarshal published payload: %v", err)
	}
	if got.TaskID != "task-1" {
		t.Errorf("got.TaskID = %q, want task-1", got.TaskID)
	}
}

func TestRedisNotifyUsesConfiguredChannel(t *testing.T) {
	mr := miniredis.RunT(t)

	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	defer client.Close()

	sub := client.Subscribe(context.Background(), "custom-channel")
	defer sub.Close()
	msgs := sub.Channel()

	notifier := newRedisFromClient(client, RedisConfig{Channel: "custom-channel"})
	defer notifier.Close()

	if err := notifier.Notify(context.Background(), sampleEvent()); err != nil {
		t.Fatalf("Notify: %v", err)
	}
	<-msgs
}

func TestNewRedisRejectsEmptyURL(t *testing.T) {
	if _, err := NewRedis(RedisConfig{}); err == nil {
		t.Fatal("expected an error for an empty URL")
	}
}

func TestNewRedisRejectsInvalidURL(t *testing.T) {
	if _, err := NewRedis(RedisConfig{URL: "not-a-redis-url"}); err == nil {
		t.Fatal("expected an error for an invalid URL")
	}
}

func TestRedisNotifyUsesDefaultTimeoutWhenUnset(t *testing.T) {
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	defer client.Close()

	notifier := newRedisFromClient(client, RedisConfig{})
	if notifier.config.Timeout != RedisDefaultTimeout {
		t.Errorf("Timeout = %v, want %v", notifier.config.Timeout, RedisDefaultTimeout)
	}
}
