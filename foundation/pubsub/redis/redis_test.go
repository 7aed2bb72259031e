package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/ebchain/blockchain/foundation/pubsub"
	"github.com/ebchain/blockchain/foundation/pubsub/redis"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

func Test_PublishSubscribe(t *testing.T) {
	t.Log("Given the need to share messages through redis.")
	{
		srv := miniredis.RunT(t)

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		b, err := redis.New(ctx, redis.Config{Addr: srv.Addr()})
		if err != nil {
			t.Fatalf("\t%s\tShould be able to connect: %s", failed, err)
		}
		defer b.Close()
		t.Logf("\t%s\tShould be able to connect.", success)

		subCtx, subCancel := context.WithCancel(ctx)
		defer subCancel()

		ch, err := b.Subscribe(subCtx, pubsub.ChannelBlock, pubsub.ChannelTransaction)
		if err != nil {
			t.Fatalf("\t%s\tShould be able to subscribe: %s", failed, err)
		}
		t.Logf("\t%s\tShould be able to subscribe.", success)

		if err := b.Publish(ctx, pubsub.ChannelTransaction, []byte(`{"id":"abc"}`)); err != nil {
			t.Fatalf("\t%s\tShould be able to publish: %s", failed, err)
		}
		t.Logf("\t%s\tShould be able to publish.", success)

		select {
		case msg := <-ch:
			if msg.Channel != pubsub.ChannelTransaction || string(msg.Payload) != `{"id":"abc"}` {
				t.Fatalf("\t%s\tShould receive the published message, got %+v.", failed, msg)
			}
		case <-ctx.Done():
			t.Fatalf("\t%s\tShould receive the published message in time.", failed)
		}
		t.Logf("\t%s\tShould receive the published message.", success)

		subCancel()
		select {
		case _, ok := <-ch:
			if ok {
				t.Fatalf("\t%s\tShould close the subscription.", failed)
			}
		case <-ctx.Done():
			t.Fatalf("\t%s\tShould close the subscription in time.", failed)
		}
		t.Logf("\t%s\tShould close the subscription when the context is cancelled.", success)
	}
}

func Test_Unreachable(t *testing.T) {
	t.Log("Given the need to report a redis server that can't be reached.")
	{
		srv := miniredis.RunT(t)
		addr := srv.Addr()
		srv.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if _, err := redis.New(ctx, redis.Config{Addr: addr}); err == nil {
			t.Fatalf("\t%s\tShould get back an error.", failed)
		}
		t.Logf("\t%s\tShould get back an error.", success)
	}
}
