package memory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ebchain/blockchain/foundation/pubsub"
	"github.com/ebchain/blockchain/foundation/pubsub/memory"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

func receive(t *testing.T, ch <-chan pubsub.Message) (pubsub.Message, bool) {
	t.Helper()

	select {
	case msg, ok := <-ch:
		return msg, ok
	case <-time.After(time.Second):
		t.Fatalf("Should receive a message within a second.")
		return pubsub.Message{}, false
	}
}

// =============================================================================

func Test_PublishSubscribe(t *testing.T) {
	t.Log("Given the need to share messages between nodes in one process.")
	{
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		b := memory.New()
		defer b.Close()

		blocks, err := b.Subscribe(ctx, pubsub.ChannelBlock)
		if err != nil {
			t.Fatalf("\t%s\tShould be able to subscribe: %s", failed, err)
		}
		both, err := b.Subscribe(ctx, pubsub.ChannelBlock, pubsub.ChannelTransaction)
		if err != nil {
			t.Fatalf("\t%s\tShould be able to subscribe: %s", failed, err)
		}
		t.Logf("\t%s\tShould be able to subscribe.", success)

		if err := b.Publish(ctx, pubsub.ChannelTransaction, []byte("tx")); err != nil {
			t.Fatalf("\t%s\tShould be able to publish: %s", failed, err)
		}
		if err := b.Publish(ctx, pubsub.ChannelBlock, []byte("block")); err != nil {
			t.Fatalf("\t%s\tShould be able to publish: %s", failed, err)
		}
		t.Logf("\t%s\tShould be able to publish.", success)

		msg, _ := receive(t, blocks)
		if msg.Channel != pubsub.ChannelBlock || string(msg.Payload) != "block" {
			t.Fatalf("\t%s\tShould only receive the channels subscribed to, got %+v.", failed, msg)
		}
		t.Logf("\t%s\tShould only receive the channels subscribed to.", success)

		first, _ := receive(t, both)
		second, _ := receive(t, both)
		if string(first.Payload) != "tx" || string(second.Payload) != "block" {
			t.Fatalf("\t%s\tShould receive every channel subscribed to.", failed)
		}
		t.Logf("\t%s\tShould receive every channel subscribed to.", success)

		cancel()
		if _, ok := receive(t, blocks); ok {
			t.Fatalf("\t%s\tShould close the subscription when the context is cancelled.", failed)
		}
		t.Logf("\t%s\tShould close the subscription when the context is cancelled.", success)
	}
}

func Test_Close(t *testing.T) {
	t.Log("Given the need to stop the message bus.")
	{
		b := memory.New()

		ch, err := b.Subscribe(context.Background(), pubsub.ChannelBlock)
		if err != nil {
			t.Fatalf("\t%s\tShould be able to subscribe: %s", failed, err)
		}

		if err := b.Close(); err != nil {
			t.Fatalf("\t%s\tShould be able to close: %s", failed, err)
		}

		if _, ok := receive(t, ch); ok {
			t.Fatalf("\t%s\tShould close every subscription.", failed)
		}
		t.Logf("\t%s\tShould close every subscription.", success)

		if err := b.Publish(context.Background(), pubsub.ChannelBlock, nil); !errors.Is(err, memory.ErrClosed) {
			t.Fatalf("\t%s\tShould not publish after close, got %v.", failed, err)
		}
		t.Logf("\t%s\tShould not publish after close.", success)
	}
}
