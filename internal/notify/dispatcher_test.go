package notify

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type stubChannel struct {
	name string
	err  error

	mu   sync.Mutex
	got  []Event
	slow time.Duration
}

func (s *stubChannel) Name() string { return s.name }

func (s *stubChannel) Send(ctx context.Context, evt Event) error {
	if s.slow > 0 {
		select {
		case <-time.After(s.slow):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	s.mu.Lock()
	s.got = append(s.got, evt)
	s.mu.Unlock()
	return s.err
}

func (s *stubChannel) received() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Event, len(s.got))
	copy(out, s.got)
	return out
}

func TestDispatchDeliversToAllChannels(t *testing.T) {
	telegram := &stubChannel{name: "telegram"}
	email := &stubChannel{name: "email"}
	d := NewDispatcher(time.Second, telegram, email)

	evt := Event{OrderID: "ab12cd34", Status: "confirmed", Message: "Votre commande est confirmée."}
	d.Dispatch(evt)
	d.Wait()

	assert.Equal(t, []Event{evt}, telegram.received())
	assert.Equal(t, []Event{evt}, email.received())
}

func TestChannelFailureDoesNotBlockOthers(t *testing.T) {
	failing := &stubChannel{name: "telegram", err: errors.New("api injoignable")}
	email := &stubChannel{name: "email"}
	d := NewDispatcher(time.Second, failing, email)

	// Dispatch ne retourne rien : un canal en panne ne remonte jamais
	// à l'appelant ni n'empêche les autres livraisons
	d.Dispatch(Event{OrderID: "ab12cd34", Status: "shipped"})
	d.Wait()

	assert.Len(t, email.received(), 1)
	assert.Len(t, failing.received(), 1)
}

func TestMissingRecipientIsSkippedNotFailed(t *testing.T) {
	skipping := &stubChannel{name: "email", err: ErrNoRecipient}
	d := NewDispatcher(time.Second, skipping)

	d.Dispatch(Event{OrderID: "ab12cd34", Status: "delivered"})
	d.Wait()

	assert.Len(t, skipping.received(), 1)
}

func TestSlowChannelIsBounded(t *testing.T) {
	slow := &stubChannel{name: "telegram", slow: 500 * time.Millisecond}
	d := NewDispatcher(20*time.Millisecond, slow)

	start := time.Now()
	d.Dispatch(Event{OrderID: "ab12cd34"})
	d.Wait()

	// Le délai borné coupe la livraison bien avant les 500ms du canal
	assert.Less(t, time.Since(start), 400*time.Millisecond)
	assert.Empty(t, slow.received())
}

func TestDispatchWithoutChannels(t *testing.T) {
	d := NewDispatcher(time.Second)
	d.Dispatch(Event{OrderID: "ab12cd34"})
	d.Wait()
}
