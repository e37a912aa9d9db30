package notify

import (
	"context"
	"fmt"
	"io"
	"regexp"
	"sync"
)

// Outbox keeps sent messages in memory. It backs the development console sender
// and lets tests read the code a voter would have received.
type Outbox struct {
	mu       sync.Mutex
	messages map[string][]Message
	out      io.Writer
}

// NewOutbox records messages; when out is non-nil each message is also printed to it.
func NewOutbox(out io.Writer) *Outbox {
	return &Outbox{messages: make(map[string][]Message), out: out}
}

func (o *Outbox) Send(_ context.Context, to string, msg Message) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.messages[to] = append(o.messages[to], msg)
	if o.out != nil {
		_, _ = fmt.Fprintf(o.out, "--- to: %s\n%s\n%s\n", to, msg.Subject, msg.Body)
	}
	return nil
}

// Last returns the most recent message sent to.
func (o *Outbox) Last(to string) (Message, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	msgs := o.messages[to]
	if len(msgs) == 0 {
		return Message{}, false
	}
	return msgs[len(msgs)-1], true
}

// Count returns how many messages were sent to.
func (o *Outbox) Count(to string) int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.messages[to])
}

var codePattern = regexp.MustCompile(`\b\d{4,10}\b`)

// LastCode extracts the code from the latest message sent to.
func (o *Outbox) LastCode(to string) string {
	msg, ok := o.Last(to)
	if !ok {
		return ""
	}
	return codePattern.FindString(msg.Body)
}
