package journal

import (
	"context"
	"fmt"
)

// Entry is one journaled transition.
type Entry struct {
	Session string
	Seq     int64
	Action  string
	// Payload is the action's arguments as canonical JSON.
	Payload      string
	CartTotal    int64
	CartDistinct int
}

// Append writes e. Uses ON CONFLICT DO NOTHING so replaying the same
// (session, seq) twice is harmless.
func (j *Journal) Append(ctx context.Context, e Entry) error {
	if e.Session == "" {
		return fmt.Errorf("append entry seq=%d: session is required", e.Seq)
	}
	if e.Payload == "" {
		e.Payload = "{}"
	}

	_, err := j.db.ExecContext(ctx, `
		INSERT INTO actions
		(session, seq, action, payload, cart_total, cart_distinct)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(session, seq) DO NOTHING
	`,
		e.Session,
		e.Seq,
		e.Action,
		e.Payload,
		e.CartTotal,
		e.CartDistinct,
	)
	if err != nil {
		return fmt.Errorf("append entry seq=%d: %w", e.Seq, err)
	}
	return nil
}
