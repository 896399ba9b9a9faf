package neurochat

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/EdwinKingori/I-NeuroChat/requestctx"
)

func TestAuditEventCarriesRequestScope(t *testing.T) {
	engine, store, _ := newTestEngine(t)
	sink := NewChannelSink(16)
	engine.audit.Close()
	engine.audit = newAuditDispatcher(AuditConfig{Enabled: true, BufferSize: 16, DropIfFull: true}, sink)
	t.Cleanup(engine.Close)

	ctx := requestctx.Begin(context.Background(), "trace-42")
	requestctx.SetIdentity(ctx, "u-actor", "actor@example.com", "admin")
	ctx = WithClientIP(ctx, "10.0.0.9")

	seedUser(t, store, "u-target", "target@example.com", "user")
	if err := engine.AssignRole(ctx, "u-target", "support"); err != nil {
		t.Fatalf("AssignRole() error = %v", err)
	}

	select {
	case ev := <-sink.Events():
		if ev.EventType != "auth.role_assigned" {
			t.Errorf("EventType = %q", ev.EventType)
		}
		if ev.TraceID != "trace-42" {
			t.Errorf("TraceID = %q, want trace-42", ev.TraceID)
		}
		// The acted-on account, not the actor.
		if ev.UserID != "u-target" {
			t.Errorf("UserID = %q, want u-target", ev.UserID)
		}
		if ev.Email != "actor@example.com" || ev.Role != "admin" {
			t.Errorf("actor fields = %q/%q", ev.Email, ev.Role)
		}
		if ev.IP != "10.0.0.9" {
			t.Errorf("IP = %q", ev.IP)
		}
		if !ev.Success || ev.Metadata["role"] != "support" {
			t.Errorf("event = %+v", ev)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no audit event dispatched")
	}
}

func TestJSONWriterSinkOneObjectPerLine(t *testing.T) {
	var buf bytes.Buffer
	sink := NewJSONWriterSink(&buf)

	for i := 0; i < 3; i++ {
		sink.Emit(context.Background(), AuditEvent{
			Timestamp: time.Now(),
			EventType: "account.login_success",
			Success:   true,
		})
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("lines = %d, want 3", len(lines))
	}
	for _, line := range lines {
		var ev AuditEvent
		if err := json.Unmarshal([]byte(line), &ev); err != nil {
			t.Fatalf("invalid JSON line %q: %v", line, err)
		}
		if ev.EventType != "account.login_success" {
			t.Errorf("EventType = %q", ev.EventType)
		}
	}
}

func TestDispatcherDropsUnderBackpressure(t *testing.T) {
	block := make(chan struct{})
	sink := blockingSink{block: block}
	d := newAuditDispatcher(AuditConfig{Enabled: true, BufferSize: 1, DropIfFull: true}, sink)

	for i := 0; i < 10; i++ {
		d.Emit(context.Background(), AuditEvent{EventType: "account.logout"})
	}
	if d.Dropped() == 0 {
		t.Error("expected drops with a full buffer and a blocked sink")
	}

	close(block)
	d.Close()
}

type blockingSink struct {
	block chan struct{}
}

func (s blockingSink) Emit(ctx context.Context, event AuditEvent) {
	<-s.block
}
