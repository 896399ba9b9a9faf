package neurochat

import (
	"context"
	"time"

	"github.com/EdwinKingori/I-NeuroChat/requestctx"
)

// Audit event type labels. These are the stable values that land in the
// EventType field of every emitted AuditEvent.
const (
	auditEventResolveFailure   = "auth.resolve_failure"
	auditEventAuthorizeDenied  = "auth.authorize_denied"
	auditEventRoleAssigned     = "auth.role_assigned"
	auditEventRegister         = "account.registered"
	auditEventLoginSuccess     = "account.login_success"
	auditEventLoginFailure     = "account.login_failure"
	auditEventLogout           = "account.logout"
	auditEventDeactivated      = "account.deactivated"
	auditEventActivated        = "account.activated"
	auditEventStaleDeactivated = "account.stale_deactivated"
)

// emitAudit enriches an event with the request scope and hands it to the
// dispatcher. Identity fields come from the ambient scope; subjectID
// overrides the scope's user when the acted-on account differs from the
// acting one (admin operations, failed logins).
func (e *Engine) emitAudit(ctx context.Context, eventType string, success bool, subjectID string, cause error, metadata map[string]string) {
	if e == nil || e.audit == nil {
		return
	}

	scope := requestctx.Current(ctx)

	ev := AuditEvent{
		Timestamp: time.Now(),
		EventType: eventType,
		TraceID:   scope.TraceID,
		UserID:    scope.UserID,
		Email:     scope.Email,
		Role:      scope.Role,
		IP:        ClientIP(ctx),
		Success:   success,
		Metadata:  metadata,
	}
	if subjectID != "" {
		ev.UserID = subjectID
	}
	if cause != nil {
		ev.Error = cause.Error()
	}

	e.audit.Emit(ctx, ev)
}
