package bank

import (
	"context"

	"go.uber.org/zap"
)

// newAudit builds the audit entry of an operation performed by the context actor.
// It is committed together with the operation's other records.
func (b *Bank) newAudit(ctx context.Context, action Action, detail string, status Status) AuditEntry {
	return AuditEntry{
		ID:     b.seq[AuditTable].next(),
		Actor:  actorFrom(ctx),
		Action: action,
		Detail: detail,
		Time:   b.now(),
		Status: status,
	}
}

// Log appends an audit entry on its own.
func (b *Bank) Log(ctx context.Context, actor string, action Action, detail string, status Status) (AuditEntry, error) {
	e := b.newAudit(WithActor(ctx, actor), action, detail, status)
	if err := b.commit(ctx, e); err != nil {
		return AuditEntry{}, err
	}
	b.log.Info("audit", zap.String("id", e.ID), zap.Stringer("action", e.Action), zap.String("actor", e.Actor))
	return e, nil
}

// AuditLog returns the audit trail in identifier order.
func (b *Bank) AuditLog(ctx context.Context) ([]AuditEntry, error) {
	return list[AuditEntry](ctx, b.repo, AuditTable)
}
