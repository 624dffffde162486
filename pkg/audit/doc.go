// Package audit records security-relevant and mutating actions and serves
// them back for review, export and retention.
//
// Every entry names the acting user (nil for failed sign-ins), an action,
// an optional target and a human-readable detail line:
//
//	recorder.Record(ctx, audit.Record{
//		ActorID:    audit.Int64Ptr(actor.ID),
//		Action:     audit.ActionAddGroupMember,
//		TargetType: audit.TargetGroup,
//		TargetID:   audit.Int64Ptr(group.ID),
//		Details:    "Added user Jane Doe to group Finance",
//		IPAddress:  ip,
//	})
//
// Record never fails from the caller's point of view. Each entry is
// written in its own transaction; a failed write is rolled back, logged
// and counted in groupadmin_audit_write_failures_total.
//
// DBStore answers the read side: recent activity, filtered search, export
// in JSON, CSV or NDJSON, and deletion of entries older than the retention
// period.
package audit
