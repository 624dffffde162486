// Package directory is the employee directory: user records, search and
// profile edits.
//
// Users are never deleted; inactive users drop out of listings and search.
// Profile edits follow a fixed rule set: administrators and group managers
// may edit every profile field of anyone, other users only their own phone
// number. Every accepted edit is recorded as an edit_user audit entry.
//
//	mgr := directory.NewManager(store, recorder, metrics, logger)
//	fields := mgr.EditableFields(actor, target)
//	updated, err := mgr.UpdateUser(ctx, actor, target.ID, map[directory.Field]string{
//		directory.FieldPhone: "555-0100",
//	}, ip)
package directory
