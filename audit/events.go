package audit

// Watched lifecycle events. Each becomes the Action field of the audit
// event it produces.
const (
	ActionItemsCreate = "items.create"
	ActionItemsUpdate = "items.update"
	ActionItemsDelete = "items.delete"
	ActionAuthLogin   = "auth.login"
	ActionFilesUpload = "files.upload"
	ActionServerStart = "server.start"
	ActionServerStop  = "server.stop"
)

// WatchedEvents returns every lifecycle event this extension audits.
func WatchedEvents() []string {
	return []string{
		ActionItemsCreate,
		ActionItemsUpdate,
		ActionItemsDelete,
		ActionAuthLogin,
		ActionFilesUpload,
		ActionServerStart,
		ActionServerStop,
	}
}
