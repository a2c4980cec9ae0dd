package database

import "sync"

// SaveHook is invoked after a row has been written through any handler,
// with the table name and the row id. Hooks must not assume which code
// path performed the write.
type SaveHook func(table, id string)

type saveHooks struct {
	mu    sync.RWMutex
	funcs []SaveHook
}

// AddSaveHook registers fn to run after every tracked write.
func (db *DB) AddSaveHook(fn SaveHook) {
	db.hooks.mu.Lock()
	defer db.hooks.mu.Unlock()
	db.hooks.funcs = append(db.hooks.funcs, fn)
}

// NotifySaved fires all registered hooks. Called by write paths after
// the statement has committed.
func (db *DB) NotifySaved(table, id string) {
	db.hooks.mu.RLock()
	defer db.hooks.mu.RUnlock()
	for _, fn := range db.hooks.funcs {
		fn(table, id)
	}
}
