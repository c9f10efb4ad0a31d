package journal

// Journal records undo actions for in-memory state so that a sequence of
// mutations can be rolled back as one unit. Snapshot returns a revision and
// RevertTo undoes, newest first, every action appended after it.
//
// Begin opens a scope. Scopes nest: undo actions are only dropped once the
// outermost scope commits, so an enclosing caller can still roll back work an
// inner scope already committed.
//
// A Journal is not safe for concurrent use.
type Journal struct {
	entries []func()
	depth   int
}

func New() *Journal {
	return &Journal{}
}

// Append registers undo, to be run if the enclosing revision is reverted.
// A nil journal ignores the call so that components can run unjournaled.
func (j *Journal) Append(undo func()) {
	if j == nil || undo == nil {
		return
	}
	j.entries = append(j.entries, undo)
}

// Snapshot returns the current revision.
func (j *Journal) Snapshot() int {
	if j == nil {
		return 0
	}
	return len(j.entries)
}

// RevertTo undoes all actions recorded after revision.
func (j *Journal) RevertTo(revision int) {
	if j == nil {
		return
	}
	if revision < 0 {
		revision = 0
	}
	for len(j.entries) > revision {
		last := len(j.entries) - 1
		j.entries[last]()
		j.entries[last] = nil
		j.entries = j.entries[:last]
	}
}

// Begin opens a scope and returns the revision to roll back to.
func (j *Journal) Begin() int {
	if j == nil {
		return 0
	}
	j.depth++
	return len(j.entries)
}

// Commit closes the innermost scope, keeping its changes.
func (j *Journal) Commit() {
	if j == nil {
		return
	}
	j.close()
}

// Rollback undoes everything recorded since revision and closes the
// innermost scope.
func (j *Journal) Rollback(revision int) {
	if j == nil {
		return
	}
	j.RevertTo(revision)
	j.close()
}

func (j *Journal) close() {
	if j.depth > 0 {
		j.depth--
	}
	if j.depth == 0 {
		clear(j.entries)
		j.entries = j.entries[:0]
	}
}

// Depth returns the number of open scopes.
func (j *Journal) Depth() int {
	if j == nil {
		return 0
	}
	return j.depth
}

// Len returns the number of pending undo actions.
func (j *Journal) Len() int {
	if j == nil {
		return 0
	}
	return len(j.entries)
}
