// Package core implements the parallel repository-metadata dumper: it
// distributes per-artifact extraction across a worker pool while guaranteeing
// that the three output streams (primary, filelists, other) are each written
// in the same global, deterministic order, with a bounded reorder buffer and
// an optional previous-run cache.
package core

// Task is an immutable unit of work identifying one artifact and its
// assigned global sequence id. Tasks are constructed by the producer
// (outside this package, see cmd/createrepo-c) with dense ids in
// [0, N-1]. A worker destroys its Task after using it or depositing it
// into the reorder buffer; only the produced result outlives the Task.
type Task struct {
	ID       int    // monotone, dense from 0 to N-1
	FullPath string // absolute artifact path
	Filename string // basename
	Path     string // directory part
}

// NewTask assembles a Task from fields the caller has already derived
// (filename and path are taken as given, not computed from fullPath); id
// must already be assigned by the caller.
func NewTask(id int, fullPath, filename, path string) *Task {
	return &Task{ID: id, FullPath: fullPath, Filename: filename, Path: path}
}
