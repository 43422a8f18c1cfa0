package board

import (
	"tableflip.dev/planner/pkg/task"
)

// Collection is the ordered in-memory copy of the user's tasks. Order is
// fetch order followed by append order.
type Collection struct {
	tasks []task.Task
}

// Replace swaps the whole collection.
func (c *Collection) Replace(tasks []task.Task) {
	c.tasks = cloneTasks(tasks)
}

// Upsert appends t, or swaps it in place when a record with the same id is
// already present. It reports whether t was appended.
func (c *Collection) Upsert(t task.Task) bool {
	if c.Swap(t) {
		return false
	}
	c.tasks = append(c.tasks, t)
	return true
}

// Swap replaces the record with t's id. It reports false when no such record
// exists.
func (c *Collection) Swap(t task.Task) bool {
	if idx := c.index(t.ID); idx >= 0 {
		c.tasks[idx] = t
		return true
	}
	return false
}

// Remove drops the record with id.
func (c *Collection) Remove(id string) bool {
	idx := c.index(id)
	if idx < 0 {
		return false
	}
	c.tasks = append(c.tasks[:idx:idx], c.tasks[idx+1:]...)
	return true
}

// Get returns the record with id.
func (c *Collection) Get(id string) (task.Task, bool) {
	if idx := c.index(id); idx >= 0 {
		return c.tasks[idx], true
	}
	return task.Task{}, false
}

// Len returns the number of records.
func (c *Collection) Len() int {
	return len(c.tasks)
}

// Snapshot returns a copy that callers may keep.
func (c *Collection) Snapshot() []task.Task {
	return cloneTasks(c.tasks)
}

func (c *Collection) index(id string) int {
	if id == "" {
		return -1
	}
	for i := range c.tasks {
		if c.tasks[i].ID == id {
			return i
		}
	}
	return -1
}

func cloneTasks(in []task.Task) []task.Task {
	if in == nil {
		return nil
	}
	out := make([]task.Task, len(in))
	copy(out, in)
	return out
}
