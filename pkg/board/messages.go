package board

import (
	"fmt"

	"tableflip.dev/planner/pkg/task"
)

// LoadedMsg is the result of Load.
type LoadedMsg struct {
	Gen   uint64
	Epoch uint64
	Tasks []task.Task
	Err   error
}

func (m LoadedMsg) Describe() string {
	return fmt.Sprintf(`gen:%d tasks:%d err:%v`, m.Gen, len(m.Tasks), m.Err)
}

// CreatedMsg is the result of Create. Session echoes the form session that
// issued the request.
type CreatedMsg struct {
	Epoch   uint64
	Session uint64
	Task    task.Task
	Err     error
}

func (m CreatedMsg) Describe() string {
	return fmt.Sprintf(`session:%d id:%q err:%v`, m.Session, m.Task.ID, m.Err)
}

// ReplacedMsg is the result of Replace.
type ReplacedMsg struct {
	Epoch   uint64
	Session uint64
	ID      string
	Task    task.Task
	Err     error
}

func (m ReplacedMsg) Describe() string {
	return fmt.Sprintf(`session:%d id:%q err:%v`, m.Session, m.ID, m.Err)
}

// PatchedMsg is the result of Patch.
type PatchedMsg struct {
	Epoch uint64
	ID    string
	Task  task.Task
	Err   error
}

func (m PatchedMsg) Describe() string {
	return fmt.Sprintf(`id:%q err:%v`, m.ID, m.Err)
}

// RemovedMsg is the result of Remove.
type RemovedMsg struct {
	Epoch uint64
	ID    string
	Err   error
}

func (m RemovedMsg) Describe() string {
	return fmt.Sprintf(`id:%q err:%v`, m.ID, m.Err)
}

// InsertedMsg is the result of Insert.
type InsertedMsg struct {
	Epoch uint64
	ID    string
	Task  task.Task
	Err   error
}

func (m InsertedMsg) Describe() string {
	return fmt.Sprintf(`id:%q err:%v`, m.ID, m.Err)
}
