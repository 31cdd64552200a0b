// Package tasklist is the standalone, in-memory task manager behind the
// interactive CLI. It shares nothing with the persisted todos: separate
// types, separate id space, no storage.
package tasklist

import (
	"strings"
	"time"
)

// Task is one entry of a Manager.
type Task struct {
	ID          int
	Description string
	Completed   bool
	CreatedAt   time.Time
}

// Manager holds tasks in insertion order. Ids come from a counter starting at
// 1 and are never reused, even after a delete. A Manager is not safe for
// concurrent use.
type Manager struct {
	tasks  []Task
	nextID int
	now    func() time.Time
}

// NewManager returns an empty Manager.
func NewManager() *Manager {
	return &Manager{nextID: 1, now: time.Now}
}

// Add stores a task with the trimmed description and returns its id, or -1
// when the description is blank.
func (m *Manager) Add(description string) int {
	description = strings.TrimSpace(description)
	if description == "" {
		return -1
	}
	id := m.nextID
	m.nextID++
	m.tasks = append(m.tasks, Task{ID: id, Description: description, CreatedAt: m.now()})
	return id
}

// Get returns a copy of the task with id.
func (m *Manager) Get(id int) (Task, bool) {
	if i := m.index(id); i >= 0 {
		return m.tasks[i], true
	}
	return Task{}, false
}

// Update replaces the description. It fails for a non-positive id, a blank
// description or an unknown id.
func (m *Manager) Update(id int, description string) bool {
	description = strings.TrimSpace(description)
	if id <= 0 || description == "" {
		return false
	}
	i := m.index(id)
	if i < 0 {
		return false
	}
	m.tasks[i].Description = description
	return true
}

// Delete removes the task with id.
func (m *Manager) Delete(id int) bool {
	if id <= 0 {
		return false
	}
	i := m.index(id)
	if i < 0 {
		return false
	}
	m.tasks = append(m.tasks[:i], m.tasks[i+1:]...)
	return true
}

// SetCompleted sets the completion flag of the task with id.
func (m *Manager) SetCompleted(id int, completed bool) bool {
	if id <= 0 {
		return false
	}
	i := m.index(id)
	if i < 0 {
		return false
	}
	m.tasks[i].Completed = completed
	return true
}

// All returns a copy of every task.
func (m *Manager) All() []Task {
	return m.filter(func(Task) bool { return true })
}

// Pending returns a copy of the incomplete tasks.
func (m *Manager) Pending() []Task {
	return m.filter(func(t Task) bool { return !t.Completed })
}

// Completed returns a copy of the completed tasks.
func (m *Manager) Completed() []Task {
	return m.filter(func(t Task) bool { return t.Completed })
}

func (m *Manager) filter(keep func(Task) bool) []Task {
	out := make([]Task, 0, len(m.tasks))
	for _, t := range m.tasks {
		if keep(t) {
			out = append(out, t)
		}
	}
	return out
}

func (m *Manager) index(id int) int {
	for i, t := range m.tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}
