package tasklist

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

const menu = `
=== CLI Todo Application ===
1. Add a new task
2. View all tasks
3. Update a task
4. Delete a task
5. Mark a task as complete
6. Help
7. Exit
=============================
`

const help = `
=== Help ===
1. Add a new task: Creates a new task with the provided description
2. View all tasks: Shows all tasks with their completion status
3. Update a task: Changes the description of an existing task
4. Delete a task: Removes a task from the list
5. Mark a task as complete: Changes the completion status of a task
6. Help: Shows this help information
7. Exit: Closes the application
=============================
`

// RunCLI drives the interactive menu over m until the user exits or in is
// exhausted. Only write errors are returned.
func RunCLI(in io.Reader, out io.Writer, m *Manager) error {
	c := &cli{in: bufio.NewScanner(in), out: &errWriter{w: out}, m: m}
	c.loop()
	if err := c.in.Err(); err != nil {
		return fmt.Errorf("tasklist: read input: %w", err)
	}
	return c.out.err
}

type cli struct {
	in  *bufio.Scanner
	out *errWriter
	m   *Manager
}

func (c *cli) loop() {
	for c.out.err == nil {
		c.out.printf("%s", menu)
		choice, ok := c.prompt("Enter your choice (1-7): ")
		if !ok {
			return
		}
		switch choice {
		case "1":
			c.add()
		case "2":
			c.out.printf("\nAll Tasks:\n")
			PrintTasks(c.out, c.m.All())
		case "3":
			c.update()
		case "4":
			c.remove()
		case "5":
			c.complete()
		case "6":
			c.out.printf("%s", help)
		case "7":
			c.out.printf("Goodbye!\n")
			return
		default:
			c.out.printf("Invalid choice. Please enter a number between 1-7.\n")
		}
	}
}

// prompt returns the trimmed next line; ok is false at end of input.
func (c *cli) prompt(label string) (string, bool) {
	c.out.printf("%s", label)
	if !c.in.Scan() {
		return "", false
	}
	return strings.TrimSpace(c.in.Text()), true
}

func (c *cli) promptID(label string) (int, bool) {
	raw, ok := c.prompt(label)
	if !ok {
		return 0, false
	}
	id, err := strconv.Atoi(raw)
	if err != nil {
		c.out.printf("Invalid task ID. Please enter a number.\n")
		return 0, false
	}
	return id, true
}

func (c *cli) add() {
	desc, ok := c.prompt("Enter task description: ")
	if !ok {
		return
	}
	if desc == "" {
		c.out.printf("Task description cannot be empty.\n")
		return
	}
	if id := c.m.Add(desc); id == -1 {
		c.out.printf("Failed to add task: description is empty.\n")
	} else {
		c.out.printf("Task added successfully with ID: %d\n", id)
	}
}

func (c *cli) update() {
	id, ok := c.promptID("Enter task ID to update: ")
	if !ok {
		return
	}
	desc, ok := c.prompt("Enter new task description: ")
	if !ok {
		return
	}
	if desc == "" {
		c.out.printf("Task description cannot be empty.\n")
		return
	}
	if c.m.Update(id, desc) {
		c.out.printf("Task %d updated successfully.\n", id)
	} else {
		c.out.printf("Failed to update task %d. Task may not exist or invalid ID.\n", id)
	}
}

func (c *cli) remove() {
	id, ok := c.promptID("Enter task ID to delete: ")
	if !ok {
		return
	}
	if c.m.Delete(id) {
		c.out.printf("Task %d deleted successfully.\n", id)
	} else {
		c.out.printf("Failed to delete task %d. Task may not exist.\n", id)
	}
}

func (c *cli) complete() {
	id, ok := c.promptID("Enter task ID to mark as complete: ")
	if !ok {
		return
	}
	answer, ok := c.prompt("Mark as complete? (y/n): ")
	if !ok {
		return
	}
	completed := false
	switch strings.ToLower(answer) {
	case "y", "yes", "1", "true":
		completed = true
	}

	status := "incomplete"
	if completed {
		status = "complete"
	}
	if c.m.SetCompleted(id, completed) {
		c.out.printf("Task %d marked as %s successfully.\n", id, status)
	} else {
		c.out.printf("Failed to mark task %d as %s. Task may not exist.\n", id, status)
	}
}

// PrintTasks writes one "<id>. [X] <description>" line per task, or
// "No tasks found." for an empty list.
func PrintTasks(w io.Writer, tasks []Task) {
	if len(tasks) == 0 {
		fmt.Fprintln(w, "No tasks found.")
		return
	}
	for _, t := range tasks {
		status := "[ ]"
		if t.Completed {
			status = "[X]"
		}
		fmt.Fprintf(w, "%d. %s %s\n", t.ID, status, t.Description)
	}
}

// errWriter keeps the first write error and drops later writes.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) Write(p []byte) (int, error) {
	if e.err != nil {
		return 0, e.err
	}
	n, err := e.w.Write(p)
	e.err = err
	return n, err
}

func (e *errWriter) printf(format string, args ...any) {
	fmt.Fprintf(e, format, args...)
}
