// Command tasks is the interactive, in-memory task manager. Nothing is
// persisted; tasks live until the program exits.
package main

import (
	"log/slog"
	"os"

	"github.com/Skryldev/todo-api/tasklist"
)

func main() {
	if err := tasklist.RunCLI(os.Stdin, os.Stdout, tasklist.NewManager()); err != nil {
		slog.Error("tasks: fatal", "err", err)
		os.Exit(1)
	}
}
