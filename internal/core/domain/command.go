package domain

import "io"

// Command is an external process invocation.
type Command struct {
	Args        []string
	WorkingDir  string
	Environment map[string]string
	// Stdout and Stderr receive the process output. Nil writers route output to the logger.
	Stdout io.Writer
	Stderr io.Writer
	// Terminal runs the process under a pseudo terminal. Both streams then arrive on Stdout.
	Terminal bool
}
