// Package shell runs external sequencing tools and reports their exit codes.
package shell

import (
	"errors"
	"log"
	"os"
	"os/exec"
	"strings"
)

// ExitCommandNotFound is the shell convention for a missing executable.
const ExitCommandNotFound = 127

// RunFunc matches Run so callers can swap in a fake runner for testing.
type RunFunc func(name string, args ...string) int

// RunToFileFunc matches RunToFile.
type RunToFileFunc func(outputFile, name string, args ...string) int

var command = exec.Command

// Run executes name with args, inheriting stdout and stderr, and blocks
// until the child exits. The command line is echoed to the log before launch.
func Run(name string, args ...string) int {
	log.Println(name, strings.Join(args, " "))
	cmd := command(name, args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return exitCode(cmd.Run())
}

// RunToFile executes name with args like Run, but captures the child's
// stdout in outputFile.
func RunToFile(outputFile, name string, args ...string) int {
	log.Println(name, strings.Join(args, " "), ">", outputFile)
	out, err := os.Create(outputFile)
	if err != nil {
		log.Println(err)
		return 1
	}
	defer out.Close()
	cmd := command(name, args...)
	cmd.Stdout = out
	cmd.Stderr = os.Stderr
	return exitCode(cmd.Run())
}

func exitCode(err error) int {
	if err == nil {
		return 0
	}
	var exit *exec.ExitError
	if errors.As(err, &exit) {
		return exit.ExitCode()
	}
	if errors.Is(err, exec.ErrNotFound) {
		return ExitCommandNotFound
	}
	log.Println(err)
	return 1
}
