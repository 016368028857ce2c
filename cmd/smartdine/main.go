// The main package for the smartdine executable.
package main

import (
	"github.com/chenmingwei23/smart-dine/cmd"
)

// main defers all execution to the Cobra CLI.
func main() {
	cmd.Execute()
}
