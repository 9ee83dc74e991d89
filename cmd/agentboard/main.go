// Command agentboard tracks insurance agent onboarding progress.
package main

import (
	"os"

	"github.com/roach88/agentboard/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
