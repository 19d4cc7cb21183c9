// Command evidex is the entrypoint for the Evidex service and CLI.
package main

import (
	"github.com/custodia-labs/evidex/internal/adapters/driving/cli"
)

func main() {
	cli.Execute()
}
