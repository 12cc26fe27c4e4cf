// Command cmppctl is a small operator CLI around a session.Client: connect
// to a gateway, send one message, or watch inbound traffic until
// interrupted.
package main

import (
	"fmt"
	"os"

	"github.com/Ucell-first/cmpp30/cmd/cmppctl/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
