// Command sessionctl is a command-line client that keeps a login session on disk.
//
//	sessionctl --base-url https://api.example.com login --email alice@example.com
//	sessionctl whoami
//	sessionctl refresh
//	sessionctl logout
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
