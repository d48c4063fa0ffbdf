package main

import (
	"os"

	"github.com/flarebyte/chore/cmd/chore/root"
)

func main() {
	os.Exit(root.Run(os.Args[1:], root.Streams{
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}))
}
