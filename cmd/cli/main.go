package main

import (
	"os"

	"github.com/plateadmin/plateadmin/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
