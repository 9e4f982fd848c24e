package main

import (
	"os"

	"feastiq/internal/cli"
)

func main() {
	os.Exit(cli.New().Execute())
}
