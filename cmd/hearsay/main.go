package main

import "github.com/hearsay-dev/hearsay/internal/cli"

func main() {
	cli.Execute()
}
