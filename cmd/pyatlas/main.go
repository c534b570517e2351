package main

import "github.com/pyatlas/pyatlas/internal/cli"

func main() {
	cli.Execute()
}
