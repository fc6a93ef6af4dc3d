// Package main is the entry point for the ezpool server.
package main

import "github.com/pgvanniekerk/ezpool/internal/cli"

func main() {
	cli.Execute()
}
