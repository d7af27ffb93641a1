package main

import "github.com/mcoot/teamrank/internal/cli"

func main() {
	cli.Execute()
}
