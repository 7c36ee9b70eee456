package main

import "github.com/viant/wfsync/internal/cli"

func main() {
	cli.Execute()
}
