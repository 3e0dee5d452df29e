package main

import "github.com/fulmenhq/docneat/cmd"

func main() {
	cmd.Execute()
}
