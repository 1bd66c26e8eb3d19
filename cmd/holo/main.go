package main

import "github.com/holocodec/holo/cmd/holo/cmd"

func main() {
	cmd.Execute()
}
