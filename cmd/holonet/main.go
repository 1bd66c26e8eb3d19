package main

import "github.com/holocodec/holo/cmd/holonet/cmd"

func main() {
	cmd.Execute()
}
