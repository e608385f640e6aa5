package main

import "github.com/dotcommander/modcycle/cmd"

func main() {
	cmd.Execute()
}
