package main

import "github.com/bluehaven/rentals/cmd/rentalsctl/commands"

func main() {
	commands.Execute()
}
