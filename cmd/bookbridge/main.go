package main

import "bookbridge/cmd/bookbridge/commands"

func main() {
	commands.Execute()
}
