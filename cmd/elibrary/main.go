package main

import "elibrary/cmd/elibrary/command"

func main() {
	command.Execute()
}
