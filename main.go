package main

import "github.com/vjjda/suttaworks/cmd"

func main() {
	cmd.Execute()
}
