package main

import "github.com/cosocaf/orange4-emulator/cmd"

func main() {
	cmd.Execute()
}
