package main

import "github.com/ridoystarlord/blackbird/cmd"

func main() {
	cmd.Execute()
}
