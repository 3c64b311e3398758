package main

import "github.com/dockgrade/dockgrade/cmd"

func main() {
	cmd.Execute()
}
