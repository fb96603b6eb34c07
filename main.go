package main

import "github.com/tristendillon/tsmock/cmd"

func main() {
	cmd.Execute()
}
