package main

import "simpleredis/cmd"

func main() {
	cmd.Execute()
}
