package main

import "lorebook/trellis/cmd"

func main() {
	cmd.Execute()
}
