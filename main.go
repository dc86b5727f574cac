package main

import "github.com/fakeyudi/rerun/cmd"

func main() {
	cmd.Execute()
}
