package main

import "github.com/linesmerrill/vehicle-intake-api/cmd"

func main() {
	cmd.Execute()
}
