package main

import "github.com/campwatch/campwatch/internal/cmd"

func main() {
	cmd.Execute()
}
