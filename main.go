package main

import "github.com/Rorical/PocketDoc/cmd"

func main() {
	cmd.Execute()
}
