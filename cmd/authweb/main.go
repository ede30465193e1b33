package main

import "github.com/nfrund/authweb/cmd/authweb/cmd"

func main() {
	cmd.Execute()
}
