package main

import "github.com/jonandersen/wst/cmd"

func main() {
	cmd.Execute()
}
