package main

import "github.com/user/peppy/internal/cli"

func main() {
	cli.Execute()
}
