package main

import "github.com/vietddude/rotor/internal/cli"

func main() {
	cli.Execute()
}
