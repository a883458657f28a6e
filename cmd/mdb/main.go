package main

import "github.com/fbettag/mdb/internal/cli"

func main() {
	cli.Execute()
}
