package main

import "github.com/EgorDm/nauman/pkg/cli"

func main() {
	cli.Execute()
}
