package main

import (
	"context"
	"os"

	"treeterm/cmd"
)

func main() {
	os.Exit(cmd.Execute(context.Background()))
}
