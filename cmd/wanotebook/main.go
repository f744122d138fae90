package main

import (
	"github.com/joern1811/wanotebook/internal/cmd"
	"github.com/joern1811/wanotebook/internal/logging"
)

func main() {
	logging.Init()
	cmd.Execute()
}
