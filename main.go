package main

import (
	"MuseFM/cmd"
	"MuseFM/logger"
)

func main() {
	defer logger.Sync()
	cmd.Execute()
}
