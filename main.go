package main

import (
	"github.com/routineapp/routine/cmd"
	"github.com/routineapp/routine/internal/logger"
)

func main() {
	defer logger.HandlePanic()
	cmd.Execute()
}
