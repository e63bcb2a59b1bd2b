package main

import (
	"github.com/HyunsDev/opize-calendar2notion-server/core/logger"
	"github.com/HyunsDev/opize-calendar2notion-server/core/server"
)

func main() {
	if err := server.Run(); err != nil {
		logger.Error("run server error", "error", err)
	}
}
