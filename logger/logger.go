// logger/logger.go
package logger

import (
	"os"

	"go.uber.org/zap"
)

var Log *zap.SugaredLogger

// Init 初始化全局日志。WORLDSERVER_DEBUG 非空时输出开发格式
func Init() {
	var (
		logger *zap.Logger
		err    error
	)
	if os.Getenv("WORLDSERVER_DEBUG") != "" {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		panic("failed to initialize zap logger: " + err.Error())
	}
	Log = logger.Sugar()
}
