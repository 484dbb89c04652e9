/*
Copyright © 2020 Marvin

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	_ "net/http/pprof"
	"os"

	"github.com/Minorli/ob-comparator-sub002/config"
	"github.com/Minorli/ob-comparator-sub002/logger"
	"github.com/Minorli/ob-comparator-sub002/server"
	"github.com/Minorli/ob-comparator-sub002/signal"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

var (
	conf    = flag.String("config", "config.toml", "specify the configuration file, default is config.toml")
	mode    = flag.String("mode", "", "specify the program running mode: [remap compare fixup all]")
	version = flag.Bool("version", false, "view ob-comparator version info")
)

func main() {
	flag.Parse()

	config.GetAppVersion(*version)

	// 读取配置文件
	cfg, err := config.ReadConfigFile(*conf)
	if err != nil {
		log.Fatalf("read config file [%s] failed: %v", *conf, err)
	}
	cfg.TaskMode = *mode

	// 初始化日志 logger
	logger.NewZapLogger(cfg)
	config.RecordAppVersion("ob-comparator", cfg)

	go func() {
		if err = http.ListenAndServe(cfg.AppConfig.PprofPort, nil); err != nil {
			zap.L().Fatal("listen and serve pprof failed", zap.Error(errors.Cause(err)))
		}
		os.Exit(0)
	}()

	// 信号量监听处理
	signal.SetupSignalHandler(func() {
		os.Exit(1)
	})

	// 程序运行
	if err = server.Run(context.Background(), cfg); err != nil {
		zap.L().Fatal("server run failed", zap.Error(errors.Cause(err)))
	}
}
