package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/queryinspect/queryinspect/component/collector"
	"github.com/queryinspect/queryinspect/config"
	"github.com/queryinspect/queryinspect/database/sqldb"
	"github.com/queryinspect/queryinspect/service"
	"github.com/queryinspect/queryinspect/utils/printer"

	"github.com/pingcap/log"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

var (
	version    = pflag.BoolP("version", "V", false, "print version information and exit")
	configPath = pflag.String("config", "", "config file path")

	address  = pflag.String("address", "", "TCP address to listen for http connections")
	logPath  = pflag.String("log.path", "", "log file path")
	logLevel = pflag.String("log.level", "", "log level")
)

func main() {
	pflag.Parse()
	if *version {
		fmt.Println(printer.GetQIInfo())
		return
	}

	cfg, err := config.InitConfig(*configPath, overrideConfig)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize config: %v\n", err)
		os.Exit(1)
	}

	cfg.Log.InitDefaultLogger()
	printer.PrintQIInfo()

	col := collector.New(cfg.Inspect.LogTracebacks, cfg.Inspect.TracebackRoots)

	db, err := sqldb.Open(cfg.Storage.Path, col)
	if err != nil {
		log.Fatal("failed to open storage", zap.String("path", cfg.Storage.Path), zap.Error(err))
	}
	defer db.Close()

	service.Init(cfg, col, db)
	defer service.Stop()

	sig := waitForSigterm()
	log.Info("received signal", zap.String("sig", sig.String()))
}

func overrideConfig(config *config.Config) {
	pflag.Visit(func(f *pflag.Flag) {
		switch f.Name {
		case "address":
			config.Address = *address
		case "log.path":
			config.Log.Path = *logPath
		case "log.level":
			config.Log.Level = *logLevel
		}
	})
}

func waitForSigterm() os.Signal {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, os.Interrupt, syscall.SIGTERM)
	return <-ch
}
