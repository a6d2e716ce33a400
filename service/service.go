package service

import (
	"net"

	"github.com/queryinspect/queryinspect/component/collector"
	"github.com/queryinspect/queryinspect/config"
	"github.com/queryinspect/queryinspect/database/sqldb"
	"github.com/queryinspect/queryinspect/utils"

	"github.com/pingcap/log"
	"go.uber.org/zap"
)

func Init(cfg *config.Config, col *collector.Collector, db *sqldb.SQLDB) {
	listener, err := net.Listen("tcp", cfg.Address)
	if err != nil {
		log.Fatal("failed to listen",
			zap.String("address", cfg.Address),
			zap.Error(err),
		)
	}

	go utils.GoWithRecovery(func() {
		ServeHTTP(cfg, listener, col, db)
	}, nil)

	log.Info(
		"starting http service",
		zap.String("address", cfg.Address),
	)
}

func Stop() {
	log.Info("shutting down http service")
	StopHTTP()
}
