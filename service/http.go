package service

import (
	"database/sql"
	"io"
	"net"
	"net/http"
	"os"
	"path"
	"time"

	"github.com/queryinspect/queryinspect/component/collector"
	"github.com/queryinspect/queryinspect/config"
	"github.com/queryinspect/queryinspect/database/sqldb"
	"github.com/queryinspect/queryinspect/middleware"

	"github.com/gin-contrib/pprof"
	"github.com/gin-gonic/gin"
	"github.com/pingcap/log"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

var httpServer *http.Server = nil

type Status struct {
	Health bool `json:"health"`
}

func ServeHTTP(cfg *config.Config, listener net.Listener, col *collector.Collector, db *sqldb.SQLDB) {
	gin.SetMode(gin.ReleaseMode)

	var logFile *os.File
	var err error
	if cfg.Log.Path != "" {
		logFileName := path.Join(cfg.Log.Path, "service.log")
		logFile, err = os.OpenFile(logFileName, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0644)
		if err != nil {
			log.Fatal("Failed to open the log file", zap.String("filename", logFileName))
		}
	} else {
		logFile = os.Stdout
	}

	ng := newRouter(cfg, col, db, logFile)
	httpServer = &http.Server{
		Handler:           ng,
		ReadHeaderTimeout: 5 * time.Second,
	}
	if err = httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
		log.Warn("failed to serve http service", zap.Error(err))
	}
}

func newRouter(cfg *config.Config, col *collector.Collector, db *sqldb.SQLDB, logOut io.Writer) *gin.Engine {
	ng := gin.New()
	ng.Use(gin.LoggerWithWriter(logOut))

	// recovery
	ng.Use(gin.Recovery())

	// query inspection, one engine per request
	ng.Use(middleware.Inspect(cfg.Inspect, col))

	ng.Handle(http.MethodGet, "/health", func(g *gin.Context) {
		g.JSON(http.StatusOK, Status{Health: true})
	})

	kvGroup := ng.Group("/kv")
	kvGroup.GET("/:key", getEntry(db))
	kvGroup.PUT("/:key", setEntry(db))

	// register pprof http api
	pprof.Register(ng)

	promHandler := promhttp.Handler()
	promGroup := ng.Group("/metrics")
	promGroup.Any("", func(c *gin.Context) {
		promHandler.ServeHTTP(c.Writer, c.Request)
	})
	return ng
}

func getEntry(db *sqldb.SQLDB) gin.HandlerFunc {
	return func(c *gin.Context) {
		value, err := db.Get(c.Request.Context(), c.Param("key"))
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{
				"status":  "error",
				"message": "no such key",
			})
			return
		}
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":  "error",
				"message": err.Error(),
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
			"data":   value,
		})
	}
}

func setEntry(db *sqldb.SQLDB) gin.HandlerFunc {
	return func(c *gin.Context) {
		value := c.Query("value")
		if len(value) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{
				"status":  "error",
				"message": "no value",
			})
			return
		}
		if err := db.Set(c.Request.Context(), c.Param("key"), value); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":  "error",
				"message": err.Error(),
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
		})
	}
}

func StopHTTP() {
	if httpServer == nil {
		return
	}

	log.Info("shutting down http server")
	_ = httpServer.Close()
	log.Info("http server is down")
}
