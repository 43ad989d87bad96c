package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/gocart-dev/gocart/config"
	"github.com/gocart-dev/gocart/internal/api"
	"github.com/gocart-dev/gocart/internal/app"
	"github.com/gocart-dev/gocart/internal/webserver"
)

var (
	confFile = flag.String("conf", "gocart.yml", "config file path")
	initDB   = flag.Bool("initdb", false, "drop and recreate the database schema, then exit")
	showVer  = flag.Bool("v", false, "print version and exit")
)

var version = "dev"

func main() {
	flag.Parse()

	if *showVer {
		fmt.Println("gocart", version)
		return
	}

	_ = godotenv.Load()
	cfg := config.LoadConfig(*confFile)

	application := app.NewApplication(cfg)
	application.Init(cfg)
	defer application.Release()

	if *initDB {
		application.InitDb()
		zap.S().Info("database schema recreated")
		return
	}

	ws := webserver.New(application)
	api.InitRouter(ws)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return ws.Start()
	})
	g.Go(func() error {
		<-ctx.Done()
		zap.S().Info("shutdown signal received")
		return ws.Echo().Shutdown(context.Background())
	})

	if err := g.Wait(); err != nil {
		zap.S().Errorf("server stopped: %v", err)
		os.Exit(1)
	}
}
