package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/filmrate/internal/buildinfo"
	"github.com/dmitrijs2005/filmrate/internal/client/cli"
	"github.com/dmitrijs2005/filmrate/internal/client/config"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	cfg, err := config.LoadConfig(os.Args[1:])
	if err != nil {
		log.Fatalf("%v", err)
	}

	ctx, cancelFunc := context.WithCancel(context.Background())
	defer cancelFunc()

	app, err := cli.NewApp(ctx, cfg)
	if err != nil {
		log.Fatalf("%v", err)
	}

	// The REPL blocks on stdin, so an interrupt aborts any in-flight store
	// call and exits directly.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	go func() {
		<-sigs
		cancelFunc()
		app.Close()
		fmt.Println("\nBye!")
		os.Exit(0)
	}()

	app.Run(ctx)

}
