package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/lifeoc/event-relay/app"
	"github.com/lifeoc/event-relay/app/api"
	"github.com/lifeoc/event-relay/app/cfg"
)

func main() {
	appCfg, err := cfg.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if appCfg == nil {
		return
	}

	cfg.SetupLogger(appCfg.Debug)

	eventRelay, err := app.NewRelay(appCfg, nil)
	if err != nil {
		slog.Error("Failed to initialize relay", "error", err)
		os.Exit(1)
	}

	slog.Info("Starting Event Relay function", "version", appCfg.Version, "cms_endpoint", appCfg.CMSEndpoint)

	lambda.Start(api.NewLambdaHandler(eventRelay, appCfg.APIAccessKey))
}
