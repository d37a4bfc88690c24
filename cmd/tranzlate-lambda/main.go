// Command tranzlate-lambda runs the translation handler on AWS Lambda.
// Configuration comes from TRANZLATE_* environment variables.
package main

import (
	"context"
	"log"

	"github.com/aws/aws-lambda-go/lambda"

	"github.com/ti-oluwa/tranzlate"
	"github.com/ti-oluwa/tranzlate/config"
	"github.com/ti-oluwa/tranzlate/engine"
	"github.com/ti-oluwa/tranzlate/lambdafn"
)

func main() {
	engine.UserAgent = tranzlate.UserAgent()

	cfg, err := config.Load("")
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}
	logger, err := cfg.Logger()
	if err != nil {
		log.Fatalf("creating logger: %v", err)
	}
	defer logger.Sync()

	// Language tables outlive a single invocation while the container is warm.
	store, err := cfg.NewCache(context.Background())
	if err != nil {
		logger.Fatal("opening cache: " + err.Error())
	}

	factory := config.NewFactory(cfg, store, logger, nil)
	h := lambdafn.NewHandler(factory, logger, cfg.Markup.Concurrency)
	lambda.Start(h.Handle)
}
