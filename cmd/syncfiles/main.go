// Command syncfiles copies the source store's file catalog onto the target
// store by direct reference: the target fetches each asset from the source
// CDN itself. Per-file failures are reported, not fatal.
//
// Usage:
//
//	syncfiles [-mode dedupe|overwrite] [-c envfile]
//
// Configuration comes from SOURCE_SHOP_DOMAIN, SOURCE_ACCESS_TOKEN,
// TARGET_SHOP_DOMAIN and TARGET_ACCESS_TOKEN.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/storefront-tools/mediasync/internal/buildinfo"
	"github.com/storefront-tools/mediasync/internal/config"
	"github.com/storefront-tools/mediasync/internal/flagx"
	"github.com/storefront-tools/mediasync/internal/logging"
	"github.com/storefront-tools/mediasync/internal/match"
	"github.com/storefront-tools/mediasync/internal/shopify"
	"github.com/storefront-tools/mediasync/internal/sync"
)

func main() {
	buildinfo.PrintBuildData(os.Stdout)

	mode := flag.String("mode", "dedupe", "duplicate policy: dedupe or overwrite")
	flag.String("c", "", "path to env file")
	flag.String("config", "", "path to env file")
	flag.Parse()

	cfg, err := config.Load(flagx.EnvFileFlag())
	if err != nil {
		usage(err)
	}
	if err := cfg.RequireSource(); err != nil {
		usage(err)
	}
	if err := cfg.RequireTarget(); err != nil {
		usage(err)
	}
	runMode, err := sync.ParseMode(*mode)
	if err != nil {
		usage(err)
	}

	logger := logging.New(cfg.LogLevel)
	defer logger.Sync()

	ctx := context.Background()
	source := shopify.NewClient(cfg.Source, cfg.APIVersion, logger.Named("source"))
	target := shopify.NewClient(cfg.Target, cfg.APIVersion, logger.Named("target"))

	fmt.Printf("Syncing files %s -> %s (%s mode)\n", cfg.Source.ShopDomain, cfg.Target.ShopDomain, runMode)

	runner := sync.NewRunner(
		source.Files(ctx, cfg.PageSize),
		match.NewFilenameMatcher(target),
		shopify.NewMaterializer(target, logger),
		runMode,
		os.Stdout,
		logger,
	)

	summary, runErr := runner.Run(ctx)
	if err := summary.WriteCI(cfg.SummaryFile); err != nil {
		logger.Warn(fmt.Sprintf("could not write CI summary: %v", err))
	}
	if runErr != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", runErr)
		os.Exit(1)
	}
}

func usage(err error) {
	fmt.Fprintf(os.Stderr, "syncfiles: %v\n", err)
	fmt.Fprintln(os.Stderr, "usage: syncfiles [-mode dedupe|overwrite] [-c envfile]")
	fmt.Fprintln(os.Stderr, "required env: SOURCE_SHOP_DOMAIN SOURCE_ACCESS_TOKEN TARGET_SHOP_DOMAIN TARGET_ACCESS_TOKEN")
	os.Exit(1)
}
