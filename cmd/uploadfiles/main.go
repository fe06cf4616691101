// Command uploadfiles pushes a previously downloaded directory of assets to
// the target store via staged uploads: request a staged target, stream the
// multipart body, register the resource. Reads the files.json index written
// by downloadfiles.
//
// Usage:
//
//	uploadfiles [-mode dedupe|overwrite] [-c envfile] <directory>
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/storefront-tools/mediasync/internal/buildinfo"
	"github.com/storefront-tools/mediasync/internal/config"
	"github.com/storefront-tools/mediasync/internal/download"
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

	dir := flag.Arg(0)
	if dir == "" {
		usage(fmt.Errorf("missing source directory argument"))
	}
	if _, err := os.Stat(dir); err != nil {
		usage(err)
	}

	cfg, err := config.Load(flagx.EnvFileFlag())
	if err != nil {
		usage(err)
	}
	if err := cfg.RequireTarget(); err != nil {
		usage(err)
	}
	runMode, err := sync.ParseMode(*mode)
	if err != nil {
		usage(err)
	}

	entries, err := download.ReadIndex(dir)
	if err != nil {
		usage(err)
	}

	logger := logging.New(cfg.LogLevel)
	defer logger.Sync()

	ctx := context.Background()
	target := shopify.NewClient(cfg.Target, cfg.APIVersion, logger)

	fmt.Printf("Uploading %d indexed files from %s to %s (%s mode)\n",
		len(entries), dir, cfg.Target.ShopDomain, runMode)

	runner := sync.NewRunner(
		download.Descriptors(dir, entries),
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
	fmt.Fprintf(os.Stderr, "uploadfiles: %v\n", err)
	fmt.Fprintln(os.Stderr, "usage: uploadfiles [-mode dedupe|overwrite] [-c envfile] <directory>")
	fmt.Fprintln(os.Stderr, "required env: TARGET_SHOP_DOMAIN TARGET_ACCESS_TOKEN")
	os.Exit(1)
}
