// Command downloadfiles pulls every file of the source store into a local
// directory and writes a files.json index next to the assets. The directory
// is the handoff artifact for a later uploadfiles run.
//
// Usage:
//
//	downloadfiles [-c envfile] <directory>
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
	"github.com/storefront-tools/mediasync/internal/shopify"
)

func main() {
	buildinfo.PrintBuildData(os.Stdout)

	flag.String("c", "", "path to env file")
	flag.String("config", "", "path to env file")
	flag.Parse()

	dir := flag.Arg(0)
	if dir == "" {
		usage(fmt.Errorf("missing target directory argument"))
	}

	cfg, err := config.Load(flagx.EnvFileFlag())
	if err != nil {
		usage(err)
	}
	if err := cfg.RequireSource(); err != nil {
		usage(err)
	}

	logger := logging.New(cfg.LogLevel)
	defer logger.Sync()

	ctx := context.Background()
	source := shopify.NewClient(cfg.Source, cfg.APIVersion, logger)

	fmt.Printf("Downloading files from %s into %s\n", cfg.Source.ShopDomain, dir)

	d := download.NewDownloader(source.Files(ctx, cfg.PageSize), os.Stdout, logger)
	if _, err := d.Run(ctx, dir); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func usage(err error) {
	fmt.Fprintf(os.Stderr, "downloadfiles: %v\n", err)
	fmt.Fprintln(os.Stderr, "usage: downloadfiles [-c envfile] <directory>")
	fmt.Fprintln(os.Stderr, "required env: SOURCE_SHOP_DOMAIN SOURCE_ACCESS_TOKEN")
	os.Exit(1)
}
