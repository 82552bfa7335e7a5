package main

import (
	"context"
	"fmt"
	"os"

	"github.com/USA-RedDragon/configulator"
	"github.com/keystone-rf/p25ctrl/internal/cmd"
	"github.com/keystone-rf/p25ctrl/internal/config"
	"github.com/keystone-rf/p25ctrl/internal/sdk"
)

func main() {
	c := configulator.New[config.Config]()
	ctx := configulator.NewContext(context.Background(), c)

	root := cmd.NewCommand(sdk.Version, sdk.GitCommit)
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
