package main

import (
	"context"
	"fmt"
	"os"

	"KWatch/internal/model"
	"KWatch/internal/render"

	"github.com/urfave/cli/v3"
)

func checkAction(ctx context.Context, cmd *cli.Command) error {
	a, err := setup(ctx, cmd.String("config"))
	if err != nil {
		return err
	}
	defer a.Close()

	items := a.watchlist.Items()
	if cmd.Args().Len() > 0 {
		items = items[:0:0]
		for _, sym := range cmd.Args().Slice() {
			item, ok := a.watchlist.Get(sym)
			if !ok {
				item = model.WatchItem{Symbol: sym}
			}
			items = append(items, item)
		}
	}

	readings := a.collector.Collect(ctx, items)
	fmt.Fprint(os.Stdout, render.Dashboard(readings, a.collector.Fetcher.Name()))
	return nil
}
