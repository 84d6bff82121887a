package main

import (
	"context"
	"wholefoods-scraper/cmd/foodscraper/commands"
	"wholefoods-scraper/lib/util/serviceutil"
)

func main() {
	ctx := serviceutil.SignalContext(context.Background())
	commands.ExecuteContext(ctx)
}
