package main

import (
	"fmt"

	"github.com/sitedex/sitedex"
)

// Run executes the search command.
func (c *SearchCmd) Run(deps *Dependencies) error {
	results, err := deps.Searcher.Search(deps.Ctx, c.Query, sitedex.SearchOptions{
		Collection: c.Collection,
		Domain:     c.Domain,
		Limit:      c.Limit,
	})
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", sitedex.ErrorMessage(err))
		return err
	}

	if len(results) == 0 {
		fmt.Fprintln(deps.Stdout, "No results.")
		return nil
	}

	for i, result := range results {
		fmt.Fprintf(deps.Stdout, "%d. [%.3f] %s (%s)\n", i+1, result.Score,
			result.Record.PageName, result.Record.PageURL)
		fmt.Fprintf(deps.Stdout, "   %s\n", result.Record.Text)
	}

	return nil
}
