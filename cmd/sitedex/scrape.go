package main

import (
	"fmt"
	"time"

	"github.com/sitedex/sitedex"
)

// Run executes the scrape command.
func (c *ScrapeCmd) Run(deps *Dependencies) error {
	session, err := deps.Orchestrator.StartScrape(deps.Ctx, sitedex.ScrapeRequest{
		URL:        c.URL,
		Purpose:    c.Purpose,
		Mode:       c.Mode,
		Collection: c.Collection,
	})
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", sitedex.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "Session %s created for %s\n", session.ID, c.URL)

	if c.NoWait {
		fmt.Fprintf(deps.Stdout, "Check progress with 'sitedex status %s'\n", session.ID)
		return nil
	}

	return waitForSession(deps, session.ID)
}

// waitForSession polls the session until it reaches a terminal state and
// prints progress along the way.
func waitForSession(deps *Dependencies, id string) error {
	lastPages := -1
	for {
		select {
		case <-deps.Ctx.Done():
			return deps.Ctx.Err()
		case <-time.After(500 * time.Millisecond):
		}

		session, err := deps.Sessions.FindSessionByID(deps.Ctx, id)
		if err != nil {
			return err
		}
		pages, err := deps.Sessions.CountPages(deps.Ctx, id)
		if err != nil {
			return err
		}
		if pages != lastPages {
			fmt.Fprintf(deps.Stdout, "  %s: %d pages scraped\n", session.Status, pages)
			lastPages = pages
		}

		if !session.Status.Terminal() {
			continue
		}
		if session.Status == sitedex.StatusFailed {
			return fmt.Errorf("scrape failed: %s", session.ErrorMessage)
		}
		fmt.Fprintf(deps.Stdout, "Completed with %d pages\n", pages)
		return nil
	}
}
