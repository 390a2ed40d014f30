package main

import (
	"fmt"
	"time"

	"github.com/sitedex/sitedex"
)

// Run executes the status command.
func (c *StatusCmd) Run(deps *Dependencies) error {
	session, err := deps.Sessions.FindSessionByID(deps.Ctx, c.SessionID)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", sitedex.ErrorMessage(err))
		return err
	}

	pages, err := deps.Sessions.CountPages(deps.Ctx, c.SessionID)
	if err != nil {
		return err
	}

	fmt.Fprintf(deps.Stdout, "Session:  %s\n", session.ID)
	fmt.Fprintf(deps.Stdout, "Status:   %s\n", session.Status)
	fmt.Fprintf(deps.Stdout, "URL:      %s\n", session.URL)
	fmt.Fprintf(deps.Stdout, "Pages:    %d\n", pages)
	fmt.Fprintf(deps.Stdout, "Created:  %s\n", session.CreatedAt.Format(time.RFC3339))
	fmt.Fprintf(deps.Stdout, "Updated:  %s\n", session.UpdatedAt.Format(time.RFC3339))
	if session.ErrorMessage != "" {
		fmt.Fprintf(deps.Stdout, "Error:    %s\n", session.ErrorMessage)
	}

	return nil
}
