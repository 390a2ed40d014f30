package main

import (
	"fmt"

	"github.com/sitedex/sitedex"
)

// Run executes the embed command.
func (c *EmbedCmd) Run(deps *Dependencies) error {
	filename, err := deps.Orchestrator.StartEmbed(deps.Ctx, sitedex.EmbedSelector{
		SessionID: c.Session,
		Filename:  c.File,
	})
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", sitedex.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "Embedding %s\n", filename)

	// The embed stage runs on the pool; wait so the process doesn't exit
	// before it finishes.
	if deps.Pool != nil {
		if err := deps.Pool.Wait(deps.Ctx); err != nil {
			return err
		}
	}

	fmt.Fprintln(deps.Stdout, "Done")
	return nil
}
