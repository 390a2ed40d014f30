package main

import (
	sitedexhttp "github.com/sitedex/sitedex/http"
)

// Run executes the serve command.
func (c *ServeCmd) Run(deps *Dependencies) error {
	server := sitedexhttp.NewServer(deps.Orchestrator, deps.Sessions, deps.Searcher, deps.Logger)
	return server.ListenAndServe(c.Addr)
}
