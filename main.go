// Package main is the entry point for the unpuzzle application.
package main

import (
	"github.com/samber/lo"
	"github.com/unpuzzle-app/unpuzzle/cmd"
	"github.com/unpuzzle-app/unpuzzle/config"
	"github.com/unpuzzle-app/unpuzzle/internal/cache"
	"github.com/unpuzzle-app/unpuzzle/internal/sync"
	"github.com/unpuzzle-app/unpuzzle/log"
)

func main() {
	lo.Must0(config.Setup())
	lo.Must0(log.Setup())

	// Initialize asynchronous background processes for cache maintenance and synchronization.
	go cache.CollectGarbage()
	go sync.ReconcileFailures()

	cmd.Execute()
}
