// Command pokestats clusters Pokémon base stats into named combat profiles.
package main

import (
	"os"

	"github.com/huangsam/pokestats/cmd"
	"github.com/huangsam/pokestats/internal/contract"
	"github.com/huangsam/pokestats/internal/iocache"
)

func main() {
	os.Exit(run())
}

// run keeps deferred cleanup ahead of os.Exit.
func run() int {
	defer iocache.CloseCaching()

	cmd.SetCacheManager(iocache.Manager)
	err := cmd.Execute()
	if stopErr := cmd.StopProfiling(); stopErr != nil {
		contract.LogWarn("Failed to stop profiling", stopErr)
	}
	if err != nil {
		contract.LogWarn("Command failed", err)
		return 1
	}
	return 0
}
