// main is the entry point for the pulse CLI.
package main

import (
	"github.com/8ria/pulse/cmd"
	"github.com/8ria/pulse/internal/contract"
	"github.com/8ria/pulse/internal/store"
)

func main() {
	defer store.CloseStores()

	if err := cmd.Execute(); err != nil {
		store.CloseStores()
		contract.LogFatal("Error", err)
	}
}
