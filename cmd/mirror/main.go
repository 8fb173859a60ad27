// Command mirror hosts the wrong-reflection actor: a live simulation with a
// debug dashboard, headless scenario replay, a frame watcher and a trigger
// client for the choreography API.
package main

import "os"

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
