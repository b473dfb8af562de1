// Command podcast generates podcasts locally, without the API or queue.
//
// Usage:
//
//	podcast generate "The history of coffee" --scene dialogue --duration 5
//	podcast script "The history of coffee" -o coffee.json
//	podcast generate --script coffee.json --scene dialogue
//	podcast batch sample topics.yaml
//	podcast batch run topics.yaml --concurrency 2
//	podcast voices --scene panel
//	podcast estimate --duration 10
//
// Configuration comes from the environment and an optional .env file.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("Error:"), err)
		os.Exit(1)
	}
}
