// Command mixit assembles long-form videos from folders of clips and music.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
)

const appName = "mixit"

// appVersion is overridden at build time with -ldflags "-X main.appVersion=...".
var appVersion = "dev"

func main() {
	cmd := newRootCommand()
	if err := cmd.Execute(); err != nil {
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}
