// Command partials lints and resolves partial inclusions in a documentation
// site.
//
// Configuration is read from .partials.yml in the working directory (or the
// file named by --config / PARTIALS_CONFIG_FILE), then PARTIALS_* environment
// variables (PARTIALS_LATEST_VERSION, PARTIALS_OUTPUT_DIR, ...), then flags.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newApp().rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "partials:", err)
		os.Exit(1)
	}
}
