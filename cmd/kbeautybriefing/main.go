// kbeautybriefing scrapes K-beauty sources, asks an LLM for trends and publishes a daily briefing.
//
// Usage:
//
//	kbeautybriefing serve
//	kbeautybriefing run [--dry-run] [--format all|markdown|json|notion] [--fixture]
//	kbeautybriefing cleanup [--days N]
//	kbeautybriefing migrate
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
