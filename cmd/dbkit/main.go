// Command dbkit is a small database shell over the dbkit pool: ping a
// database, list its tables, run queries and statements. The target is
// given with --url or the DBKIT_URL environment variable, in URL or
// keyword form.
package main

import "os"

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
