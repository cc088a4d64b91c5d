// Command rpa refreshes market-listing workbooks with search results and
// model-written reports.
package main

import "github.com/klytics/rpakit/cmd"

func main() {
	cmd.Execute()
}
