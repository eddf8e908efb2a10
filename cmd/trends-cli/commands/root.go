package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/Noureddine-Aitelhaj/pytrends-cli/lib/serviceutil"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var outputDir *string

var rootCmd = &cobra.Command{
	Use:   "trends-cli",
	Short: "trends-cli scrapes google trends data and youtube transcripts into json files.",
}

func init() {
	outputDir = rootCmd.PersistentFlags().StringP("output", "o", "", "Directory to write result files to.")
	rootCmd.MarkPersistentFlagRequired("output")
}

func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// filenames carry the scrape time so repeated runs never clobber each
// other
func timestamp() string {
	return time.Now().Format("20060102_150405")
}

func saveToFile(data any, path string) {
	err := os.MkdirAll(*outputDir, 0755)
	if err != nil {
		serviceutil.Fatal("create output directory", err)
	}
	body, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		serviceutil.Fatal("encode result", err)
	}
	err = os.WriteFile(path, body, 0644)
	if err != nil {
		serviceutil.Fatal("write result", err)
	}
	fmt.Printf("Data saved to %s\n", path)
}

func newTable() table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(os.Stdout)
	return t
}
