package commands

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/Noureddine-Aitelhaj/pytrends-cli/lib/serviceutil"
	"github.com/Noureddine-Aitelhaj/pytrends-cli/lib/trends"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var (
	trendsKeywords  *string
	trendsTimeframe *string
	trendsGeo       *string
	trendsQueryType *string
)

func init() {
	trendsKeywords = trendsCmd.Flags().StringP("keywords", "k", "", "Keywords (comma separated).")
	trendsTimeframe = trendsCmd.Flags().StringP("timeframe", "t", trends.DefaultTimeframe, "Timeframe to query over.")
	trendsGeo = trendsCmd.Flags().StringP("geo", "g", "", "Geography, empty means global.")
	trendsQueryType = trendsCmd.Flags().StringP(
		"query-type", "q", "interest_over_time",
		"One of interest_over_time, related_queries, interest_by_region.",
	)
	trendsCmd.MarkFlagRequired("keywords")
	rootCmd.AddCommand(trendsCmd)
}

func splitKeywords(raw string) []string {
	parts := strings.Split(raw, ",")
	keywords := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part != "" {
			keywords = append(keywords, part)
		}
	}
	return keywords
}

func timelineRecords(points []trends.TimelinePoint, keywords []string) []map[string]any {
	records := make([]map[string]any, 0, len(points))
	for _, point := range points {
		record := map[string]any{
			"date":      time.Unix(point.Time, 0).UTC().Format("2006-01-02 15:04:05"),
			"isPartial": point.IsPartial,
		}
		for i, keyword := range keywords {
			if i < len(point.Values) {
				record[keyword] = point.Values[i]
			}
		}
		records = append(records, record)
	}
	return records
}

func regionRecords(regions []trends.RegionInterest, keywords []string) []map[string]any {
	records := make([]map[string]any, 0, len(regions))
	for _, region := range regions {
		record := map[string]any{"geoName": region.GeoName}
		for i, keyword := range keywords {
			if i < len(region.Values) {
				record[keyword] = region.Values[i]
			}
		}
		records = append(records, record)
	}
	return records
}

var trendsCmd = &cobra.Command{
	Use:   "trends --keywords <kw1,kw2> [--query-type <type>]",
	Short: "Scrapes google trends data for a set of keywords and writes it to a json file.",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		keywords := splitKeywords(*trendsKeywords)
		if len(keywords) == 0 {
			serviceutil.Fatal("parse keywords", fmt.Errorf("no keywords given"))
		}

		client, err := trends.NewClient(ctx, trends.ClientOptions{})
		if err != nil {
			serviceutil.Fatal("initialize trends client", err)
		}
		payload, err := client.Explore(ctx, trends.ExploreOptions{
			Keywords:  keywords,
			Timeframe: *trendsTimeframe,
			Geo:       *trendsGeo,
		})
		if err != nil {
			serviceutil.Fatal("build trends payload", err)
		}

		var result any
		records := 0
		switch *trendsQueryType {
		case "interest_over_time":
			points, err := client.InterestOverTime(ctx, payload)
			if err != nil {
				serviceutil.Fatal("get interest over time", err)
			}
			if len(points) == 0 {
				result = map[string]any{"error": "No data found", "keywords": keywords}
				break
			}
			records = len(points)
			result = map[string]any{
				"keywords":  keywords,
				"timeframe": *trendsTimeframe,
				"geo":       *trendsGeo,
				"data":      timelineRecords(points, keywords),
			}
		case "related_queries":
			data := map[string]trends.RelatedQueries{}
			for i, keyword := range keywords {
				related, err := client.RelatedQueriesFor(ctx, payload, i)
				if err != nil {
					serviceutil.Fatal("get related queries", err)
				}
				data[keyword] = related
				records += len(related.Top) + len(related.Rising)
			}
			result = map[string]any{
				"keywords":  keywords,
				"timeframe": *trendsTimeframe,
				"geo":       *trendsGeo,
				"data":      data,
			}
		case "interest_by_region":
			regions, err := client.InterestByRegion(ctx, payload, trends.RegionOptions{})
			if err != nil {
				serviceutil.Fatal("get interest by region", err)
			}
			if len(regions) == 0 {
				result = map[string]any{"error": "No data found", "keywords": keywords}
				break
			}
			records = len(regions)
			result = map[string]any{
				"keywords":   keywords,
				"timeframe":  *trendsTimeframe,
				"geo":        *trendsGeo,
				"resolution": trends.ResolutionCountry,
				"data":       regionRecords(regions, keywords),
			}
		default:
			serviceutil.Fatal("parse query type", fmt.Errorf(
				"unsupported query type %q, use interest_over_time, related_queries, or interest_by_region",
				*trendsQueryType,
			))
		}

		path := filepath.Join(*outputDir, fmt.Sprintf("%s_%s.json", *trendsQueryType, timestamp()))
		saveToFile(result, path)

		t := newTable()
		t.AppendHeader(table.Row{"query type", "keywords", "records", "output"})
		t.AppendRow(table.Row{*trendsQueryType, strings.Join(keywords, ", "), records, path})
		t.Render()
	},
}
