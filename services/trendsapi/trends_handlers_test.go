package trendsapi

import (
	"testing"

	"github.com/Noureddine-Aitelhaj/pytrends-cli/lib/trends"

	"github.com/google/go-cmp/cmp"
)

func TestTimelineRecords(t *testing.T) {
	points := []trends.TimelinePoint{
		{Time: 1700000000, FormattedTime: "Nov 14, 2023", Values: []int{42, 7}},
		// a short value row only fills the keywords it has data for
		{Time: 1700086400, FormattedTime: "Nov 15, 2023", Values: []int{55}, IsPartial: true},
	}
	got := timelineRecords(points, []string{"go", "rust"})
	want := []map[string]any{
		{"date": "2023-11-14 22:13:20", "isPartial": false, "go": 42, "rust": 7},
		{"date": "2023-11-15 22:13:20", "isPartial": true, "go": 55},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected records (-want +got):\n%s", diff)
	}
}

func TestRegionRecords(t *testing.T) {
	regions := []trends.RegionInterest{
		{GeoCode: "US", GeoName: "United States", Values: []int{87}},
		{GeoCode: "DE", GeoName: "Germany", Values: []int{31}},
	}

	got := regionRecords(regions, []string{"go"}, false)
	want := []map[string]any{
		{"geoName": "United States", "go": 87},
		{"geoName": "Germany", "go": 31},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected records (-want +got):\n%s", diff)
	}

	withCodes := regionRecords(regions, []string{"go"}, true)
	if withCodes[0]["geoCode"] != "US" {
		t.Fatalf("expected geoCode to be included, got %v", withCodes[0])
	}
}
