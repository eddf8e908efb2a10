package trends

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

type TimelinePoint struct {
	Time          int64
	FormattedTime string
	// one entry per compared keyword, in keyword order
	Values    []int
	IsPartial bool
}

type timelineEntry struct {
	Time          string `json:"time"`
	FormattedTime string `json:"formattedTime"`
	Value         []int  `json:"value"`
	IsPartial     bool   `json:"isPartial"`
}

type multilineResponse struct {
	Default struct {
		TimelineData []timelineEntry `json:"timelineData"`
	} `json:"default"`
}

// InterestOverTime resolves the TIMESERIES widget of a payload into
// relative search interest per timeline bucket. An empty result is not
// an error.
func (c *Client) InterestOverTime(ctx context.Context, p *Payload) ([]TimelinePoint, error) {
	if p.timeseries == nil {
		return nil, fmt.Errorf("payload has no timeseries widget")
	}

	body, err := c.widgetData(ctx, "/api/widgetdata/multiline", p, p.timeseries)
	if err != nil {
		return nil, fmt.Errorf("interest over time: %w", err)
	}

	var res multilineResponse
	err = json.Unmarshal(body, &res)
	if err != nil {
		return nil, fmt.Errorf("interest over time: %w", err)
	}

	points := make([]TimelinePoint, 0, len(res.Default.TimelineData))
	for _, entry := range res.Default.TimelineData {
		ts, err := strconv.ParseInt(entry.Time, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("interest over time: bad timestamp %q", entry.Time)
		}
		points = append(points, TimelinePoint{
			Time:          ts,
			FormattedTime: entry.FormattedTime,
			Values:        entry.Value,
			IsPartial:     entry.IsPartial,
		})
	}
	return points, nil
}

type Resolution string

const (
	ResolutionCountry Resolution = "COUNTRY"
	ResolutionRegion  Resolution = "REGION"
	ResolutionCity    Resolution = "CITY"
	ResolutionDma     Resolution = "DMA"
)

func ParseResolution(s string) (Resolution, error) {
	r := Resolution(strings.ToUpper(s))
	switch r {
	case ResolutionCountry, ResolutionRegion, ResolutionCity, ResolutionDma:
		return r, nil
	}
	return "", fmt.Errorf("invalid resolution %q, use COUNTRY, REGION, CITY, or DMA", s)
}

type RegionOptions struct {
	Resolution       Resolution // defaults to COUNTRY
	IncludeLowVolume bool
}

type RegionInterest struct {
	GeoCode string
	GeoName string
	// one entry per compared keyword, in keyword order
	Values []int
}

type geoMapEntry struct {
	GeoCode string `json:"geoCode"`
	GeoName string `json:"geoName"`
	Value   []int  `json:"value"`
}

type comparedGeoResponse struct {
	Default struct {
		GeoMapData []geoMapEntry `json:"geoMapData"`
	} `json:"default"`
}

// InterestByRegion resolves the GEO_MAP widget of a payload into
// relative interest per geographical unit.
func (c *Client) InterestByRegion(ctx context.Context, p *Payload, opts RegionOptions) ([]RegionInterest, error) {
	if p.geoMap == nil {
		return nil, fmt.Errorf("payload has no geo map widget")
	}
	resolution := opts.Resolution
	if resolution == "" {
		resolution = ResolutionCountry
	}

	w, err := patchWidgetRequest(*p.geoMap, map[string]any{
		"resolution":                 resolution,
		"includeLowSearchVolumeGeos": opts.IncludeLowVolume,
	})
	if err != nil {
		return nil, fmt.Errorf("interest by region: %w", err)
	}

	body, err := c.widgetData(ctx, "/api/widgetdata/comparedgeo", p, &w)
	if err != nil {
		return nil, fmt.Errorf("interest by region: %w", err)
	}

	var res comparedGeoResponse
	err = json.Unmarshal(body, &res)
	if err != nil {
		return nil, fmt.Errorf("interest by region: %w", err)
	}

	regions := make([]RegionInterest, 0, len(res.Default.GeoMapData))
	for _, entry := range res.Default.GeoMapData {
		regions = append(regions, RegionInterest{
			GeoCode: entry.GeoCode,
			GeoName: entry.GeoName,
			Values:  entry.Value,
		})
	}
	return regions, nil
}
