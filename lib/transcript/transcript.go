package transcript

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"html"
	"regexp"
	"strings"
	"time"

	"github.com/Noureddine-Aitelhaj/pytrends-cli/lib/restyutil"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("scrapers/transcript")

var restyInstrumentOutput restyutil.InstrumentOutput

func SetRestyInstrumentOutput(output restyutil.InstrumentOutput) {
	restyInstrumentOutput = output
}

const baseUrl = "https://www.youtube.com"

var ErrTranscriptsDisabled = fmt.Errorf("transcripts are disabled for this video")
var ErrNoTranscript = fmt.Errorf("no transcript found for this video")

// Client fetches video transcripts by scraping the caption track list
// off the watch page and downloading the timedtext document it points
// at.
type Client struct {
	Http *resty.Client
}

type ClientOptions struct {
	// overrides the youtube endpoint, used by tests
	BaseUrl string
}

func NewClient(opts ClientOptions) *Client {
	endpoint := opts.BaseUrl
	if endpoint == "" {
		endpoint = baseUrl
	}

	client := resty.New()
	client.SetBaseURL(endpoint)
	client.SetTimeout(time.Second * 30)

	restyutil.InstrumentClient(client, tracer, restyInstrumentOutput)

	return &Client{Http: client}
}

// ExtractVideoID accepts youtu.be links, youtube.com watch links, and
// bare video ids.
func ExtractVideoID(s string) string {
	if strings.Contains(s, "youtu.be") {
		tail := s[strings.LastIndexByte(s, '/')+1:]
		id, _, _ := strings.Cut(tail, "?")
		return id
	}
	if strings.Contains(s, "youtube.com") {
		_, after, found := strings.Cut(s, "v=")
		if found {
			id, _, _ := strings.Cut(after, "&")
			return id
		}
	}
	return s
}

type Segment struct {
	Text string `json:"text"`
	// seconds from the start of the video
	Start    float64 `json:"start"`
	Duration float64 `json:"duration"`
}

type Transcript struct {
	VideoID  string    `json:"video_id"`
	Language string    `json:"language"`
	Segments []Segment `json:"transcript"`
}

// FullText joins all segments into a single space-separated string.
func (t Transcript) FullText() string {
	parts := make([]string, len(t.Segments))
	for i, seg := range t.Segments {
		parts[i] = seg.Text
	}
	return strings.Join(parts, " ")
}

type captionTrack struct {
	BaseUrl      string `json:"baseUrl"`
	LanguageCode string `json:"languageCode"`
	Kind         string `json:"kind"`
}

// the caption track objects never nest arrays so a non-greedy match is
// enough to carve the list out of the player config
var captionTracksRe = regexp.MustCompile(`"captionTracks":(\[.*?\])`)

// Fetch downloads the transcript of a video, preferring the given
// language codes in order and falling back to the default track.
func (c *Client) Fetch(ctx context.Context, videoIDOrURL string, languages []string) (Transcript, error) {
	videoID := ExtractVideoID(videoIDOrURL)

	res, err := c.Http.R().
		SetContext(ctx).
		SetQueryParam("v", videoID).
		Get("/watch")
	if err != nil {
		return Transcript{}, fmt.Errorf("fetch watch page: %w", err)
	}
	if res.StatusCode() != 200 {
		return Transcript{}, fmt.Errorf("fetch watch page: status %d", res.StatusCode())
	}

	body := res.String()
	if !strings.Contains(body, `"captions":`) {
		return Transcript{}, ErrTranscriptsDisabled
	}

	match := captionTracksRe.FindStringSubmatch(body)
	if match == nil {
		return Transcript{}, ErrNoTranscript
	}
	var tracks []captionTrack
	err = json.Unmarshal([]byte(match[1]), &tracks)
	if err != nil {
		return Transcript{}, fmt.Errorf("parse caption tracks: %w", err)
	}
	if len(tracks) == 0 {
		return Transcript{}, ErrNoTranscript
	}

	track := pickTrack(tracks, languages)
	segments, err := c.fetchTimedText(ctx, track.BaseUrl)
	if err != nil {
		return Transcript{}, err
	}

	return Transcript{
		VideoID:  videoID,
		Language: track.LanguageCode,
		Segments: segments,
	}, nil
}

func pickTrack(tracks []captionTrack, languages []string) captionTrack {
	for _, lang := range languages {
		lang = strings.TrimSpace(lang)
		for _, track := range tracks {
			if track.LanguageCode == lang {
				return track
			}
		}
	}
	return tracks[0]
}

type timedTextDoc struct {
	Texts []struct {
		Start    float64 `xml:"start,attr"`
		Duration float64 `xml:"dur,attr"`
		Body     string  `xml:",chardata"`
	} `xml:"text"`
}

func (c *Client) fetchTimedText(ctx context.Context, link string) ([]Segment, error) {
	res, err := c.Http.R().
		SetContext(ctx).
		Get(link)
	if err != nil {
		return nil, fmt.Errorf("fetch timedtext: %w", err)
	}
	if res.StatusCode() != 200 {
		return nil, fmt.Errorf("fetch timedtext: status %d", res.StatusCode())
	}

	var doc timedTextDoc
	err = xml.Unmarshal(res.Body(), &doc)
	if err != nil {
		return nil, fmt.Errorf("parse timedtext: %w", err)
	}

	segments := make([]Segment, 0, len(doc.Texts))
	for _, text := range doc.Texts {
		// the xml decoder unescapes once, the captions are escaped twice
		segments = append(segments, Segment{
			Text:     html.UnescapeString(text.Body),
			Start:    text.Start,
			Duration: text.Duration,
		})
	}
	return segments, nil
}
