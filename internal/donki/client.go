// Package donki fetches space-weather event series from the NASA DONKI API
// and normalizes them into the canonical event document consumed by the
// training and inference paths.
package donki

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"flarecast/internal/models"
)

const defaultBaseURL = "https://api.nasa.gov/DONKI"

// Client is a client for the NASA DONKI space weather API. Get an API key
// from https://api.nasa.gov/.
type Client struct {
	client  *http.Client
	baseURL string
	apiKey  string
}

func NewClient(apiKey string) *Client {
	return &Client{
		client:  &http.Client{Timeout: 30 * time.Second},
		baseURL: defaultBaseURL,
		apiKey:  apiKey,
	}
}

type rawFlare struct {
	ClassType string `json:"classType"`
	BeginTime string `json:"beginTime"`
	PeakTime  string `json:"peakTime"`
	EndTime   string `json:"endTime"`
}

type rawStorm struct {
	StartTime  string `json:"startTime"`
	AllKpIndex []struct {
		KpIndex models.Number `json:"kpIndex"`
	} `json:"allKpIndex"`
}

type rawCME struct {
	StartTime   string `json:"startTime"`
	CMEAnalyses []struct {
		Speed models.Number `json:"speed"`
		Type  string        `json:"type"`
	} `json:"cmeAnalyses"`
}

type rawSEP struct {
	EventTime   string `json:"eventTime"`
	Instruments []struct {
		DisplayName string `json:"displayName"`
	} `json:"instruments"`
}

type rawIPS struct {
	EventTime string `json:"eventTime"`
	Location  string `json:"location"`
}

// FetchDocument pulls all five event series for the date window and
// normalizes the nested API payloads into the flat document schema.
func (c *Client) FetchDocument(start, end time.Time) (*models.EventDocument, error) {
	var flares []rawFlare
	if err := c.get("FLR", start, end, &flares); err != nil {
		return nil, fmt.Errorf("failed to fetch solar flares: %w", err)
	}
	log.Printf("Found %d solar flares", len(flares))

	var storms []rawStorm
	if err := c.get("GST", start, end, &storms); err != nil {
		return nil, fmt.Errorf("failed to fetch geomagnetic storms: %w", err)
	}
	log.Printf("Found %d geomagnetic storms", len(storms))

	var cmes []rawCME
	if err := c.get("CME", start, end, &cmes); err != nil {
		return nil, fmt.Errorf("failed to fetch CMEs: %w", err)
	}
	log.Printf("Found %d CMEs", len(cmes))

	var seps []rawSEP
	if err := c.get("SEP", start, end, &seps); err != nil {
		return nil, fmt.Errorf("failed to fetch SEP events: %w", err)
	}
	log.Printf("Found %d SEP events", len(seps))

	var shocks []rawIPS
	if err := c.get("IPS", start, end, &shocks); err != nil {
		return nil, fmt.Errorf("failed to fetch IPS events: %w", err)
	}
	log.Printf("Found %d IPS events", len(shocks))

	doc := &models.EventDocument{
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	for _, f := range flares {
		doc.SolarFlares = append(doc.SolarFlares, models.FlareEvent{
			ClassType: f.ClassType,
			BeginTime: f.BeginTime,
			PeakTime:  f.PeakTime,
			EndTime:   f.EndTime,
			Duration:  EstimateDuration(f.BeginTime, f.PeakTime, f.EndTime),
		})
	}
	for _, s := range storms {
		storm := models.StormEvent{StartTime: s.StartTime}
		if len(s.AllKpIndex) > 0 {
			storm.KpIndex = s.AllKpIndex[0].KpIndex
		}
		doc.GeomagneticStorms = append(doc.GeomagneticStorms, storm)
	}
	for _, cme := range cmes {
		event := models.CMEEvent{StartTime: cme.StartTime}
		if len(cme.CMEAnalyses) > 0 {
			event.Speed = cme.CMEAnalyses[0].Speed
			event.Type = cme.CMEAnalyses[0].Type
		}
		doc.CoronalMassEjections = append(doc.CoronalMassEjections, event)
	}
	for _, sep := range seps {
		event := models.SEPEvent{EventTime: sep.EventTime}
		if len(sep.Instruments) > 0 {
			event.Source = sep.Instruments[0].DisplayName
		}
		doc.SolarEnergeticParticles = append(doc.SolarEnergeticParticles, event)
	}
	for _, shock := range shocks {
		doc.InterplanetaryShocks = append(doc.InterplanetaryShocks, models.IPSEvent{
			EventTime: shock.EventTime,
			Location:  shock.Location,
		})
	}

	return doc, nil
}

func (c *Client) get(endpoint string, start, end time.Time, out interface{}) error {
	url := fmt.Sprintf("%s/%s?startDate=%s&endDate=%s&api_key=%s",
		c.baseURL, endpoint, start.Format("2006-01-02"), end.Format("2006-01-02"), c.apiKey)

	resp, err := c.client.Get(url)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("API error: status %d, body: %s", resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// EstimateDuration derives a flare's duration in seconds: end minus begin
// when an end time exists, otherwise peak minus begin, floored at 1 second.
// Without a parseable begin time (or any end/peak) the duration is 0.
func EstimateDuration(begin, peak, end string) models.Number {
	beginT, ok := models.ParseEventTime(begin)
	if !ok {
		return 0
	}
	if end != "" {
		if endT, ok := models.ParseEventTime(end); ok {
			return floorSeconds(endT.Sub(beginT))
		}
	}
	if peak != "" {
		if peakT, ok := models.ParseEventTime(peak); ok {
			return floorSeconds(peakT.Sub(beginT))
		}
	}
	return 0
}

func floorSeconds(d time.Duration) models.Number {
	seconds := d.Seconds()
	if seconds < 1 {
		seconds = 1
	}
	return models.Number(seconds)
}
