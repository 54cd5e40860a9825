package features

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"flarecast/internal/models"
)

func syntheticDocument(flareCount int, spacing time.Duration) *models.EventDocument {
	classes := []string{"M1.5", "X2.0", "C3.1"}
	start := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	doc := &models.EventDocument{Timestamp: "2024-04-01T00:00:00Z"}
	for i := 0; i < flareCount; i++ {
		begin := start.Add(time.Duration(i) * spacing)
		doc.SolarFlares = append(doc.SolarFlares, models.FlareEvent{
			ClassType: classes[i%len(classes)],
			BeginTime: begin.Format(models.EventTimeLayout),
			Duration:  models.Number(300 + 60*i),
		})
	}
	doc.GeomagneticStorms = []models.StormEvent{
		{StartTime: "2024-03-03T01:00Z", KpIndex: 5},
		{StartTime: "2024-03-07T01:00Z", KpIndex: 7},
		{StartTime: "2024-03-11T01:00Z", KpIndex: 4},
	}
	doc.CoronalMassEjections = []models.CMEEvent{
		{StartTime: "2024-03-05T02:00Z", Speed: 700},
		{StartTime: "2024-03-09T02:00Z", Speed: 450},
	}
	return doc
}

func TestBuildRowCount(t *testing.T) {
	for _, n := range []int{10, 12, 25} {
		t.Run(fmt.Sprintf("%d flares", n), func(t *testing.T) {
			doc := syntheticDocument(n, 48*time.Hour)
			ds, err := Build(doc)
			if err != nil {
				t.Fatalf("Build() returned error: %v", err)
			}
			// Interior flares only: the first and last are excluded.
			if ds.Len() != n-2 {
				t.Errorf("Build() produced %d rows, want %d", ds.Len(), n-2)
			}
			if len(ds.Intensity) != n-2 || len(ds.Regression) != n-2 || len(ds.Interval) != n-2 {
				t.Errorf("parallel sequences out of step: %d/%d/%d/%d",
					ds.Len(), len(ds.Intensity), len(ds.Regression), len(ds.Interval))
			}
		})
	}
}

func TestBuildInsufficientData(t *testing.T) {
	for _, n := range []int{0, 1, 5, 9} {
		t.Run(fmt.Sprintf("%d flares", n), func(t *testing.T) {
			doc := syntheticDocument(n, 48*time.Hour)
			_, err := Build(doc)
			if !errors.Is(err, ErrInsufficientData) {
				t.Errorf("Build() error = %v, want ErrInsufficientData", err)
			}
		})
	}
}

func TestBuildVectorShapes(t *testing.T) {
	doc := syntheticDocument(12, 48*time.Hour)
	ds, err := Build(doc)
	if err != nil {
		t.Fatalf("Build() returned error: %v", err)
	}

	for i := 0; i < ds.Len(); i++ {
		if len(ds.Classification[i]) != ClassifierFeatures {
			t.Fatalf("classification row %d has %d features, want %d",
				i, len(ds.Classification[i]), ClassifierFeatures)
		}
		if len(ds.Regression[i]) != RegressorFeatures {
			t.Fatalf("regression row %d has %d features, want %d",
				i, len(ds.Regression[i]), RegressorFeatures)
		}

		// The regression vector is the classification vector minus lag.
		k := 0
		for j, v := range ds.Classification[i] {
			if j == LagIndex {
				continue
			}
			if ds.Regression[i][k] != v {
				t.Errorf("row %d: regression[%d] = %v, classification[%d] = %v",
					i, k, ds.Regression[i][k], j, v)
			}
			k++
		}
	}
}

func TestBuildTemporalFeatures(t *testing.T) {
	doc := syntheticDocument(12, 48*time.Hour)
	ds, err := Build(doc)
	if err != nil {
		t.Fatalf("Build() returned error: %v", err)
	}

	for i := 0; i < ds.Len(); i++ {
		if lag := ds.Classification[i][LagIndex]; lag != 2 {
			t.Errorf("row %d lag = %v, want 2", i, lag)
		}
		if ds.Interval[i] != 2 {
			t.Errorf("row %d interval = %d, want 2", i, ds.Interval[i])
		}
		if label := ds.Intensity[i]; label < 1 || label > 5 {
			t.Errorf("row %d intensity = %d, out of range", i, label)
		}
	}
}

func TestBuildFloorsSubDayGaps(t *testing.T) {
	// Flares one hour apart: raw day differences are 0 but lag and interval
	// must be floored at 1.
	doc := syntheticDocument(12, time.Hour)
	ds, err := Build(doc)
	if err != nil {
		t.Fatalf("Build() returned error: %v", err)
	}

	for i := 0; i < ds.Len(); i++ {
		if lag := ds.Classification[i][LagIndex]; lag < 1 {
			t.Errorf("row %d lag = %v, want >= 1", i, lag)
		}
		if ds.Interval[i] < 1 {
			t.Errorf("row %d interval = %d, want >= 1", i, ds.Interval[i])
		}
	}
}

func TestBuildMalformedTimestampsDoNotFail(t *testing.T) {
	doc := syntheticDocument(12, 48*time.Hour)
	doc.SolarFlares[4].BeginTime = "Unknown"
	doc.SolarFlares[7].BeginTime = ""

	ds, err := Build(doc)
	if err != nil {
		t.Fatalf("Build() with malformed timestamps returned error: %v", err)
	}
	if ds.Len() != 10 {
		t.Errorf("Build() produced %d rows, want 10", ds.Len())
	}
	for i := 0; i < ds.Len(); i++ {
		if lag := ds.Classification[i][LagIndex]; lag < 1 {
			t.Errorf("row %d lag = %v, want >= 1", i, lag)
		}
		if ds.Interval[i] < 1 {
			t.Errorf("row %d interval = %d, want >= 1", i, ds.Interval[i])
		}
	}
}

func TestWeekday(t *testing.T) {
	tests := []struct {
		name string
		date time.Time
		want int
	}{
		{"monday", time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC), 0},
		{"tuesday", time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), 1},
		{"sunday", time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC), 6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Weekday(tt.date); got != tt.want {
				t.Errorf("Weekday(%v) = %d, want %d", tt.date, got, tt.want)
			}
		})
	}
}

func TestSortFlares(t *testing.T) {
	flares := []models.FlareEvent{
		{ClassType: "X1", BeginTime: "2024-03-09T01:00Z"},
		{ClassType: "C1", BeginTime: "2024-03-01T01:00Z"},
		{ClassType: "M1", BeginTime: "2024-03-05T01:00Z"},
	}
	SortFlares(flares)

	want := []string{"C1", "M1", "X1"}
	for i, w := range want {
		if flares[i].ClassType != w {
			t.Errorf("flares[%d] = %s, want %s", i, flares[i].ClassType, w)
		}
	}
}
