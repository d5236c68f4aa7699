// Package series standardizes the timestamped payloads shared between price ingestion and scoring.
package series

import (
	"math"
	"sort"
	"time"
)

// Point is a single timestamped observation. Value is NaN when the source had no print.
type Point struct {
	Time  time.Time
	Value float64
}

// Series is a named, timestamp-indexed run of observations.
type Series struct {
	Symbol string
	Points []Point
}

// Bar models one OHLCV candle as returned by a price source.
type Bar struct {
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// FromBars builds a close-price series from bars.
func FromBars(symbol string, bars []Bar) Series {
	points := make([]Point, 0, len(bars))
	for _, b := range bars {
		points = append(points, Point{Time: b.Time, Value: b.Close})
	}
	return Series{Symbol: symbol, Points: points}
}

// Len reports the number of observations, missing ones included.
func (s Series) Len() int { return len(s.Points) }

// Index maps each timestamp to its value. Later duplicates win.
func (s Series) Index() map[int64]float64 {
	out := make(map[int64]float64, len(s.Points))
	for _, p := range s.Points {
		out[p.Time.UnixNano()] = p.Value
	}
	return out
}

// Resample buckets observations by bucket width and keeps the last non-missing value in each.
// A non-positive bucket returns the series unchanged.
func Resample(s Series, bucket time.Duration) Series {
	if bucket <= 0 {
		return s
	}
	last := make(map[int64]Point)
	for _, p := range s.Points {
		if math.IsNaN(p.Value) {
			continue
		}
		start := p.Time.Truncate(bucket)
		key := start.UnixNano()
		prev, ok := last[key]
		if ok && prev.Time.After(p.Time) {
			continue
		}
		last[key] = Point{Time: p.Time, Value: p.Value}
	}

	points := make([]Point, 0, len(last))
	for key, p := range last {
		points = append(points, Point{Time: time.Unix(0, key).In(p.Time.Location()), Value: p.Value})
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Time.Before(points[j].Time) })
	return Series{Symbol: s.Symbol, Points: points}
}
