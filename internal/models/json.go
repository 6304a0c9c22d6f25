package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// JSON column helpers. The round plan, event payloads, dimension scores and
// evidence quotes are stored as JSON documents inside single columns, so each
// carrier type implements driver.Valuer and sql.Scanner.

func jsonValue(v interface{}) (driver.Value, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func jsonScan(dest interface{}, value interface{}) error {
	if value == nil {
		return nil
	}
	switch data := value.(type) {
	case []byte:
		return json.Unmarshal(data, dest)
	case string:
		return json.Unmarshal([]byte(data), dest)
	default:
		return fmt.Errorf("unsupported column type %T", value)
	}
}

// JSONMap is a free-form JSON object column.
type JSONMap map[string]interface{}

func (m JSONMap) Value() (driver.Value, error) {
	if m == nil {
		return jsonValue(JSONMap{})
	}
	return jsonValue(m)
}

func (m *JSONMap) Scan(value interface{}) error { return jsonScan(m, value) }

// Round is one element of a session's ordered round plan.
type Round struct {
	RoundNumber     int        `json:"round_number"`
	RoundType       string     `json:"round_type"`
	Title           string     `json:"title"`
	Prompt          string     `json:"prompt"`
	DurationMinutes int        `json:"duration_minutes"`
	Status          string     `json:"status"`
	StartedAt       *time.Time `json:"started_at,omitempty"`
	CompletedAt     *time.Time `json:"completed_at,omitempty"`
	Config          JSONMap    `json:"config,omitempty"`
}

// RoundPlan is the ordered round list embedded in a scope package row.
type RoundPlan []Round

func (p RoundPlan) Value() (driver.Value, error) {
	if p == nil {
		return jsonValue(RoundPlan{})
	}
	return jsonValue(p)
}

func (p *RoundPlan) Scan(value interface{}) error { return jsonScan(p, value) }

// ActiveRound returns the round currently marked active, or nil.
func (p RoundPlan) ActiveRound() *Round {
	for i := range p {
		if p[i].Status == RoundActive {
			return &p[i]
		}
	}
	return nil
}

// FindRound returns the round with the given number, or nil.
func (p RoundPlan) FindRound(roundNumber int) *Round {
	for i := range p {
		if p[i].RoundNumber == roundNumber {
			return &p[i]
		}
	}
	return nil
}

// DimensionScores maps rubric dimension names to numeric sub-scores.
type DimensionScores map[string]float64

func (d DimensionScores) Value() (driver.Value, error) {
	if d == nil {
		return jsonValue(DimensionScores{})
	}
	return jsonValue(d)
}

func (d *DimensionScores) Scan(value interface{}) error { return jsonScan(d, value) }

// EvidenceQuote is a verbatim quote backing a score or red flag.
type EvidenceQuote struct {
	Dimension string `json:"dimension,omitempty"`
	Quote     string `json:"quote"`
	Timestamp string `json:"timestamp,omitempty"`
}

// EvidenceList is a JSON array column of evidence quotes.
type EvidenceList []EvidenceQuote

func (l EvidenceList) Value() (driver.Value, error) {
	if l == nil {
		return jsonValue(EvidenceList{})
	}
	return jsonValue(l)
}

func (l *EvidenceList) Scan(value interface{}) error { return jsonScan(l, value) }

// StringList is a JSON array column of strings.
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return jsonValue(StringList{})
	}
	return jsonValue(l)
}

func (l *StringList) Scan(value interface{}) error { return jsonScan(l, value) }
