// Package candidates turns loosely structured model and search output into
// validated, deduplicated, score-ordered species candidates.
package candidates

import (
	"encoding/json"
	"math"
)

// Record is one proposed species identification. Records are immutable;
// construct them with NewRecord.
type Record struct {
	name   string
	score  float64
	reason string
}

// NewRecord builds a Record with score clamped into [0, 1]. A NaN score
// becomes 0.
func NewRecord(name string, score float64, reason string) Record {
	return Record{
		name:   name,
		score:  clamp(score),
		reason: reason,
	}
}

func (r Record) Name() string { return r.name }

func (r Record) Score() float64 { return r.score }

func (r Record) Reason() string { return r.reason }

type recordJSON struct {
	FishName    string  `json:"fish_name"`
	Score       float64 `json:"score"`
	ScoreReason string  `json:"score_reason"`
}

// MarshalJSON writes the record as {fish_name, score, score_reason}.
func (r Record) MarshalJSON() ([]byte, error) {
	return json.Marshal(recordJSON{
		FishName:    r.name,
		Score:       r.score,
		ScoreReason: r.reason,
	})
}

// UnmarshalJSON reads the MarshalJSON shape, clamping the score.
func (r *Record) UnmarshalJSON(data []byte) error {
	var v recordJSON
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*r = NewRecord(v.FishName, v.Score, v.ScoreReason)
	return nil
}

// Set is the normalized output of one provider call, before ranking.
type Set struct {
	Records         []Record
	ContainsSubject bool
	RejectionReason string
	// Dropped lists names removed because they are outside the vocabulary.
	Dropped []string
}

// RankedResult is the Top-N answer returned to clients.
type RankedResult struct {
	Candidates      []Record
	ContainsSubject bool
	RejectionReason string
}

type rankedJSON struct {
	ImageContainsFish bool     `json:"image_contains_fish"`
	RejectionReason   string   `json:"rejection_reason,omitempty"`
	Results           []Record `json:"results"`
}

// MarshalJSON writes {image_contains_fish, rejection_reason?, results}.
// Results is always an array.
func (r RankedResult) MarshalJSON() ([]byte, error) {
	results := r.Candidates
	if results == nil {
		results = []Record{}
	}
	return json.Marshal(rankedJSON{
		ImageContainsFish: r.ContainsSubject,
		RejectionReason:   r.RejectionReason,
		Results:           results,
	})
}

func clamp(score float64) float64 {
	switch {
	case math.IsNaN(score):
		return 0
	case score < 0:
		return 0
	case score > 1:
		return 1
	}
	return score
}
