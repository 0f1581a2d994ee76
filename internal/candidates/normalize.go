package candidates

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/JaimeStill/marlin/pkg/formatting"
)

var (
	// ErrMalformedOutput indicates provider output holds no parseable JSON object.
	ErrMalformedOutput = errors.New("malformed provider output")
	// ErrSchemaViolation indicates a JSON object that does not match the candidate schema.
	ErrSchemaViolation = errors.New("candidate schema violation")
)

// Vocabulary resolves provider-supplied names to allowed species names.
type Vocabulary interface {
	Canonical(name string) (string, bool)
}

var (
	resultKeys  = []string{"results", "top_candidates", "candidates"}
	nameKeys    = []string{"fish_name", "english_name", "name", "species"}
	scoreKeys   = []string{"score", "confidence", "similarity"}
	reasonKeys  = []string{"score_reason", "reason", "rationale"}
	subjectKeys = []string{"image_contains_fish", "contains_subject"}
	rejectKeys  = []string{"rejection_reason"}
)

// ExtractJSONPayload returns the first balanced JSON object in raw after
// cleaning stray formatting characters. Prose and code fences around the
// object are tolerated.
func ExtractJSONPayload(raw string) (string, error) {
	cleaned := formatting.Clean(raw)

	rest := cleaned
	for {
		obj, err := formatting.ExtractObject(rest)
		if err != nil {
			return "", fmt.Errorf("%w: %w", ErrMalformedOutput, err)
		}
		if json.Valid([]byte(obj)) {
			return obj, nil
		}
		idx := strings.Index(rest, obj)
		rest = rest[idx+1:]
	}
}

// Normalize extracts, decodes, and validates raw provider output.
func Normalize(raw string, vocab Vocabulary) (Set, error) {
	payload, err := ExtractJSONPayload(raw)
	if err != nil {
		return Set{}, err
	}

	dec := json.NewDecoder(strings.NewReader(payload))
	dec.UseNumber()

	var tree map[string]any
	if err := dec.Decode(&tree); err != nil {
		return Set{}, fmt.Errorf("%w: %w", ErrMalformedOutput, err)
	}

	return ParseCandidates(tree, vocab)
}

// ParseCandidates validates a decoded JSON tree into a candidate Set.
//
// The results array may appear under results, top_candidates, or
// candidates. Each element needs a string name and a numeric score (a
// numeric string is accepted); the reason defaults to empty. Names outside
// vocab are dropped. An absent subject flag means the subject is present.
// When the subject is absent, the results array may be missing.
func ParseCandidates(tree map[string]any, vocab Vocabulary) (Set, error) {
	set := Set{ContainsSubject: true}

	if v, ok := lookup(tree, subjectKeys); ok && v != nil {
		b, err := toBool(v)
		if err != nil {
			return Set{}, fmt.Errorf("%w: image_contains_fish: %w", ErrSchemaViolation, err)
		}
		set.ContainsSubject = b
	}

	if v, ok := lookup(tree, rejectKeys); ok && v != nil {
		if s, ok := v.(string); ok {
			set.RejectionReason = strings.TrimSpace(s)
		}
	}

	rawResults, ok := lookup(tree, resultKeys)
	if !ok || rawResults == nil {
		if !set.ContainsSubject {
			return set, nil
		}
		return Set{}, fmt.Errorf("%w: missing results array", ErrSchemaViolation)
	}

	items, ok := rawResults.([]any)
	if !ok {
		return Set{}, fmt.Errorf("%w: results is %T, not an array", ErrSchemaViolation, rawResults)
	}

	set.Records = make([]Record, 0, len(items))
	for i, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			return Set{}, fmt.Errorf("%w: results[%d] is %T, not an object", ErrSchemaViolation, i, item)
		}

		rec, known, err := parseRecord(obj, vocab)
		if err != nil {
			return Set{}, fmt.Errorf("%w: results[%d]: %w", ErrSchemaViolation, i, err)
		}
		if !known {
			set.Dropped = append(set.Dropped, rec.name)
			continue
		}
		set.Records = append(set.Records, rec)
	}

	return set, nil
}

// Hit is a named, scored match produced by a non-model source such as a
// similarity search.
type Hit struct {
	Name   string
	Score  float64
	Reason string
}

// FromHits converts similarity hits into a candidate Set, dropping names
// outside vocab.
func FromHits(hits []Hit, vocab Vocabulary) Set {
	set := Set{
		ContainsSubject: true,
		Records:         make([]Record, 0, len(hits)),
	}
	for _, h := range hits {
		name, ok := vocab.Canonical(h.Name)
		if !ok {
			set.Dropped = append(set.Dropped, h.Name)
			continue
		}
		set.Records = append(set.Records, NewRecord(name, h.Score, h.Reason))
	}
	return set
}

func parseRecord(obj map[string]any, vocab Vocabulary) (Record, bool, error) {
	rawName, ok := lookup(obj, nameKeys)
	if !ok {
		return Record{}, false, errors.New("missing name")
	}
	name, ok := rawName.(string)
	if !ok {
		return Record{}, false, fmt.Errorf("name is %T, not a string", rawName)
	}

	rawScore, ok := lookup(obj, scoreKeys)
	if !ok {
		return Record{}, false, errors.New("missing score")
	}
	score, err := toFloat(rawScore)
	if err != nil {
		return Record{}, false, fmt.Errorf("score: %w", err)
	}

	var reason string
	if rawReason, ok := lookup(obj, reasonKeys); ok && rawReason != nil {
		s, ok := rawReason.(string)
		if !ok {
			return Record{}, false, fmt.Errorf("reason is %T, not a string", rawReason)
		}
		reason = strings.TrimSpace(s)
	}

	canonical, known := vocab.Canonical(name)
	if !known {
		return NewRecord(strings.TrimSpace(name), score, reason), false, nil
	}
	return NewRecord(canonical, score, reason), true, nil
}

func lookup(obj map[string]any, keys []string) (any, bool) {
	for _, k := range keys {
		if v, ok := obj[k]; ok {
			return v, true
		}
	}
	return nil, false
}

func toFloat(v any) (float64, error) {
	switch n := v.(type) {
	case json.Number:
		return n.Float64()
	case float64:
		return n, nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, fmt.Errorf("%q is not numeric", n)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("%T is not numeric", v)
	}
}

func toBool(v any) (bool, error) {
	switch b := v.(type) {
	case bool:
		return b, nil
	case string:
		return strconv.ParseBool(strings.TrimSpace(b))
	default:
		return false, fmt.Errorf("%T is not a boolean", v)
	}
}
