// Package corpus loads and saves validation annotation sets: the paired
// automated extraction and ground truth for each paper in a corpus.
package corpus

import (
	"encoding/json"
	"os"
	"path/filepath"

	apperrors "github.com/paperval/paperval/internal/pkg/errors"
)

// Paper is one corpus item: the automated extraction plus the manually
// annotated ground truth. GroundTruth is nil until an annotator fills it in.
type Paper struct {
	AutomatedExtraction map[string]any `json:"automated_extraction"`
	GroundTruth         map[string]any `json:"ground_truth"`
	Notes               string         `json:"notes,omitempty"`
	Annotator           string         `json:"annotator,omitempty"`
	AnnotationDate      string         `json:"annotation_date,omitempty"`
}

// Annotated reports whether ground truth has been filled in.
func (p Paper) Annotated() bool {
	return p.GroundTruth != nil
}

// AnnotationSet is the on-disk annotation file shape.
type AnnotationSet struct {
	ValidationPapers map[string]Paper `json:"validation_papers"`
}

// CountAnnotated returns how many papers carry ground truth.
func (s AnnotationSet) CountAnnotated() int {
	n := 0
	for _, p := range s.ValidationPapers {
		if p.Annotated() {
			n++
		}
	}
	return n
}

// Load reads an annotation set from a JSON file.
func Load(path string) (*AnnotationSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeNotFound, "reading annotations", err)
	}
	return Parse(data)
}

// Parse decodes an annotation set from JSON bytes.
func Parse(data []byte) (*AnnotationSet, error) {
	var set AnnotationSet
	if err := json.Unmarshal(data, &set); err != nil {
		return nil, apperrors.ParseError("decoding annotations", err)
	}
	if set.ValidationPapers == nil {
		return nil, apperrors.AnnotationError("annotation file has no validation_papers")
	}
	return &set, nil
}

// WriteJSON writes any value as indented JSON, creating parent directories.
func WriteJSON(path string, v any) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return apperrors.InternalError("creating output directory", err)
		}
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return apperrors.InternalError("encoding output", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return apperrors.InternalError("writing output", err)
	}
	return nil
}
