package ml

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
)

// artifactFormatVersion is bumped whenever the node encoding changes.
const artifactFormatVersion = 1

// ErrArtifactCorrupt marks an artifact that cannot be loaded into a
// usable classifier.
var ErrArtifactCorrupt = errors.New("model artifact corrupt")

// The artifact records the feature order it was trained with so that
// a load into a binary with a diverged ordering fails instead of
// silently mispredicting.
type artifactFile struct {
	FormatVersion int        `json:"format_version"`
	Features      []string   `json:"features"`
	MaxDepth      int        `json:"max_depth"`
	Nodes         []TreeNode `json:"nodes"`
}

// SaveArtifact serializes a fitted tree to path. The write is atomic:
// the bytes go to a temp file in the destination directory which is
// renamed over any existing artifact, so a partial artifact never
// becomes visible.
func SaveArtifact(model *DecisionTree, path string) error {
	if model == nil || len(model.nodes) == 0 {
		return errors.New("model not trained")
	}

	payload, err := json.Marshal(artifactFile{
		FormatVersion: artifactFormatVersion,
		Features:      FeatureNames(),
		MaxDepth:      model.maxDepth,
		Nodes:         model.nodes,
	})
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".artifact-*")
	if err != nil {
		return fmt.Errorf("create temp artifact: %w", err)
	}
	if _, err := tmp.Write(payload); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write artifact: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close artifact: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("rename artifact: %w", err)
	}
	return nil
}

// LoadArtifact reconstructs a classifier from path. The loaded tree
// predicts identically to the tree that was saved.
func LoadArtifact(path string) (*DecisionTree, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read artifact: %w", err)
	}

	var file artifactFile
	if err := json.Unmarshal(payload, &file); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrArtifactCorrupt, err)
	}
	if file.FormatVersion != artifactFormatVersion {
		return nil, fmt.Errorf("%w: format version %d, want %d", ErrArtifactCorrupt, file.FormatVersion, artifactFormatVersion)
	}
	if !slices.Equal(file.Features, FeatureNames()) {
		return nil, fmt.Errorf("%w: feature order %v does not match %v", ErrArtifactCorrupt, file.Features, FeatureNames())
	}
	if len(file.Nodes) == 0 {
		return nil, fmt.Errorf("%w: no tree nodes", ErrArtifactCorrupt)
	}

	return &DecisionTree{maxDepth: file.MaxDepth, nodes: file.Nodes}, nil
}
