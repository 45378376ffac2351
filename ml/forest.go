package ml

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
)

// ErrModelLoad wraps every failure to read or validate a model artifact.
// It is fatal at startup.
var ErrModelLoad = errors.New("model load failed")

type TreeNode struct {
	FeatureIdx int     `json:"feature_idx"`
	Threshold  float64 `json:"threshold"`
	LeftChild  int     `json:"left_child"`
	RightChild int     `json:"right_child"`
	Value      float64 `json:"value"`
	IsLeaf     bool    `json:"is_leaf"`
}

// RegressionTree stores its nodes as a flat array; node 0 is the root and
// children are referenced by index.
type RegressionTree struct {
	Nodes []TreeNode `json:"nodes"`
}

func (rt *RegressionTree) predict(features []float64) (float64, error) {
	if len(rt.Nodes) == 0 {
		return 0, errors.New("empty tree")
	}
	idx := 0
	for {
		node := rt.Nodes[idx]
		if node.IsLeaf {
			return node.Value, nil
		}
		if node.FeatureIdx < 0 || node.FeatureIdx >= len(features) {
			return 0, errors.New("feature index out of range")
		}
		if features[node.FeatureIdx] <= node.Threshold {
			idx = node.LeftChild
		} else {
			idx = node.RightChild
		}
		if idx < 0 || idx >= len(rt.Nodes) {
			return 0, errors.New("invalid tree state")
		}
	}
}

func (rt *RegressionTree) validate(featureCount int) error {
	if len(rt.Nodes) == 0 {
		return errors.New("tree has no nodes")
	}
	for i, node := range rt.Nodes {
		if node.IsLeaf {
			if math.IsNaN(node.Value) || math.IsInf(node.Value, 0) {
				return fmt.Errorf("node %d: leaf value not finite", i)
			}
			continue
		}
		if node.FeatureIdx < 0 || node.FeatureIdx >= featureCount {
			return fmt.Errorf("node %d: feature index %d out of range", i, node.FeatureIdx)
		}
		if node.LeftChild < 0 || node.LeftChild >= len(rt.Nodes) {
			return fmt.Errorf("node %d: left child %d out of range", i, node.LeftChild)
		}
		if node.RightChild < 0 || node.RightChild >= len(rt.Nodes) {
			return fmt.Errorf("node %d: right child %d out of range", i, node.RightChild)
		}
	}
	return nil
}

// RandomForest is an ensemble regressor: the prediction is the mean of the
// leaf values reached in each tree. It is immutable after Load and safe for
// concurrent readers.
type RandomForest struct {
	featureNames []string
	trees        []RegressionTree
}

type forestArtifact struct {
	ModelType    string           `json:"model_type"`
	FeatureNames []string         `json:"feature_names"`
	Trees        []RegressionTree `json:"trees"`
}

const forestModelType = "random_forest_regressor"

func NewRandomForest(featureNames []string, trees []RegressionTree) (*RandomForest, error) {
	rf := &RandomForest{featureNames: featureNames, trees: trees}
	if err := rf.validate(); err != nil {
		return nil, err
	}
	return rf, nil
}

func (rf *RandomForest) Predict(features []float64) (float64, error) {
	if len(rf.trees) == 0 {
		return 0, errors.New("model not loaded")
	}
	if len(features) != len(rf.featureNames) {
		return 0, fmt.Errorf("expected %d features, got %d", len(rf.featureNames), len(features))
	}
	sum := 0.0
	for i := range rf.trees {
		value, err := rf.trees[i].predict(features)
		if err != nil {
			return 0, fmt.Errorf("tree %d: %w", i, err)
		}
		sum += value
	}
	return sum / float64(len(rf.trees)), nil
}

func (rf *RandomForest) FeatureNames() []string {
	names := make([]string, len(rf.featureNames))
	copy(names, rf.featureNames)
	return names
}

func (rf *RandomForest) TreeCount() int {
	return len(rf.trees)
}

func (rf *RandomForest) Save(path string) error {
	if len(rf.trees) == 0 {
		return errors.New("model not loaded")
	}
	payload, err := json.Marshal(forestArtifact{
		ModelType:    forestModelType,
		FeatureNames: rf.featureNames,
		Trees:        rf.trees,
	})
	if err != nil {
		return err
	}
	return os.WriteFile(path, payload, 0o600)
}

func (rf *RandomForest) Load(path string) error {
	payload, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var artifact forestArtifact
	if err := json.Unmarshal(payload, &artifact); err != nil {
		return fmt.Errorf("decode artifact: %w", err)
	}
	if artifact.ModelType != forestModelType {
		return fmt.Errorf("unexpected model type %q", artifact.ModelType)
	}
	rf.featureNames = artifact.FeatureNames
	rf.trees = artifact.Trees
	return rf.validate()
}

func (rf *RandomForest) validate() error {
	if len(rf.featureNames) == 0 {
		return errors.New("feature schema is empty")
	}
	seen := make(map[string]bool, len(rf.featureNames))
	for _, name := range rf.featureNames {
		if name == "" {
			return errors.New("feature schema contains an empty name")
		}
		if seen[name] {
			return fmt.Errorf("duplicate feature name %q", name)
		}
		seen[name] = true
	}
	if len(rf.trees) == 0 {
		return errors.New("forest has no trees")
	}
	for i := range rf.trees {
		if err := rf.trees[i].validate(len(rf.featureNames)); err != nil {
			return fmt.Errorf("tree %d: %w", i, err)
		}
	}
	return nil
}
