// Package predictor wraps the loaded regression model behind the single
// synchronous Predict call the UI consumes.
package predictor

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"claimcharge/claims"
)

const DefaultCacheSize = 256

// Model is the read-only handle to the loaded regressor.
type Model interface {
	Predict(features []float64) (float64, error)
	FeatureNames() []string
}

// Predictor assembles ordered feature vectors, delegates to the model and
// memoizes results. The model is deterministic, so the cache can never
// change an answer.
type Predictor struct {
	model  Model
	schema []string
	cache  *lru.Cache[string, float64]
	logger *zap.Logger
}

func New(model Model, cacheSize int, logger *zap.Logger) (*Predictor, error) {
	schema := model.FeatureNames()
	if len(schema) == 0 {
		return nil, errors.New("model has an empty feature schema")
	}
	seen := make(map[string]bool, len(schema))
	for _, name := range schema {
		if seen[name] {
			return nil, fmt.Errorf("model schema repeats feature %q", name)
		}
		seen[name] = true
	}
	if cacheSize <= 0 {
		cacheSize = DefaultCacheSize
	}
	cache, err := lru.New[string, float64](cacheSize)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Predictor{model: model, schema: schema, cache: cache, logger: logger}, nil
}

// Schema returns the model's feature names in evaluation order.
func (p *Predictor) Schema() []string {
	names := make([]string, len(p.schema))
	copy(names, p.schema)
	return names
}

// Predict scores one feature vector. The vector must carry exactly the
// features of the model schema; anything else is an input mismatch.
func (p *Predictor) Predict(vector claims.FeatureVector) (float64, error) {
	ordered, key, err := p.orderVector(vector)
	if err != nil {
		return 0, err
	}

	if charge, ok := p.cache.Get(key); ok {
		return charge, nil
	}

	charge, err := p.model.Predict(ordered)
	if err != nil {
		p.logger.Error("model prediction failed", zap.Error(err))
		return 0, err
	}
	p.cache.Add(key, charge)
	p.logger.Debug("prediction computed", zap.Float64("charge", charge))
	return charge, nil
}

func (p *Predictor) orderVector(vector claims.FeatureVector) ([]float64, string, error) {
	ordered := make([]float64, len(p.schema))
	var key strings.Builder
	for i, name := range p.schema {
		value, ok := vector[name]
		if !ok {
			return nil, "", fmt.Errorf("%w: missing feature %q", claims.ErrInputMismatch, name)
		}
		ordered[i] = value
		key.WriteString(strconv.FormatFloat(value, 'g', -1, 64))
		key.WriteByte('|')
	}
	if len(vector) != len(p.schema) {
		for name := range vector {
			known := false
			for _, want := range p.schema {
				if name == want {
					known = true
					break
				}
			}
			if !known {
				return nil, "", fmt.Errorf("%w: unexpected feature %q", claims.ErrInputMismatch, name)
			}
		}
	}
	return ordered, key.String(), nil
}
