package ml

import "fmt"

type Regressor interface {
	Predict(features []float64) (float64, error)
	FeatureNames() []string
	Save(path string) error
	Load(path string) error
}

// LoadModel reads a serialized model artifact. Failures wrap ErrModelLoad.
func LoadModel(modelType, path string) (Regressor, error) {
	switch modelType {
	case "random_forest":
		model := &RandomForest{}
		if err := model.Load(path); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrModelLoad, err)
		}
		return model, nil
	default:
		return nil, fmt.Errorf("%w: unsupported model type %q", ErrModelLoad, modelType)
	}
}
