package predictor

import (
	"errors"
	"math"
	"testing"

	"claimcharge/claims"
	"claimcharge/ml"
)

type stubModel struct {
	schema   []string
	result   float64
	err      error
	calls    int
	received []float64
}

func (s *stubModel) Predict(features []float64) (float64, error) {
	s.calls++
	s.received = append([]float64(nil), features...)
	return s.result, s.err
}

func (s *stubModel) FeatureNames() []string {
	return s.schema
}

func twoFeatureVector() claims.FeatureVector {
	return claims.FeatureVector{"a": 1, "b": 2}
}

func TestPredictOrdersFeaturesBySchema(t *testing.T) {
	model := &stubModel{schema: []string{"b", "a"}, result: 42}
	p, err := New(model, 0, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	charge, err := p.Predict(twoFeatureVector())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if charge != 42 {
		t.Fatalf("expected 42, got %v", charge)
	}
	if model.received[0] != 2 || model.received[1] != 1 {
		t.Fatalf("features not ordered by schema: %v", model.received)
	}
}

func TestPredictMissingFeatureIsInputMismatch(t *testing.T) {
	model := &stubModel{schema: []string{"a", "b"}}
	p, err := New(model, 0, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := p.Predict(claims.FeatureVector{"a": 1}); !errors.Is(err, claims.ErrInputMismatch) {
		t.Fatalf("expected ErrInputMismatch, got %v", err)
	}
	if model.calls != 0 {
		t.Fatal("model should not be called on mismatch")
	}
}

func TestPredictUnexpectedFeatureIsInputMismatch(t *testing.T) {
	model := &stubModel{schema: []string{"a", "b"}}
	p, err := New(model, 0, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	vector := claims.FeatureVector{"a": 1, "b": 2, "c": 3}
	if _, err := p.Predict(vector); !errors.Is(err, claims.ErrInputMismatch) {
		t.Fatalf("expected ErrInputMismatch, got %v", err)
	}
}

func TestPredictCachesRepeatedVectors(t *testing.T) {
	model := &stubModel{schema: []string{"a", "b"}, result: 17.5}
	p, err := New(model, 8, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	first, err := p.Predict(twoFeatureVector())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := p.Predict(twoFeatureVector())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first != second {
		t.Fatalf("cache changed the answer: %v vs %v", first, second)
	}
	if model.calls != 1 {
		t.Fatalf("expected one model call, got %d", model.calls)
	}
}

func TestPredictExampleClaim(t *testing.T) {
	trees := []ml.RegressionTree{
		{Nodes: []ml.TreeNode{
			{FeatureIdx: 0, Threshold: 300000, LeftChild: 1, RightChild: 2},
			{FeatureIdx: -1, LeftChild: -1, RightChild: -1, Value: 45000, IsLeaf: true},
			{FeatureIdx: -1, LeftChild: -1, RightChild: -1, Value: 130000, IsLeaf: true},
		}},
		{Nodes: []ml.TreeNode{
			{FeatureIdx: 4, Threshold: 0.5, LeftChild: 1, RightChild: 2},
			{FeatureIdx: -1, LeftChild: -1, RightChild: -1, Value: 38000, IsLeaf: true},
			{FeatureIdx: -1, LeftChild: -1, RightChild: -1, Value: 52000, IsLeaf: true},
		}},
	}
	forest, err := ml.NewRandomForest(claims.FeatureNames(), trees)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	p, err := New(forest, 0, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	input := claims.ClaimInput{
		VehicleValue: 250000,
		VehicleAge:   5,
		FiscalPower:  7,
		DriverType:   claims.DriverPrincipal,
		Zone:         claims.ZoneUrban,
	}
	vector, err := input.Features()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	charge, err := p.Predict(vector)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if charge < 0 || math.IsNaN(charge) || math.IsInf(charge, 0) {
		t.Fatalf("expected non-negative finite charge, got %v", charge)
	}
	// value 250000 -> 45000; zone urbaine -> 52000
	if charge != 48500 {
		t.Fatalf("expected 48500, got %v", charge)
	}
}
