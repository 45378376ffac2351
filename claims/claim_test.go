package claims

import (
	"errors"
	"testing"
)

func validInput() ClaimInput {
	return ClaimInput{
		VehicleValue: 250000,
		VehicleAge:   5,
		FiscalPower:  7,
		DriverType:   DriverPrincipal,
		Zone:         ZoneUrban,
	}
}

func TestFeaturesEncodesOneHotColumns(t *testing.T) {
	vector, err := validInput().Features()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if vector[FeatureDriverPrincipal] != 1 || vector[FeatureZoneUrban] != 1 {
		t.Fatalf("expected one-hot columns set, got %v", vector)
	}

	input := validInput()
	input.DriverType = DriverOccasional
	input.Zone = ZoneRural
	vector, err = input.Features()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if vector[FeatureDriverPrincipal] != 0 || vector[FeatureZoneUrban] != 0 {
		t.Fatalf("expected one-hot columns cleared, got %v", vector)
	}
	if vector[FeatureVehicleValue] != 250000 || vector[FeatureVehicleAge] != 5 || vector[FeatureFiscalPower] != 7 {
		t.Fatalf("numeric features wrong: %v", vector)
	}
}

func TestFeaturesCoverSchema(t *testing.T) {
	vector, err := validInput().Features()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	names := FeatureNames()
	if len(vector) != len(names) {
		t.Fatalf("expected %d features, got %d", len(names), len(vector))
	}
	for _, name := range names {
		if _, ok := vector[name]; !ok {
			t.Fatalf("missing feature %s", name)
		}
	}
}

func TestValidateRejectsOutOfRangeInput(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*ClaimInput)
	}{
		{"value too low", func(c *ClaimInput) { c.VehicleValue = 50000 }},
		{"value too high", func(c *ClaimInput) { c.VehicleValue = 2000000 }},
		{"negative age", func(c *ClaimInput) { c.VehicleAge = -1 }},
		{"age too high", func(c *ClaimInput) { c.VehicleAge = 25 }},
		{"power too low", func(c *ClaimInput) { c.FiscalPower = 5 }},
		{"power too high", func(c *ClaimInput) { c.FiscalPower = 16 }},
		{"unseen driver type", func(c *ClaimInput) { c.DriverType = "Tertiaire" }},
		{"empty driver type", func(c *ClaimInput) { c.DriverType = "" }},
		{"unseen zone", func(c *ClaimInput) { c.Zone = "Montagne" }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			input := validInput()
			tc.mutate(&input)
			if _, err := input.Features(); !errors.Is(err, ErrInputMismatch) {
				t.Fatalf("expected ErrInputMismatch, got %v", err)
			}
		})
	}
}
