// Package claims models one car-insurance claim scenario and its encoding
// into the feature schema the regression model was trained on.
package claims

import (
	"errors"
	"fmt"
)

// ErrInputMismatch marks a claim input the model cannot score: a value out
// of the trained range, an unseen categorical level, or a missing feature.
var ErrInputMismatch = errors.New("input mismatch")

// Categorical levels, exactly as they appeared in the training data.
const (
	DriverPrincipal  = "Principal"
	DriverOccasional = "Occasionnel"
	ZoneUrban        = "Urbaine"
	ZoneRural        = "Rurale"
)

// Feature names of the trained schema. The two categorical features are
// drop-first one-hot columns.
const (
	FeatureVehicleValue    = "valeur_vehicule_neuf"
	FeatureVehicleAge      = "age_vehicule_ans"
	FeatureFiscalPower     = "puissance_fiscale"
	FeatureDriverPrincipal = "type_conducteur_Principal"
	FeatureZoneUrban       = "zone_circulation_Urbaine"
)

// Input ranges mirror the form widgets.
const (
	MinVehicleValue = 80000
	MaxVehicleValue = 1000000
	MinVehicleAge   = 0
	MaxVehicleAge   = 20
	MinFiscalPower  = 6
	MaxFiscalPower  = 15
)

// ClaimInput holds the raw values collected from the form or the JSON API.
type ClaimInput struct {
	VehicleValue float64 `json:"valeur_vehicule_neuf"`
	VehicleAge   int     `json:"age_vehicule_ans"`
	FiscalPower  int     `json:"puissance_fiscale"`
	DriverType   string  `json:"type_conducteur"`
	Zone         string  `json:"zone_circulation"`
}

// FeatureVector maps feature names to encoded values for one claim.
type FeatureVector map[string]float64

func (c ClaimInput) Validate() error {
	if c.VehicleValue < MinVehicleValue || c.VehicleValue > MaxVehicleValue {
		return fmt.Errorf("%w: vehicle value %.0f outside [%d, %d]",
			ErrInputMismatch, c.VehicleValue, MinVehicleValue, MaxVehicleValue)
	}
	if c.VehicleAge < MinVehicleAge || c.VehicleAge > MaxVehicleAge {
		return fmt.Errorf("%w: vehicle age %d outside [%d, %d]",
			ErrInputMismatch, c.VehicleAge, MinVehicleAge, MaxVehicleAge)
	}
	if c.FiscalPower < MinFiscalPower || c.FiscalPower > MaxFiscalPower {
		return fmt.Errorf("%w: fiscal power %d outside [%d, %d]",
			ErrInputMismatch, c.FiscalPower, MinFiscalPower, MaxFiscalPower)
	}
	switch c.DriverType {
	case DriverPrincipal, DriverOccasional:
	default:
		return fmt.Errorf("%w: unknown driver type %q", ErrInputMismatch, c.DriverType)
	}
	switch c.Zone {
	case ZoneUrban, ZoneRural:
	default:
		return fmt.Errorf("%w: unknown circulation zone %q", ErrInputMismatch, c.Zone)
	}
	return nil
}

// Features validates the input and encodes it into the trained schema.
func (c ClaimInput) Features() (FeatureVector, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	vector := FeatureVector{
		FeatureVehicleValue:    c.VehicleValue,
		FeatureVehicleAge:      float64(c.VehicleAge),
		FeatureFiscalPower:     float64(c.FiscalPower),
		FeatureDriverPrincipal: 0,
		FeatureZoneUrban:       0,
	}
	if c.DriverType == DriverPrincipal {
		vector[FeatureDriverPrincipal] = 1
	}
	if c.Zone == ZoneUrban {
		vector[FeatureZoneUrban] = 1
	}
	return vector, nil
}

// FeatureNames returns the schema in training column order.
func FeatureNames() []string {
	return []string{
		FeatureVehicleValue,
		FeatureVehicleAge,
		FeatureFiscalPower,
		FeatureDriverPrincipal,
		FeatureZoneUrban,
	}
}
