package claims

import (
	"strings"
	"sync"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

type Band string

const (
	BandStandard Band = "standard"
	BandMedium   Band = "moyenne"
	BandHigh     Band = "elevee"
)

// Thresholds are whole-dirham amounts separating the bands. A charge must
// strictly exceed a threshold to enter the band above it.
type Thresholds struct {
	High   float64
	Medium float64
}

func DefaultThresholds() Thresholds {
	return Thresholds{High: 200000, Medium: 80000}
}

// Assessment is what the expert sees for one prediction.
type Assessment struct {
	Charge    float64 `json:"charge"`
	Formatted string  `json:"formatted"`
	Band      Band    `json:"band"`
	Message   string  `json:"message"`
}

var bandMessages = map[Band]string{
	BandHigh:     "Risque de charge élevée. Une expertise approfondie est recommandée.",
	BandMedium:   "Charge moyenne à surveiller.",
	BandStandard: "Charge standard estimée.",
}

// Assessor rounds a predicted charge to whole dirhams, formats it for
// display and assigns a band. Thresholds can be swapped at runtime by the
// config watcher.
type Assessor struct {
	mu         sync.RWMutex
	thresholds Thresholds
	printer    *message.Printer
}

func NewAssessor(thresholds Thresholds) *Assessor {
	return &Assessor{
		thresholds: thresholds,
		printer:    message.NewPrinter(language.French),
	}
}

func (a *Assessor) UpdateThresholds(thresholds Thresholds) {
	a.mu.Lock()
	a.thresholds = thresholds
	a.mu.Unlock()
}

func (a *Assessor) Thresholds() Thresholds {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.thresholds
}

func (a *Assessor) Assess(charge float64) Assessment {
	a.mu.RLock()
	thresholds := a.thresholds
	a.mu.RUnlock()

	rounded := decimal.NewFromFloat(charge).Round(0)
	band := BandStandard
	if rounded.GreaterThan(decimal.NewFromFloat(thresholds.High)) {
		band = BandHigh
	} else if rounded.GreaterThan(decimal.NewFromFloat(thresholds.Medium)) {
		band = BandMedium
	}

	return Assessment{
		Charge:    rounded.InexactFloat64(),
		Formatted: a.formatDirhams(rounded.IntPart()),
		Band:      band,
		Message:   bandMessages[band],
	}
}

// formatDirhams groups digits the French way ("250 000 DH"). The CLDR
// grouping separator is a non-breaking space; normalize it to a plain space
// so the value is copy-paste safe.
func (a *Assessor) formatDirhams(amount int64) string {
	grouped := a.printer.Sprintf("%d", amount)
	grouped = strings.ReplaceAll(grouped, "\u202f", " ")
	grouped = strings.ReplaceAll(grouped, "\u00a0", " ")
	return grouped + " DH"
}
