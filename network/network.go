// Package network holds the bus/branch case data that flows through the
// rest of gopf (Ybus assembly, the Newton power-flow solver, the flow
// reporter, the B-coefficient builder, and the dispatcher), mirroring
// the role gofem's inp package plays as the single data holder every
// solver stage reads from and writes back to.
package network

import (
	"math"

	"github.com/cpmech/gosl/chk"
)

// Kind classifies a bus for Newton-Raphson variable elimination.
type Kind int

// Bus kinds, numbered to match the legacy kb column (section 6.1).
const (
	PQ    Kind = 0
	Slack Kind = 1
	PV    Kind = 2
)

// Bus holds one network node. Vm/delta/Pg/Qg/S/deltad/yload are set or
// refreshed by PowerFlowSolver; Pg is additionally overwritten by
// Dispatcher on generator buses.
type Bus struct {
	Number int  // 1-based, dense
	Kind   Kind

	Vm    float64 // voltage magnitude, p.u.
	Delta float64 // voltage angle, radians

	Pd, Qd float64 // scheduled load, p.u.
	Pg, Qg float64 // scheduled generation, p.u.

	Qmin, Qmax float64 // reactive limits, p.u.; Qmax == 0 disables enforcement
	Qsh        float64 // shunt reactive injection, p.u.

	V      complex128 // phasor, set after solve
	S      complex128 // net injection P+jQ, set after solve
	DeltaD float64    // angle in degrees, set after solve
	Yload  complex128 // equivalent shunt-load admittance, set after solve
}

// Branch is a two-terminal line or transformer.
type Branch struct {
	From, To int     // 1-based bus numbers
	R, X     float64 // series R/X, p.u.
	Bc       float64 // total line charging susceptance, p.u. (per-end contribution)
	Tap      float64 // off-nominal tap ratio on the From side
}

// Model is the mutable case: bus/branch tables, the demand total, and the
// dispatch lambda warm start. Ybus, the solver's convergence report, and
// the loss coefficients are returned by their stages, not stored here.
// It is constructed once per case; see package doc.
type Model struct {
	Sbase float64 // MVA base, default 100

	Buses   []*Bus
	Branches []Branch

	// Pdt is the total scheduled demand in MW; used by Dispatcher unless
	// the caller overrides it.
	Pdt float64

	// Lambda is the last-accepted dispatcher incremental cost, retained
	// as a warm start across Dispatcher calls (section 9, Warm-start λ).
	Lambda float64

	busByNumber map[int]*Bus
}

// NewModel returns an empty model with the default Sbase.
func NewModel() *Model {
	return &Model{Sbase: 100, busByNumber: map[int]*Bus{}}
}

// BusByNumber returns the bus with the given 1-based number.
func (o *Model) BusByNumber(n int) *Bus {
	if o.busByNumber == nil {
		o.index()
	}
	return o.busByNumber[n]
}

// N returns the number of buses.
func (o *Model) N() int { return len(o.Buses) }

func (o *Model) index() {
	o.busByNumber = make(map[int]*Bus, len(o.Buses))
	for _, b := range o.Buses {
		o.busByNumber[b.Number] = b
	}
}

// Validate checks the dense-numbering, single-slack, and non-degenerate
// impedance invariants from section 3, returning an InvalidInput error
// (via chk.Err) the caller can surface without a panic.
func (o *Model) Validate() error {
	if len(o.Buses) == 0 {
		return chk.Err("network: model has no buses")
	}
	seen := make(map[int]bool, len(o.Buses))
	nslack := 0
	for _, b := range o.Buses {
		if b.Number < 1 || b.Number > len(o.Buses) {
			return chk.Err("network: bus number %d is not in the dense range 1..%d", b.Number, len(o.Buses))
		}
		if seen[b.Number] {
			return chk.Err("network: duplicate bus number %d", b.Number)
		}
		seen[b.Number] = true
		if b.Kind == Slack {
			nslack++
		}
		if b.Kind != Slack && b.Kind != PV && b.Kind != PQ {
			return chk.Err("network: bus %d has unsupported kind %d", b.Number, b.Kind)
		}
	}
	if nslack != 1 {
		return chk.Err("network: exactly one slack bus is required, found %d", nslack)
	}
	for _, br := range o.Branches {
		if br.From == br.To {
			return chk.Err("network: branch %d-%d is a self-loop, which is undefined", br.From, br.To)
		}
		if br.R == 0 && br.X == 0 {
			return chk.Err("network: branch %d-%d has zero series impedance (R=X=0)", br.From, br.To)
		}
	}
	return nil
}

// Normalize applies the ingest-time fixups of section 3: Vm<=0 resets
// to 1.0 (and delta to 0), degrees convert to radians, and taps <= 0
// rewrite to 1.0. It does not convert MW/Mvar to per-unit: bus fields
// are expected in per-unit already (ParseCase converts them before
// calling Normalize).
func (o *Model) Normalize() {
	for _, b := range o.Buses {
		if b.Vm <= 0 {
			b.Vm = 1.0
			b.Delta = 0
		} else {
			b.Delta = b.Delta * math.Pi / 180
		}
	}
	for i := range o.Branches {
		if o.Branches[i].Tap <= 0 {
			o.Branches[i].Tap = 1.0
		}
	}
	o.index()
}

// PerUnit converts an MW/Mvar quantity to per-unit on Sbase.
func (o *Model) PerUnit(mw float64) float64 { return mw / o.Sbase }

// FromPerUnit converts a per-unit quantity back to MW/Mvar on Sbase.
func (o *Model) FromPerUnit(pu float64) float64 { return pu * o.Sbase }

// Rescale re-normalizes every per-unit bus field onto newSbase and updates
// Sbase to match. Per-unit quantities already ingested on the model's
// current Sbase would otherwise silently disagree with a later Sbase
// override (e.g. a CLI/config value that differs from the case file's own
// sbase_mva); callers that need to change Sbase after ingest must go
// through Rescale rather than assigning o.Sbase directly.
func (o *Model) Rescale(newSbase float64) {
	if newSbase <= 0 || newSbase == o.Sbase {
		return
	}
	ratio := o.Sbase / newSbase
	for _, b := range o.Buses {
		b.Pd *= ratio
		b.Qd *= ratio
		b.Pg *= ratio
		b.Qg *= ratio
		b.Qmin *= ratio
		b.Qmax *= ratio
		b.Qsh *= ratio
	}
	// Pdt is already plain MW, not per-unit, so it needs no rescaling.
	o.Sbase = newSbase
}

// GeneratorBuses returns the PV and Slack buses in bus-number order —
// the "generator set G" of section 4.4/4.5.
func (o *Model) GeneratorBuses() []*Bus {
	var g []*Bus
	for _, b := range o.Buses {
		if b.Kind == Slack || b.Kind == PV {
			g = append(g, b)
		}
	}
	return g
}

// SlackBus returns the (unique, validated) slack bus.
func (o *Model) SlackBus() *Bus {
	for _, b := range o.Buses {
		if b.Kind == Slack {
			return b
		}
	}
	return nil
}
