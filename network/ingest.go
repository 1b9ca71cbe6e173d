package network

import (
	"encoding/json"
	"io/fs"

	"github.com/cpmech/gosl/chk"
)

// busRow and branchRow mirror the 11- and 6-column input tables of
// section 6.1 verbatim; JSON field names read more naturally in a case
// file than an 11-column flat array would, but the columns are the same.
type busRow struct {
	Number   int     `json:"number"`
	Kind     int     `json:"kind"`
	Vm       float64 `json:"vm"`
	DeltaDeg float64 `json:"delta_deg"`
	PdMW     float64 `json:"pd_mw"`
	QdMvar   float64 `json:"qd_mvar"`
	PgMW     float64 `json:"pg_mw"`
	QgMvar   float64 `json:"qg_mvar"`
	QminMvar float64 `json:"qmin_mvar"`
	QmaxMvar float64 `json:"qmax_mvar"`
	QshMvar  float64 `json:"qsh_mvar"`
}

type branchRow struct {
	From int     `json:"from"`
	To   int     `json:"to"`
	R    float64 `json:"r_pu"`
	X    float64 `json:"x_pu"`
	Bc   float64 `json:"bc_pu"`
	Tap  float64 `json:"tap_ratio"`
}

type caseFile struct {
	SbaseMVA float64     `json:"sbase_mva"`
	PdtMW    float64     `json:"pdt_mw"`
	Buses    []busRow    `json:"buses"`
	Branches []branchRow `json:"branches"`
}

// LoadCase reads a JSON case document (section "Case file format" of
// SPEC_FULL.md) from fsys at name, converts MW/Mvar quantities to
// per-unit on the case's Sbase, applies the Vm/degree/tap normalization
// of section 3, and validates the result. The wire format is plain
// data, so it is decoded with encoding/json rather than a third-party
// serializer — see DESIGN.md.
func LoadCase(fsys fs.FS, name string) (*Model, error) {
	raw, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, chk.Err("network: cannot read case file %q: %v", name, err)
	}
	return ParseCase(raw)
}

// ParseCase decodes a case document already held in memory.
func ParseCase(raw []byte) (*Model, error) {
	var cf caseFile
	if err := json.Unmarshal(raw, &cf); err != nil {
		return nil, chk.Err("network: malformed case JSON: %v", err)
	}
	m := NewModel()
	if cf.SbaseMVA > 0 {
		m.Sbase = cf.SbaseMVA
	}
	m.Pdt = cf.PdtMW

	m.Buses = make([]*Bus, 0, len(cf.Buses))
	for _, r := range cf.Buses {
		b := &Bus{
			Number: r.Number,
			Kind:   Kind(r.Kind),
			Vm:     r.Vm,
			Delta:  r.DeltaDeg,
			Pd:     m.PerUnit(r.PdMW),
			Qd:     m.PerUnit(r.QdMvar),
			Pg:     m.PerUnit(r.PgMW),
			Qg:     m.PerUnit(r.QgMvar),
			Qmin:   m.PerUnit(r.QminMvar),
			Qmax:   m.PerUnit(r.QmaxMvar),
			Qsh:    m.PerUnit(r.QshMvar),
		}
		m.Buses = append(m.Buses, b)
	}

	m.Branches = make([]Branch, 0, len(cf.Branches))
	for _, r := range cf.Branches {
		m.Branches = append(m.Branches, Branch{
			From: r.From,
			To:   r.To,
			R:    r.R,
			X:    r.X,
			Bc:   r.Bc,
			Tap:  r.Tap,
		})
	}

	m.Normalize()
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}
