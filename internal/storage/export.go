package storage

import (
	"encoding/json"
	"io"
	"os"

	"github.com/san-kum/gravsim/internal/sim"
)

type ExportBody struct {
	Mass   float64 `json:"mass"`
	Radius float64 `json:"radius"`
	Tag    string  `json:"tag,omitempty"`
}

type ExportData struct {
	ID          string             `json:"id"`
	Scenario    string             `json:"scenario"`
	Integrator  string             `json:"integrator"`
	Dt          float64            `json:"dt"`
	Steps       int                `json:"steps"`
	Bodies      []ExportBody       `json:"bodies"`
	Times       []float64          `json:"times"`
	Energies    []float64          `json:"energies"`
	States      [][][4]float64     `json:"states"`
	EnergyDrift float64            `json:"energy_drift"`
	Metrics     map[string]float64 `json:"metrics"`
}

// NewExportData flattens a stored run into its exported form. Each state
// row holds x, y, vx, vy per body.
func NewExportData(meta *RunMetadata, records []BodyRecord, frames []sim.Frame) ExportData {
	data := ExportData{
		ID:          meta.ID,
		Scenario:    meta.Scenario,
		Integrator:  meta.Integrator,
		Dt:          meta.Dt,
		Steps:       meta.Steps,
		Bodies:      make([]ExportBody, len(records)),
		Times:       make([]float64, len(frames)),
		Energies:    make([]float64, len(frames)),
		States:      make([][][4]float64, len(frames)),
		EnergyDrift: meta.EnergyDrift,
		Metrics:     meta.Metrics,
	}

	for i, r := range records {
		data.Bodies[i] = ExportBody{Mass: r.Mass, Radius: r.Radius, Tag: r.Tag}
	}
	for i, fr := range frames {
		data.Times[i] = fr.Time
		data.Energies[i] = fr.Energy
		row := make([][4]float64, len(fr.Bodies))
		for j, k := range fr.Bodies {
			row[j] = [4]float64{k.Position.X, k.Position.Y, k.Velocity.X, k.Velocity.Y}
		}
		data.States[i] = row
	}
	return data
}

func WriteExport(w io.Writer, data ExportData) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

// ExportJSON writes a whole stored run as one JSON document to path, or to
// stdout when path is empty or "-".
func (s *Store) ExportJSON(runID, path string) error {
	meta, err := s.Load(runID)
	if err != nil {
		return err
	}
	bodies, err := s.LoadBodies(runID)
	if err != nil {
		return err
	}
	frames, err := s.LoadFrames(runID)
	if err != nil {
		return err
	}
	data := NewExportData(meta, ToRecords(bodies), frames)

	if path == "" || path == "-" {
		return WriteExport(os.Stdout, data)
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return WriteExport(file, data)
}
