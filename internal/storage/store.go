package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/san-kum/gravsim/internal/dynamo"
	"github.com/san-kum/gravsim/internal/sim"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

// RunInfo describes how a run was produced.
type RunInfo struct {
	Scenario    string
	Integrator  string
	Dt          float64
	Steps       int
	SampleEvery int
	Seed        int64
	Bounce      bool
}

type RunMetadata struct {
	ID          string             `json:"id"`
	Scenario    string             `json:"scenario"`
	Timestamp   time.Time          `json:"timestamp"`
	Seed        int64              `json:"seed"`
	Dt          float64            `json:"dt"`
	Steps       int                `json:"steps"`
	SampleEvery int                `json:"sample_every"`
	Integrator  string             `json:"integrator"`
	Bounce      bool               `json:"bounce"`
	Bodies      int                `json:"bodies"`
	Collisions  int                `json:"collisions"`
	EnergyDrift float64            `json:"energy_drift"`
	Metrics     map[string]float64 `json:"metrics"`
}

// Save writes a run to <base>/<scenario>_<unix>/: metadata.json,
// bodies.json with the initial bodies, and states.csv with one row per
// frame.
func (s *Store) Save(info RunInfo, initial []dynamo.Body, result *sim.Result) (string, error) {
	now := time.Now()
	runID, runDir, err := s.mkRunDir(info.Scenario, now)
	if err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:          runID,
		Scenario:    info.Scenario,
		Timestamp:   now,
		Seed:        info.Seed,
		Dt:          info.Dt,
		Steps:       result.StepsTaken,
		SampleEvery: info.SampleEvery,
		Integrator:  info.Integrator,
		Bounce:      info.Bounce,
		Bodies:      len(initial),
		Collisions:  result.Collisions,
		EnergyDrift: result.EnergyDrift,
		Metrics:     result.Metrics,
	}

	if err := writeJSON(filepath.Join(runDir, "metadata.json"), meta); err != nil {
		return "", err
	}

	bodiesFile, err := os.Create(filepath.Join(runDir, "bodies.json"))
	if err != nil {
		return "", err
	}
	defer bodiesFile.Close()
	if err := EncodeBodies(bodiesFile, initial); err != nil {
		return "", err
	}

	if err := writeFrames(filepath.Join(runDir, "states.csv"), result.Frames); err != nil {
		return "", err
	}
	return runID, nil
}

// mkRunDir creates a fresh run directory, adding a counter when a run for
// the same scenario already exists in the same second.
func (s *Store) mkRunDir(scenario string, now time.Time) (string, string, error) {
	if scenario == "" {
		scenario = "custom"
	}
	base := fmt.Sprintf("%s_%d", scenario, now.Unix())
	runID := base
	for n := 2; ; n++ {
		dir := filepath.Join(s.baseDir, runID)
		err := os.Mkdir(dir, 0755)
		if err == nil {
			return runID, dir, nil
		}
		if !errors.Is(err, os.ErrExist) {
			return "", "", err
		}
		runID = fmt.Sprintf("%s_%d", base, n)
	}
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func writeFrames(path string, frames []sim.Frame) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if len(frames) > 0 {
		header := []string{"time", "energy"}
		for i := range frames[0].Bodies {
			header = append(header,
				fmt.Sprintf("x%d", i), fmt.Sprintf("y%d", i),
				fmt.Sprintf("vx%d", i), fmt.Sprintf("vy%d", i))
		}
		if err := w.Write(header); err != nil {
			return err
		}
	}

	for _, fr := range frames {
		row := make([]string, 0, 2+4*len(fr.Bodies))
		row = append(row, formatFloat(fr.Time), formatFloat(fr.Energy))
		for _, k := range fr.Bodies {
			row = append(row,
				formatFloat(k.Position.X), formatFloat(k.Position.Y),
				formatFloat(k.Velocity.X), formatFloat(k.Velocity.Y))
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

// List returns the metadata of every stored run, oldest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.SliceStable(runs, func(i, j int) bool {
		return runs[i].Timestamp.Before(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "metadata.json"))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// LoadBodies returns the bodies a run started from.
func (s *Store) LoadBodies(runID string) ([]dynamo.Body, error) {
	f, err := os.Open(filepath.Join(s.baseDir, runID, "bodies.json"))
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return DecodeBodies(f)
}

// LoadFrames reads back the frames written by Save. Rows that do not
// parse are skipped.
func (s *Store) LoadFrames(runID string) ([]sim.Frame, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, "states.csv"))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return []sim.Frame{}, nil
	}

	frames := make([]sim.Frame, 0, len(records)-1)
	for _, record := range records[1:] {
		fr, ok := parseFrame(record)
		if !ok {
			continue
		}
		frames = append(frames, fr)
	}
	return frames, nil
}

func parseFrame(record []string) (sim.Frame, bool) {
	if len(record) < 2 || (len(record)-2)%4 != 0 {
		return sim.Frame{}, false
	}

	vals := make([]float64, len(record))
	for i, field := range record {
		v, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return sim.Frame{}, false
		}
		vals[i] = v
	}

	n := (len(vals) - 2) / 4
	fr := sim.Frame{Time: vals[0], Energy: vals[1], Bodies: make([]dynamo.Kinematics, n)}
	for i := 0; i < n; i++ {
		o := 2 + 4*i
		fr.Bodies[i] = dynamo.Kinematics{
			Position: dynamo.V2(vals[o], vals[o+1]),
			Velocity: dynamo.V2(vals[o+2], vals[o+3]),
		}
	}
	return fr, true
}
