package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/san-kum/galaxysim/internal/config"
	"github.com/san-kum/galaxysim/internal/experiment"
)

const (
	metadataFile = "metadata.json"
	framesFile   = "frames.csv"
)

var ErrRunNotFound = errors.New("run not found")

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

func (s *Store) Dir() string { return s.baseDir }

type RunMetadata struct {
	ID         string             `json:"id"`
	Name       string             `json:"name"`
	Timestamp  time.Time          `json:"timestamp"`
	Seed       uint64             `json:"seed"`
	Dt         float64            `json:"dt"`
	Steps      int                `json:"steps"`
	Evaluator  string             `json:"evaluator"`
	Integrator string             `json:"integrator"`
	G          float64            `json:"g"`
	Softening  float64            `json:"softening"`
	Theta      float64            `json:"theta"`
	Galaxies   int                `json:"galaxies"`
	Stars      int                `json:"stars"`
	Frames     int                `json:"frames"`
	SimTime    float64            `json:"sim_time"`
	Metrics    map[string]float64 `json:"metrics"`
}

// Writer streams frames of one run to disk. Metadata is written on Close,
// so List only reports finished runs.
type Writer struct {
	dir   string
	meta  RunMetadata
	file  *os.File
	csv   *csv.Writer
	stars int
}

// Create starts a new run directory for cfg.
func (s *Store) Create(cfg *config.Config) (*Writer, error) {
	now := time.Now()
	runID := fmt.Sprintf("%s_%d", cfg.Name, now.UnixNano())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return nil, err
	}

	file, err := os.Create(filepath.Join(runDir, framesFile))
	if err != nil {
		return nil, err
	}

	w := &Writer{
		dir:  runDir,
		file: file,
		csv:  csv.NewWriter(file),
		meta: RunMetadata{
			ID:         runID,
			Name:       cfg.Name,
			Timestamp:  now,
			Seed:       cfg.Seed,
			Dt:         cfg.Dt,
			Evaluator:  cfg.Evaluator,
			Integrator: cfg.Integrator,
			G:          cfg.G,
			Softening:  cfg.Softening,
			Theta:      cfg.Theta,
			Galaxies:   len(cfg.Galaxies),
			Stars:      cfg.TotalStars(),
			Metrics:    make(map[string]float64),
		},
		stars: cfg.TotalStars(),
	}

	header := make([]string, 0, 2+3*w.stars)
	header = append(header, "time", "energy")
	for i := 0; i < w.stars; i++ {
		header = append(header, fmt.Sprintf("x%d", i), fmt.Sprintf("y%d", i), fmt.Sprintf("z%d", i))
	}
	if err := w.csv.Write(header); err != nil {
		file.Close()
		return nil, err
	}
	return w, nil
}

func (w *Writer) ID() string { return w.meta.ID }

func (w *Writer) WriteFrame(f experiment.Frame) error {
	if len(f.Positions) != 3*w.stars {
		return fmt.Errorf("frame at t=%g has %d coordinates, want %d", f.Time, len(f.Positions), 3*w.stars)
	}
	row := make([]string, 0, 2+len(f.Positions))
	row = append(row, formatFloat(f.Time), formatFloat(f.Energy))
	for _, v := range f.Positions {
		row = append(row, formatFloat(v))
	}
	if err := w.csv.Write(row); err != nil {
		return err
	}
	w.meta.Frames++
	return nil
}

// Close flushes the frames and writes metadata from res. A nil res
// records an incomplete run with no metrics.
func (w *Writer) Close(res *experiment.Result) error {
	w.csv.Flush()
	if err := w.csv.Error(); err != nil {
		w.file.Close()
		return err
	}
	if err := w.file.Close(); err != nil {
		return err
	}

	if res != nil {
		w.meta.Steps = res.Steps
		w.meta.SimTime = res.SimTime
		w.meta.Metrics["energy_drift"] = res.EnergyDrift
		w.meta.Metrics["momentum_error"] = res.MomentumError
		w.meta.Metrics["energy_mean"] = res.Energy.Mean
		w.meta.Metrics["energy_stddev"] = res.Energy.StdDev
		w.meta.Metrics["bound_fraction"] = res.BoundFraction
		w.meta.Metrics["elapsed_sec"] = res.Elapsed.Seconds()
	}

	metaFile, err := os.Create(filepath.Join(w.dir, metadataFile))
	if err != nil {
		return err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	return enc.Encode(w.meta)
}

// Save writes a finished run with all of its frames.
func (s *Store) Save(cfg *config.Config, res *experiment.Result) (string, error) {
	w, err := s.Create(cfg)
	if err != nil {
		return "", err
	}
	for _, f := range res.Frames {
		if err := w.WriteFrame(f); err != nil {
			w.Close(nil)
			return "", err
		}
	}
	if err := w.Close(res); err != nil {
		return "", err
	}
	return w.ID(), nil
}

// List returns finished runs, oldest first.
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

	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.Before(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("run %s: %w", runID, err)
	}
	return &meta, nil
}

// LoadFrames reads every recorded frame of a run. Step numbers are
// recovered from the run's timestep.
func (s *Store) LoadFrames(runID string) ([]experiment.Frame, error) {
	meta, err := s.Load(runID)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(filepath.Join(s.baseDir, runID, framesFile))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.ReuseRecord = true
	if _, err := r.Read(); err != nil {
		if err == io.EOF {
			return []experiment.Frame{}, nil
		}
		return nil, err
	}

	frames := make([]experiment.Frame, 0, meta.Frames)
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		vals := make([]float64, len(record))
		for i, field := range record {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("run %s: frame %d: %w", runID, len(frames), err)
			}
			vals[i] = v
		}

		f := experiment.Frame{Time: vals[0], Energy: vals[1], Positions: vals[2:]}
		if meta.Dt > 0 {
			f.Step = int(math.Round(f.Time / meta.Dt))
		}
		frames = append(frames, f)
	}
	return frames, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
