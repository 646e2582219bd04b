package storage

import (
	"encoding/json"
	"io"
	"os"
)

type ExportData struct {
	Run       RunMetadata `json:"run"`
	Times     []float64   `json:"times"`
	Energies  []float64   `json:"energies"`
	Positions [][]float64 `json:"positions"`
}

// Export writes a stored run as a single JSON document.
func (s *Store) Export(runID string, w io.Writer) error {
	meta, err := s.Load(runID)
	if err != nil {
		return err
	}
	frames, err := s.LoadFrames(runID)
	if err != nil {
		return err
	}

	data := ExportData{
		Run:       *meta,
		Times:     make([]float64, len(frames)),
		Energies:  make([]float64, len(frames)),
		Positions: make([][]float64, len(frames)),
	}
	for i, f := range frames {
		data.Times[i] = f.Time
		data.Energies[i] = f.Energy
		data.Positions[i] = f.Positions
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

func (s *Store) ExportFile(runID, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := s.Export(runID, file); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}
