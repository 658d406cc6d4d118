package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/san-kum/fieldsim/internal/body"
	"github.com/san-kum/fieldsim/internal/config"
	"github.com/san-kum/fieldsim/internal/experiment"
)

const (
	metadataFile = "metadata.json"
	framesFile   = "frames.csv"
	sceneFile    = "scene.yaml"
)

// Columns of frames.csv. The tracked-body columns are zero while tracked is 0.
var Columns = []string{"time", "kinetic", "bodies", "tracers", "removed", "tracked", "x", "y", "vx", "vy", "angle", "omega"}

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID          string             `json:"id"`
	Name        string             `json:"name"`
	Timestamp   time.Time          `json:"timestamp"`
	Fps         int                `json:"fps"`
	Frames      int                `json:"frames"`
	TrackedID   uint32             `json:"tracked_id,omitempty"`
	TrackedKind string             `json:"tracked_kind,omitempty"`
	Metrics     map[string]float64 `json:"metrics"`
	Removals    []string           `json:"removals,omitempty"`
}

// Save writes a run directory holding the metadata, the per-frame series
// and, when scene is not nil, the scene that produced it.
func (s *Store) Save(res *experiment.Result, scene *config.Config) (string, error) {
	name := res.Name
	if name == "" {
		name = "run"
	}
	now := time.Now()
	runID := fmt.Sprintf("%s_%d", name, now.UnixMilli())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:        runID,
		Name:      name,
		Timestamp: now,
		Fps:       res.Fps,
		Frames:    len(res.Frames),
		TrackedID: uint32(res.TrackedID),
		Metrics:   res.Metrics,
		Removals:  res.Removals,
	}
	for _, f := range res.Frames {
		if f.Tracked {
			meta.TrackedKind = f.Track.Kind.String()
			break
		}
	}

	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}
	if err := writeFrames(filepath.Join(runDir, framesFile), res.Frames); err != nil {
		return "", err
	}
	if scene != nil {
		if err := config.Save(filepath.Join(runDir, sceneFile), scene); err != nil {
			return "", err
		}
	}
	return runID, nil
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

func writeFrames(path string, frames []experiment.Frame) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(Columns); err != nil {
		return err
	}

	format := func(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }
	for _, fr := range frames {
		tracked, tr := 0.0, body.Pose{}
		if fr.Tracked {
			tracked, tr = 1, fr.Track
		}
		row := []string{
			format(fr.Time), format(fr.Kinetic),
			strconv.Itoa(fr.Bodies), strconv.Itoa(fr.ActiveTracers), strconv.Itoa(fr.Removed),
			format(tracked),
			format(tr.Pos.X), format(tr.Pos.Y), format(tr.Vel.X), format(tr.Vel.Y),
			format(tr.Angle), format(tr.Omega),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// List returns every readable run, oldest first.
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

	sort.SliceStable(runs, func(i, j int) bool { return runs[i].Timestamp.Before(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("run %s: %w", runID, err)
	}
	return &meta, nil
}

// LoadScene returns the scene a run was started from.
func (s *Store) LoadScene(runID string) (*config.Config, error) {
	return config.Load(filepath.Join(s.baseDir, runID, sceneFile))
}

// Series is a loaded frames.csv.
type Series struct {
	Header []string
	Rows   [][]float64
}

// Column returns the values of the named column.
func (s *Series) Column(name string) ([]float64, bool) {
	idx := -1
	for i, h := range s.Header {
		if h == name {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, false
	}
	out := make([]float64, len(s.Rows))
	for i, row := range s.Rows {
		out[i] = row[idx]
	}
	return out, true
}

func (s *Store) LoadSeries(runID string) (*Series, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, framesFile))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("run %s: %w", runID, err)
	}
	if len(records) == 0 {
		return &Series{}, nil
	}

	series := &Series{Header: records[0], Rows: make([][]float64, 0, len(records)-1)}
	for i, record := range records[1:] {
		row := make([]float64, len(record))
		for j, field := range record {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("run %s: frame %d column %s: %w", runID, i, series.Header[j], err)
			}
			row[j] = v
		}
		series.Rows = append(series.Rows, row)
	}
	return series, nil
}
