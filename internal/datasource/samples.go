package datasource

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/seenimoa/marketdesk/pkg/models"
)

// Bundled sample file names under the data directory.
const (
	TradesSampleFile    = "query_trades_sample.json"
	WatchlistSampleFile = "get_watchlist_sample.json"
	RegimeSampleFile    = "detect_regime_sample.json"
	RegImpactSampleFile = "reg_impact_sample.json"
	ClientSampleFile    = "client_brief_sample.json"
	ResearchSampleFile  = "research_sample.json"
	StyleGuideFile      = "style_guide.json"
	TranscriptFile      = "earnings_call_sample.json"
	TaxonomyJSONFile    = "reg_taxonomy.json"
	TaxonomyYAMLFile    = "reg_taxonomy.yaml"
)

// Samples reads the bundled payloads used when a request omits its own.
// File contents are cached briefly; every call decodes a fresh value.
type Samples struct {
	dir   string
	fsys  fs.FS
	cache *Cache[[]byte]
}

// NewSamples returns a loader rooted at the directory dir.
func NewSamples(dir string) *Samples {
	return NewSamplesFS(os.DirFS(dir), dir)
}

// NewSamplesFS returns a loader over fsys; label names it in Dir.
func NewSamplesFS(fsys fs.FS, label string) *Samples {
	return &Samples{dir: label, fsys: fsys, cache: NewCache[[]byte](time.Minute)}
}

// OpenSamples reads from dir when it exists and from fallback otherwise.
func OpenSamples(dir string, fallback fs.FS) *Samples {
	if info, err := os.Stat(dir); (err != nil || !info.IsDir()) && fallback != nil {
		return NewSamplesFS(fallback, "embedded")
	}
	return NewSamples(dir)
}

// Dir returns the data directory, or the label of an embedded set.
func (s *Samples) Dir() string { return s.dir }

// Trades loads the sample trade query result.
func (s *Samples) Trades() (models.TradesPayload, error) {
	var v models.TradesPayload
	return v, s.loadJSON(TradesSampleFile, &v)
}

// Watchlist loads the sample watchlist.
func (s *Samples) Watchlist() (models.Watchlist, error) {
	var v models.Watchlist
	return v, s.loadJSON(WatchlistSampleFile, &v)
}

// Regime loads the sample regime timeline.
func (s *Samples) Regime() (models.RegimePayload, error) {
	var v models.RegimePayload
	return v, s.loadJSON(RegimeSampleFile, &v)
}

// RegImpact loads the sample regulation.
func (s *Samples) RegImpact() (models.RegImpactSample, error) {
	var v models.RegImpactSample
	return v, s.loadJSON(RegImpactSampleFile, &v)
}

// ClientProfile loads the sample CRM profile.
func (s *Samples) ClientProfile() (models.ClientProfile, error) {
	v := models.ClientProfile{}
	return v, s.loadJSON(ClientSampleFile, &v)
}

// Research loads the sample filing extract for a research note.
func (s *Samples) Research() (models.ResearchSource, error) {
	var v models.ResearchSource
	return v, s.loadJSON(ResearchSampleFile, &v)
}

// StyleGuide loads the house style for research notes.
func (s *Samples) StyleGuide() (models.StyleGuide, error) {
	var v models.StyleGuide
	return v, s.loadJSON(StyleGuideFile, &v)
}

// Transcript loads the sample earnings-call transcript.
func (s *Samples) Transcript() (models.TranscriptSample, error) {
	var v models.TranscriptSample
	return v, s.loadJSON(TranscriptFile, &v)
}

// Taxonomy loads the desk-mapping taxonomy, preferring JSON and falling
// back to YAML.
func (s *Samples) Taxonomy() (models.Taxonomy, error) {
	var v models.Taxonomy
	err := s.loadJSON(TaxonomyJSONFile, &v)
	if !errors.Is(err, ErrSampleNotFound) {
		return v, err
	}
	data, err := s.read(TaxonomyYAMLFile)
	if err != nil {
		return v, err
	}
	if err := yaml.Unmarshal(data, &v); err != nil {
		return v, fmt.Errorf("decode %s: %w", TaxonomyYAMLFile, err)
	}
	return v, nil
}

// LoadTaxonomyFile reads a taxonomy from path; .yaml/.yml files are
// decoded as YAML, everything else as JSON.
func LoadTaxonomyFile(path string) (models.Taxonomy, error) {
	var v models.Taxonomy
	data, err := os.ReadFile(path)
	if err != nil {
		return v, fmt.Errorf("read taxonomy: %w", err)
	}
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &v)
	default:
		err = json.Unmarshal(data, &v)
	}
	if err != nil {
		return v, fmt.Errorf("decode taxonomy %s: %w", path, err)
	}
	return v, nil
}

func (s *Samples) loadJSON(name string, v any) error {
	data, err := s.read(name)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s: %w", name, err)
	}
	return nil
}

func (s *Samples) read(name string) ([]byte, error) {
	if cached, ok := s.cache.Get(name); ok {
		return cached, nil
	}
	data, err := fs.ReadFile(s.fsys, name)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrSampleNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	s.cache.Set(name, data)
	return data, nil
}
