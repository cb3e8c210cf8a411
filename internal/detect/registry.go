package detect

import (
	"sort"

	"github.com/archlint/archlint/internal/config"
)

// Category drives incremental reuse: FileLocal results are cached per file,
// everything else re-runs on any change.
type Category int

const (
	// CategoryFileLocal results depend only on one file.
	CategoryFileLocal Category = iota
	// CategoryImportBased results depend on a file and its imports.
	CategoryImportBased
	// CategoryGraphBased results depend on the whole graph.
	CategoryGraphBased
	// CategoryGlobal results depend on all files.
	CategoryGlobal
)

// Info is the static metadata of a detector.
type Info struct {
	ID             string
	Name           string
	Description    string
	DefaultEnabled bool
	IsDeep         bool
	Category       Category
}

// Detector is the capability every analysis implements.
type Detector interface {
	Info() Info
	Detect(ctx *Context) []ArchSmell
}

// Factory builds a detector instance for a scan.
type Factory func(cfg *config.Config) Detector

type registration struct {
	info    Info
	factory Factory
}

var registry = map[string]registration{}

// Register adds a detector to the process-wide table. Called from init
// functions; duplicate IDs panic immediately since that is a programming
// error.
func Register(info Info, factory Factory) {
	if _, exists := registry[info.ID]; exists {
		panic("duplicate detector id: " + info.ID)
	}
	registry[info.ID] = registration{info: info, factory: factory}
}

// AllInfos lists every registered detector, id-sorted.
func AllInfos() []Info {
	infos := make([]Info, 0, len(registry))
	for _, reg := range registry {
		infos = append(infos, reg.info)
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].ID < infos[j].ID })
	return infos
}

// InfoFor returns the metadata for one detector id.
func InfoFor(id string) (Info, bool) {
	reg, ok := registry[id]
	return reg.info, ok
}

// Create instantiates one detector by id.
func Create(id string, cfg *config.Config) (Detector, bool) {
	reg, ok := registry[id]
	if !ok {
		return nil, false
	}
	return reg.factory(cfg), true
}
