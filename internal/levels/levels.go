// Package levels loads gridplan level packs and derives their starting state.
package levels

import (
	_ "embed"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/gridplan/gridplan/internal/config"
	"github.com/gridplan/gridplan/internal/model"

	"gopkg.in/yaml.v3"
	"lukechampine.com/blake3"
)

//go:embed default_levels.yaml
var defaultPack []byte

// GoalSpec holds goal thresholds as written in a level file.
type GoalSpec struct {
	Capacity  config.Amount `yaml:"capacity"`
	Emissions config.Amount `yaml:"emissions"`
	Budget    config.Amount `yaml:"budget,omitempty"`
}

// RowSpec holds one energy row's constants as written in a level file.
type RowSpec struct {
	Type          model.EnergyType `yaml:"type"`
	BaseCapacity  config.Amount    `yaml:"base_capacity"`
	BaseEmissions config.Amount    `yaml:"base_emissions"`
	UnitCapacity  config.Amount    `yaml:"unit_capacity"`
	UnitEmissions config.Amount    `yaml:"unit_emissions"`
	Construction  config.Amount    `yaml:"construction"`
	Operating     config.Amount    `yaml:"operating"`
}

// InvestmentSpec holds one investment option as written in a level file.
type InvestmentSpec struct {
	ID         string        `yaml:"id"`
	Label      string        `yaml:"label"`
	Cost       config.Amount `yaml:"cost"`
	Multiplier config.Amount `yaml:"multiplier,omitempty"`
	Reduction  config.Amount `yaml:"reduction,omitempty"`
}

// MixSpec distributes TotalUnits over rows in proportion to Weights.
type MixSpec struct {
	TotalUnits int                          `yaml:"total_units"`
	Weights    map[model.EnergyType]float64 `yaml:"weights,omitempty"`
}

// Level is one playable level.
type Level struct {
	Number      int                      `yaml:"number"`
	Name        string                   `yaml:"name"`
	Description string                   `yaml:"description,omitempty"`
	Goals       GoalSpec                 `yaml:"goals"`
	Rows        []RowSpec                `yaml:"rows"`
	Investments []InvestmentSpec         `yaml:"investments,omitempty"`
	Seed        map[model.EnergyType]int `yaml:"seed,omitempty"`
	Mix         *MixSpec                 `yaml:"mix,omitempty"`
}

type pack struct {
	Levels []Level `yaml:"levels"`
}

// Catalog is an ordered, validated set of levels.
type Catalog struct {
	levels []Level
}

// Parse decodes and validates a YAML level pack.
func Parse(data []byte) (*Catalog, error) {
	var p pack
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parsing level pack: %w", err)
	}
	if len(p.Levels) == 0 {
		return nil, errors.New("level pack has no levels")
	}

	seen := make(map[int]bool, len(p.Levels))
	for _, lvl := range p.Levels {
		if lvl.Number < 1 {
			return nil, fmt.Errorf("level %q: number must be positive", lvl.Name)
		}
		if seen[lvl.Number] {
			return nil, fmt.Errorf("duplicate level number %d", lvl.Number)
		}
		seen[lvl.Number] = true
		if err := lvl.validate(); err != nil {
			return nil, fmt.Errorf("level %d: %w", lvl.Number, err)
		}
	}

	sort.Slice(p.Levels, func(i, j int) bool {
		return p.Levels[i].Number < p.Levels[j].Number
	})
	return &Catalog{levels: p.Levels}, nil
}

// Load reads a level pack from path. An empty path returns the default pack.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path) //nolint:gosec // user-supplied level pack
	if err != nil {
		return nil, fmt.Errorf("reading level pack: %w", err)
	}
	return Parse(data)
}

// Default returns the embedded level pack.
func Default() *Catalog {
	c, err := Parse(defaultPack)
	if err != nil {
		panic(fmt.Sprintf("embedded level pack is invalid: %v", err))
	}
	return c
}

// Levels returns the levels in ascending number order.
func (c *Catalog) Levels() []Level {
	out := make([]Level, len(c.levels))
	copy(out, c.levels)
	return out
}

// Level returns the level with the given number.
func (c *Catalog) Level(n int) (Level, bool) {
	for _, lvl := range c.levels {
		if lvl.Number == n {
			return lvl, true
		}
	}
	return Level{}, false
}

// First returns the lowest-numbered level.
func (c *Catalog) First() Level {
	return c.levels[0]
}

func (l Level) validate() error {
	if len(l.Rows) == 0 {
		return errors.New("no energy rows")
	}
	rowTypes := make(map[model.EnergyType]bool, len(l.Rows))
	for _, r := range l.Rows {
		if !r.Type.Valid() {
			return fmt.Errorf("unknown energy type %q", r.Type)
		}
		if rowTypes[r.Type] {
			return fmt.Errorf("duplicate energy type %q", r.Type)
		}
		rowTypes[r.Type] = true
	}

	ids := make(map[string]bool, len(l.Investments))
	for _, inv := range l.Investments {
		if inv.ID == "" {
			return errors.New("investment with empty id")
		}
		if ids[inv.ID] {
			return fmt.Errorf("duplicate investment id %q", inv.ID)
		}
		ids[inv.ID] = true
	}

	if l.Mix != nil && l.Mix.TotalUnits < 0 {
		return errors.New("mix total_units must not be negative")
	}
	return nil
}

// ModelGoals returns the level's goals, applying the default budget when
// the level sets none.
func (l Level) ModelGoals() model.Goals {
	budget := l.Goals.Budget.Float()
	if budget == 0 {
		budget = model.DefaultBudget
	}
	return model.Goals{
		CapacityTarget:  l.Goals.Capacity.Float(),
		EmissionsTarget: l.Goals.Emissions.Float(),
		Budget:          budget,
	}
}

// EnergyRows returns the level's rows with seeded unit counts applied.
func (l Level) EnergyRows() []model.EnergyRow {
	seed := l.SeedUnits()
	rows := make([]model.EnergyRow, 0, len(l.Rows))
	for _, r := range l.Rows {
		rows = append(rows, model.EnergyRow{
			Type:             r.Type,
			BaseCapacity:     r.BaseCapacity.Float(),
			BaseEmissions:    r.BaseEmissions.Float(),
			PerUnitCapacity:  r.UnitCapacity.Float(),
			PerUnitEmissions: r.UnitEmissions.Float(),
			ConstructionCost: r.Construction.Float(),
			OperatingCost:    r.Operating.Float(),
			Units:            seed[r.Type],
		})
	}
	return rows
}

// InvestmentOptions returns the level's investments, all disabled.
func (l Level) InvestmentOptions() []model.InvestmentOption {
	opts := make([]model.InvestmentOption, 0, len(l.Investments))
	for _, inv := range l.Investments {
		label := inv.Label
		if label == "" {
			label = inv.ID
		}
		opts = append(opts, model.InvestmentOption{
			ID:         inv.ID,
			Label:      label,
			Cost:       inv.Cost.Float(),
			Multiplier: inv.Multiplier.Float(),
			Reduction:  inv.Reduction.Float(),
		})
	}
	return opts
}

// SeedUnits returns the starting unit count per row type. Explicit seed
// values win over the proportional mix; rows named by neither start at 0.
func (l Level) SeedUnits() map[model.EnergyType]int {
	out := make(map[model.EnergyType]int, len(l.Rows))
	if len(l.Seed) > 0 {
		for _, r := range l.Rows {
			if n := l.Seed[r.Type]; n > 0 {
				out[r.Type] = n
			}
		}
		return out
	}
	if l.Mix == nil || l.Mix.TotalUnits == 0 {
		return out
	}

	types := make([]model.EnergyType, len(l.Rows))
	for i, r := range l.Rows {
		types[i] = r.Type
	}
	return ProportionalMix(types, l.Mix.Weights, l.Mix.TotalUnits)
}

// Fingerprint returns a BLAKE3 hash of the level's canonical YAML encoding.
func (l Level) Fingerprint() string {
	data, err := yaml.Marshal(l)
	if err != nil {
		return ""
	}
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:8])
}
