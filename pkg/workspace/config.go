package workspace

import (
	"io"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/panels/pkg/errors"
	"github.com/matzehuels/panels/pkg/layout"
)

// Config is a saved layout: every panel plus grid and viewport.
type Config struct {
	ID          string              `json:"id" toml:"id" bson:"_id"`
	Name        string              `json:"name" toml:"name" bson:"name"`
	Description string              `json:"description,omitempty" toml:"description,omitempty" bson:"description,omitempty"`
	Panels      []layout.Panel      `json:"panels" toml:"panels" bson:"panels"`
	Grid        layout.GridSettings `json:"gridSettings" toml:"grid" bson:"grid"`
	Viewport    layout.Viewport     `json:"viewport" toml:"viewport" bson:"viewport"`
	CreatedAt   time.Time           `json:"createdAt" toml:"created_at" bson:"created_at"`
	UpdatedAt   time.Time           `json:"updatedAt" toml:"updated_at" bson:"updated_at"`
}

// Clone returns a deep copy.
func (c Config) Clone() Config {
	out := c
	out.Panels = make([]layout.Panel, len(c.Panels))
	for i, p := range c.Panels {
		out.Panels[i] = p.Clone()
	}
	return out
}

// Validate checks the name and that every panel has a positive size and
// a unique id.
func (c Config) Validate() error {
	if err := errors.ValidateWorkspaceName(c.Name); err != nil {
		return err
	}
	seen := make(map[string]bool, len(c.Panels))
	for _, p := range c.Panels {
		if p.ID == "" {
			return errors.New(errors.ErrCodeInvalidWorkspace, "panel without id")
		}
		if seen[p.ID] {
			return errors.New(errors.ErrCodeInvalidWorkspace, "duplicate panel id %q", p.ID)
		}
		seen[p.ID] = true
		if !p.Size.IsPositive() {
			return errors.New(errors.ErrCodeInvalidGeometry, "panel %q has non-positive size", p.ID)
		}
	}
	return nil
}

// ExportTOML writes c as a TOML document.
func ExportTOML(w io.Writer, c Config) error {
	if err := toml.NewEncoder(w).Encode(c); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "encode workspace %s", c.ID)
	}
	return nil
}

// ImportTOML reads a Config written by ExportTOML and validates it.
func ImportTOML(r io.Reader) (Config, error) {
	var c Config
	if _, err := toml.NewDecoder(r).Decode(&c); err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidWorkspace, err, "decode workspace")
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}
