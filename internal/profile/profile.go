// Package profile holds the printed identity of the shop: its name, pickup
// location and the timezone used for print timestamps.
package profile

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	// Print timestamps need zone data even in minimal containers.
	_ "time/tzdata"

	"gopkg.in/yaml.v3"
)

const DefaultTimezone = "America/New_York"

type Shop struct {
	Name     string `yaml:"name"`
	Pickup   Pickup `yaml:"pickup"`
	Timezone string `yaml:"timezone"`

	location *time.Location
}

type Pickup struct {
	Name         string   `yaml:"name"`
	AddressLines []string `yaml:"address_lines"`
}

// Default returns the built-in profile.
func Default() *Shop {
	shop := &Shop{
		Name: "The Sweet Tooth Chocolate Factory",
		Pickup: Pickup{
			Name: "The Sweet Tooth",
			AddressLines: []string{
				"18435 NE 19th Ave",
				"North Miami Beach, FL 33179",
			},
		},
		Timezone: DefaultTimezone,
	}
	shop.location, _ = time.LoadLocation(DefaultTimezone)
	return shop
}

// Load reads a YAML profile from path. Fields left empty in the file keep the
// built-in defaults. An empty path returns Default().
func Load(path string) (*Shop, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return Default(), nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read shop profile: %w", err)
	}
	return Parse(content)
}

// Parse decodes YAML profile content over the defaults.
func Parse(content []byte) (*Shop, error) {
	var parsed Shop
	if err := yaml.Unmarshal(content, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse shop profile: %w", err)
	}

	shop := Default()
	if name := strings.TrimSpace(parsed.Name); name != "" {
		shop.Name = name
	}
	if name := strings.TrimSpace(parsed.Pickup.Name); name != "" {
		shop.Pickup.Name = name
	}
	if lines := nonBlank(parsed.Pickup.AddressLines); len(lines) > 0 {
		shop.Pickup.AddressLines = lines
	}
	if tz := strings.TrimSpace(parsed.Timezone); tz != "" {
		loc, err := time.LoadLocation(tz)
		if err != nil {
			return nil, fmt.Errorf("invalid shop timezone %q: %w", tz, err)
		}
		shop.Timezone = tz
		shop.location = loc
	}

	if err := shop.Validate(); err != nil {
		return nil, err
	}
	return shop, nil
}

func (s *Shop) Validate() error {
	if s == nil {
		return errors.New("shop profile is nil")
	}
	if strings.TrimSpace(s.Name) == "" {
		return errors.New("shop profile name is required")
	}
	return nil
}

// Location returns the profile timezone, falling back to UTC.
func (s *Shop) Location() *time.Location {
	if s == nil || s.location == nil {
		return time.UTC
	}
	return s.location
}

func nonBlank(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
