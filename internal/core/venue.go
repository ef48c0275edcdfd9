package core

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// VenueProfile carries per-venue review tuning loaded from venues.yml.
type VenueProfile struct {
	// Extra instructions appended to every agent prompt for this venue.
	CustomInstructions []string `yaml:"custom_instructions"`

	// Additional keywords that make a section relevant for rigor
	// analysis, on top of the configured defaults.
	ExtraRigorKeywords []string `yaml:"extra_rigor_keywords"`
}

// VenueProfiles maps a venue name (e.g. "NeurIPS") to its profile.
type VenueProfiles map[string]VenueProfile

// LoadVenueProfiles reads venue profiles from a YAML file. A missing file
// is not an error; reviews then run without venue tuning.
func LoadVenueProfiles(path string) (VenueProfiles, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return VenueProfiles{}, nil
		}
		return nil, fmt.Errorf("failed to read venue profiles: %w", err)
	}

	var profiles VenueProfiles
	if err := yaml.Unmarshal(data, &profiles); err != nil {
		return nil, fmt.Errorf("failed to parse venue profiles: %w", err)
	}
	if profiles == nil {
		profiles = VenueProfiles{}
	}
	return profiles, nil
}

// Lookup returns the profile for a venue, or a zero profile when the venue
// is unknown or empty.
func (p VenueProfiles) Lookup(venue string) VenueProfile {
	if venue == "" {
		return VenueProfile{}
	}
	return p[venue]
}
