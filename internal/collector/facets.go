package collector

import (
	"fmt"

	"racectl/internal/observer"
	"racectl/internal/status"
)

// Facet is one self-reported aspect of a persona.
type Facet string

const (
	FacetDaemon    Facet = "daemon"
	FacetApp       Facet = "app"
	FacetRace      Facet = "race"
	FacetArtifacts Facet = "artifacts"
	FacetConfigs   Facet = "configs"
	FacetEtc       Facet = "etc"
)

// Facets lists the facets reported besides daemon liveness.
var Facets = []Facet{FacetApp, FacetRace, FacetArtifacts, FacetConfigs, FacetEtc}

// ParseFacet accepts the daemon facet and every member of Facets.
func ParseFacet(s string) (Facet, error) {
	if Facet(s) == FacetDaemon {
		return FacetDaemon, nil
	}
	for _, f := range Facets {
		if string(f) == s {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown facet %q", s)
}

// Value picks the facet out of a persona status.
func (f Facet) Value(ps observer.PersonaStatus) status.Value {
	switch f {
	case FacetApp:
		return ps.App
	case FacetRace:
		return ps.Race
	case FacetArtifacts:
		return ps.Artifacts
	case FacetConfigs:
		return ps.Configs
	case FacetEtc:
		return ps.Etc
	default:
		return ps.Daemon
	}
}
