package topology

import "errors"

// ErrNoGenesis is returned when bootstrap clients exist but no genesis
// client can introduce them.
var ErrNoGenesis = errors.New("bootstrap clients require at least one genesis client")

// BootstrapAssignment pairs a bootstrap client with the genesis client that
// introduces it and the genesis client that verifies the introduction.
type BootstrapAssignment struct {
	Bootstrap  string `yaml:"bootstrap" json:"bootstrap"`
	Introducer string `yaml:"introducer" json:"introducer"`
	Verifier   string `yaml:"verifier" json:"verifier"`
}

// BootstrapAssignments spreads bootstrap clients round-robin over the
// genesis clients. With two or more genesis clients the verifier is the
// introducer's successor; with exactly one it is the introducer itself.
func BootstrapAssignments(genesis, bootstrap []string) ([]BootstrapAssignment, error) {
	if len(bootstrap) == 0 {
		return nil, nil
	}
	if len(genesis) == 0 {
		return nil, ErrNoGenesis
	}

	out := make([]BootstrapAssignment, len(bootstrap))
	for i, b := range bootstrap {
		introducer := genesis[i%len(genesis)]
		verifier := introducer
		if len(genesis) >= 2 {
			verifier = genesis[(i+1)%len(genesis)]
		}
		out[i] = BootstrapAssignment{Bootstrap: b, Introducer: introducer, Verifier: verifier}
	}
	return out, nil
}
