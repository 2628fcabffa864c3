package topology

import "fmt"

const (
	clientPrefix = "race-client-"
	serverPrefix = "race-server-"
)

// PersonaName returns the stable persona name for the n-th (1-based) persona
// of a role.
func PersonaName(role Role, n int) string {
	if role == RoleServer {
		return fmt.Sprintf("%s%05d", serverPrefix, n)
	}
	return fmt.Sprintf("%s%05d", clientPrefix, n)
}

// PersonaSet is the deterministic naming of every required persona.
type PersonaSet struct {
	byBucket map[Bucket][]string
	// Genesis lists the clients present from initial stand-up.
	Genesis []string
	// Bootstrap lists the clients that join later through an introducer.
	Bootstrap []string
	// Servers lists every server persona.
	Servers []string
}

// Personas names the personas required by req. Clients are numbered across
// client buckets in canonical bucket order, servers likewise; within a
// bucket genesis clients come before bootstrap clients.
func Personas(req Requirements) PersonaSet {
	set := PersonaSet{byBucket: make(map[Bucket][]string)}
	for _, role := range []Role{RoleClient, RoleServer} {
		n := 0
		for _, ib := range canonicalInstanceBuckets {
			b := Bucket{InstanceBucket: ib, Role: role}
			count := req.Count(b)
			bootstrap := req.bootstrapCount(b)
			for i := 0; i < count; i++ {
				n++
				name := PersonaName(role, n)
				set.byBucket[b] = append(set.byBucket[b], name)
				switch {
				case role == RoleServer:
					set.Servers = append(set.Servers, name)
				case i >= count-bootstrap:
					set.Bootstrap = append(set.Bootstrap, name)
				default:
					set.Genesis = append(set.Genesis, name)
				}
			}
		}
	}
	return set
}

// Bucket returns the personas of one bucket in order.
func (p PersonaSet) Bucket(b Bucket) []string {
	return p.byBucket[b]
}

// All returns clients then servers.
func (p PersonaSet) All() []string {
	var out []string
	for _, role := range []Role{RoleClient, RoleServer} {
		for _, ib := range canonicalInstanceBuckets {
			out = append(out, p.byBucket[Bucket{InstanceBucket: ib, Role: role}]...)
		}
	}
	return out
}
