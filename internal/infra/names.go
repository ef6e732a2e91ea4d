package infra

import (
	"fmt"
	"math/rand/v2"

	"github.com/jaevor/go-nanoid"
)

var (
	firstNames = []string{
		"Ada", "Alan", "Barbara", "Claude", "Donald", "Edsger", "Frances", "Grace",
		"Hedy", "Ivan", "John", "Ken", "Leslie", "Margaret", "Niklaus", "Olga",
		"Radia", "Rob", "Sophie", "Tim", "Ursula", "Vint", "Whitfield", "Yukihiro",
	}
	lastNames = []string{
		"Allen", "Backus", "Cerf", "Dijkstra", "Engelbart", "Floyd", "Goldberg", "Hopper",
		"Iverson", "Kay", "Knuth", "Lamport", "Liskov", "Lovelace", "McCarthy", "Perlman",
		"Ritchie", "Shannon", "Thompson", "Turing", "Wilson", "Wirth", "Yonezawa", "Zuse",
	}
)

const suffixAlphabet = "0123456789ABCDEFGHJKLMNPQRSTUVWXYZ"

// PeerNames generates "First Last" display labels for new chat peers.
type PeerNames struct {
	suffix func() string
}

// NewPeerNames creates a generator with a 4-character disambiguation tag.
func NewPeerNames() (*PeerNames, error) {
	gen, err := nanoid.CustomASCII(suffixAlphabet, 4)
	if err != nil {
		return nil, fmt.Errorf("failed to create name suffix generator: %w", err)
	}
	return &PeerNames{suffix: gen}, nil
}

// NewName returns a random full name. Names may repeat; see Suffix.
func (p *PeerNames) NewName() string {
	return firstNames[rand.IntN(len(firstNames))] + " " + lastNames[rand.IntN(len(lastNames))]
}

// Suffix returns a short random tag.
func (p *PeerNames) Suffix() string {
	return p.suffix()
}
