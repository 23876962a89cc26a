package patient

import (
	"strings"

	"github.com/google/uuid"
)

// idLength is the length of a record identifier token.
const idLength = 8

// Allocator produces record identifiers guaranteed absent from a given
// record set. Tokens are 8-character uppercase hex drawn from a random
// UUID; uniqueness, not secrecy, is the requirement.
type Allocator struct {
	token func() string
}

// NewAllocator creates an allocator with the default token source.
func NewAllocator() *Allocator {
	return &Allocator{token: randomToken}
}

// Allocate draws tokens until one is absent from existing. The identifier
// space dwarfs practical record-set sizes, so the expected number of draws
// is ~1.
func (a *Allocator) Allocate(existing RecordSet) string {
	for {
		id := a.token()
		if _, taken := existing[id]; !taken {
			return id
		}
	}
}

func randomToken() string {
	hex := strings.ReplaceAll(uuid.New().String(), "-", "")
	return strings.ToUpper(hex[:idLength])
}
