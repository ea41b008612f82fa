package syntax

import (
	"fmt"

	"github.com/cespare/xxhash/v2"
)

// Artifact is the build output for one version of a tree.
// Each build replaces the previous one; artifacts are never merged.
type Artifact struct {
	Version uint32 // tree version the artifact was built from
	Source  []byte // rendered module text
	Digest  uint64 // xxhash of Source
}

// Build renders the tree at its current version into an artifact
func Build(t *Tree) *Artifact {
	src := t.Render()
	return &Artifact{
		Version: t.Version(),
		Source:  src,
		Digest:  xxhash.Sum64(src),
	}
}

// String returns a short handle for display
func (a *Artifact) String() string {
	if a == nil {
		return "<none>"
	}
	return fmt.Sprintf("<artifact v%d %016x>", a.Version, a.Digest)
}
