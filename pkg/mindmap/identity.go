package mindmap

import "fmt"

// NodeIDCentral is the identifier of the unique tree root.
const NodeIDCentral = "central"

// BranchID returns the identifier of branch i.
// Identifiers are pure functions of structural position: the same coordinates
// always yield the same id, and distinct coordinates never collide.
func BranchID(i int) string {
	return fmt.Sprintf("branch-%d", i)
}

// SubID returns the identifier of sub-branch j under branch i.
func SubID(i, j int) string {
	return fmt.Sprintf("sub-%d-%d", i, j)
}

// EdgeID returns the identifier of the edge from source to target.
// Edge identity is derived from its endpoints, which are themselves
// structural, so edge ids inherit the same determinism guarantee.
func EdgeID(source, target string) string {
	return fmt.Sprintf("e-%s-%s", source, target)
}
