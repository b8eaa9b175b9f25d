package scene

import (
	"fmt"

	"github.com/chazu/brushwork/pkg/geom"
	"github.com/deadsy/sdfx/sdf"
)

// ValidationSeverity indicates whether a finding blocks a commit or is
// merely informational.
type ValidationSeverity int

const (
	SeverityError   ValidationSeverity = iota // blocks commit
	SeverityWarning                           // informational
)

func (s ValidationSeverity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return fmt.Sprintf("ValidationSeverity(%d)", int(s))
	}
}

// ValidationError describes a single validation finding.
type ValidationError struct {
	NodeID   NodeID             // which node has the problem (zero if document-level)
	Message  string             // human-readable description
	Severity ValidationSeverity // error or warning
}

func (e ValidationError) Error() string {
	if e.NodeID.IsZero() {
		return fmt.Sprintf("[%s] %s", e.Severity, e.Message)
	}
	return fmt.Sprintf("[%s] node %s: %s", e.Severity, e.NodeID.Short(), e.Message)
}

func validate(s *state, worldBounds sdf.Box3) []ValidationError {
	var errs []ValidationError
	errs = append(errs, validateTree(s)...)
	errs = append(errs, validateReferences(s)...)
	errs = append(errs, validateNames(s)...)
	errs = append(errs, validateBrushes(s, worldBounds)...)
	return errs
}

// validateTree checks for cycles using DFS with 3-color marking and warns
// about nodes unreachable from the roots.
func validateTree(s *state) []ValidationError {
	const (
		white = iota
		gray
		black
	)

	color := make(map[NodeID]int)
	var errs []ValidationError

	var visit func(id NodeID) bool // returns true if a cycle was found
	visit = func(id NodeID) bool {
		switch color[id] {
		case black:
			return false
		case gray:
			errs = append(errs, ValidationError{
				NodeID:   id,
				Message:  "cycle detected: node is its own ancestor",
				Severity: SeverityError,
			})
			return true
		}
		color[id] = gray
		if n, ok := s.nodes[id]; ok {
			for _, c := range n.Children {
				if visit(c) {
					return true
				}
			}
		}
		color[id] = black
		return false
	}

	for _, id := range s.roots {
		if visit(id) {
			return errs
		}
	}
	for id, n := range s.nodes {
		if color[id] == white {
			name := n.Name
			if name == "" {
				name = id.Short()
			}
			errs = append(errs, ValidationError{
				NodeID:   id,
				Message:  fmt.Sprintf("node %q is not reachable from any root (orphan)", name),
				Severity: SeverityWarning,
			})
		}
	}
	return errs
}

// validateReferences checks that every child and root exists and that
// parent links agree with child lists.
func validateReferences(s *state) []ValidationError {
	var errs []ValidationError
	for _, rid := range s.roots {
		if _, ok := s.nodes[rid]; !ok {
			errs = append(errs, ValidationError{
				Message:  fmt.Sprintf("root reference %s does not exist", rid.Short()),
				Severity: SeverityError,
			})
		}
	}
	for _, n := range s.nodes {
		if n.Kind() == KindBrush && len(n.Children) > 0 {
			errs = append(errs, ValidationError{
				NodeID:   n.ID,
				Message:  "brush has children",
				Severity: SeverityError,
			})
		}
		for _, cid := range n.Children {
			c, ok := s.nodes[cid]
			if !ok {
				errs = append(errs, ValidationError{
					NodeID:   n.ID,
					Message:  fmt.Sprintf("child reference %s does not exist", cid.Short()),
					Severity: SeverityError,
				})
				continue
			}
			if c.Parent != n.ID {
				errs = append(errs, ValidationError{
					NodeID:   cid,
					Message:  fmt.Sprintf("parent link does not point at %s", n.ID.Short()),
					Severity: SeverityError,
				})
			}
		}
	}
	return errs
}

// validateNames checks that the name index is injective and current.
func validateNames(s *state) []ValidationError {
	var errs []ValidationError
	for name, id := range s.names {
		n, ok := s.nodes[id]
		if !ok || n.Name != name {
			errs = append(errs, ValidationError{
				Message:  fmt.Sprintf("name index entry %q is stale", name),
				Severity: SeverityError,
			})
		}
	}
	seen := make(map[string]NodeID)
	for id, n := range s.nodes {
		if n.Name == "" {
			continue
		}
		if other, dup := seen[n.Name]; dup && other != id {
			errs = append(errs, ValidationError{
				NodeID:   id,
				Message:  fmt.Sprintf("duplicate name %q", n.Name),
				Severity: SeverityError,
			})
		}
		seen[n.Name] = id
	}
	return errs
}

// validateBrushes checks brush geometry, world bounds and materials.
func validateBrushes(s *state, worldBounds sdf.Box3) []ValidationError {
	var errs []ValidationError
	for _, n := range s.nodes {
		d, ok := n.Data.(BrushData)
		if !ok {
			continue
		}
		if d.Brush == nil {
			errs = append(errs, ValidationError{NodeID: n.ID, Message: "brush node without brush", Severity: SeverityError})
			continue
		}
		if err := d.Brush.Polyhedron().Validate(); err != nil {
			errs = append(errs, ValidationError{NodeID: n.ID, Message: err.Error(), Severity: SeverityError})
		}
		if !geom.BoxContains(worldBounds, d.Brush.Bounds(), geom.PointEpsilon) {
			errs = append(errs, ValidationError{NodeID: n.ID, Message: "brush leaves the world bounds", Severity: SeverityError})
		}
		if !d.Brush.FullySpecified() {
			errs = append(errs, ValidationError{NodeID: n.ID, Message: "brush has faces without material", Severity: SeverityWarning})
		}
	}
	return errs
}
