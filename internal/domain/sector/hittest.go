package sector

import "math"

// TargetKind says what a pointer landed on.
type TargetKind int

const (
	TargetBackground TargetKind = iota
	TargetCategory
	TargetCompany
	TargetOwner
)

func (k TargetKind) String() string {
	switch k {
	case TargetCategory:
		return "category"
	case TargetCompany:
		return "company"
	case TargetOwner:
		return "owner"
	default:
		return "background"
	}
}

// Target is a hit-test result.  Index points into the Screen's Categories
// or Companies slice; it is -1 for the owner and background.
type Target struct {
	Kind  TargetKind
	Index int
}

// HitTest resolves the screen point (x, y) against the diagram under the
// viewport.  Paint order decides overlaps: the owner node is on top, then
// companies, then categories, later nodes above earlier ones.
func HitTest(s Screen, v Viewport, x, y float64) Target {
	lx, ly := v.Invert(x, y)
	if math.Hypot(lx-s.Center.X, ly-s.Center.Y) <= OwnerNodeRadius {
		return Target{Kind: TargetOwner, Index: -1}
	}
	for i := len(s.Companies) - 1; i >= 0; i-- {
		if math.Hypot(lx-s.Companies[i].X, ly-s.Companies[i].Y) <= CompanyNodeRadius {
			return Target{Kind: TargetCompany, Index: i}
		}
	}
	for i := len(s.Categories) - 1; i >= 0; i-- {
		if math.Hypot(lx-s.Categories[i].X, ly-s.Categories[i].Y) <= CategoryNodeRadius {
			return Target{Kind: TargetCategory, Index: i}
		}
	}
	return Target{Kind: TargetBackground, Index: -1}
}

//Personal.AI order the ending
