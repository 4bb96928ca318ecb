package attributes

import (
	"github.com/arcadialabs/landgrid-backend/internal/grid"
	"github.com/arcadialabs/landgrid-backend/pkg/enums"
	"github.com/arcadialabs/landgrid-backend/pkg/errors"
)

// Attributes are the derived, immutable properties of a parcel. They are a
// pure function of grid coordinates and region size, so they are never stored
// authoritatively and two computations on the same input always agree.
type Attributes struct {
	Tier              enums.Tier
	District          enums.District
	Zone              enums.Zone
	IsCornerLot       bool
	IsMainStreet      bool
	IsFounderPlot     bool
	MaxBuildingHeight int
}

// Tier radii scale with the region's shorter edge so regions of any size get
// a proportional core/ring layout. A 40x40 region yields radii 6 and 12.
const (
	coreRadiusPct = 15
	ringRadiusPct = 30
)

// Building height limits per tier, with a bonus for main-street frontage.
const (
	heightCore       = 120
	heightRing       = 80
	heightFrontier   = 40
	heightMainStreet = 20
)

// Compute derives the full attribute set for a coordinate. FounderPlots is
// the count of leading indices the region reserved at creation time.
func Compute(size grid.Size, c grid.Coords, founderPlots int) (Attributes, error) {
	index, err := grid.IndexFromCoords(size, c)
	if err != nil {
		return Attributes{}, err
	}

	district := districtFor(size, c)
	attrs := Attributes{
		Tier:          tierFor(size, c),
		District:      district,
		Zone:          enums.ZoneForDistrict(district),
		IsCornerLot:   isCornerLot(size, c),
		IsMainStreet:  isMainStreet(size, c),
		IsFounderPlot: founderPlots > 0 && index < founderPlots,
	}
	attrs.MaxBuildingHeight = maxHeight(attrs.Tier, attrs.IsMainStreet)
	return attrs, nil
}

// tierFor classifies by squared Euclidean distance from the geometric center.
// Working on doubled coordinates keeps the center exact for even-sized grids
// without floating point.
func tierFor(size grid.Size, c grid.Coords) enums.Tier {
	// Center of an N-wide grid sits at (N-1)/2; doubling avoids the halves.
	dx := int64(2*c.X - (size.Width - 1))
	dy := int64(2*c.Y - (size.Height - 1))
	distSq := dx*dx + dy*dy

	minEdge := size.Width
	if size.Height < minEdge {
		minEdge = size.Height
	}
	coreRadius := int64(2 * minEdge * coreRadiusPct / 100)
	ringRadius := int64(2 * minEdge * ringRadiusPct / 100)

	switch {
	case distSq <= coreRadius*coreRadius:
		return enums.TierCore
	case distSq <= ringRadius*ringRadius:
		return enums.TierRing
	default:
		return enums.TierFrontier
	}
}

// districtFor layers special bands over the four quadrant districts:
// the outer perimeter is public land, the ring one step inside is
// residential, and the crossing of the two central axes is DAO ground.
// Everything else falls to its quadrant, resolved with strict `<` against
// the half-width so each coordinate lands in exactly one district.
func districtFor(size grid.Size, c grid.Coords) enums.District {
	if onPerimeter(size, c) {
		return enums.DistrictPublic
	}
	if onInnerRing(size, c) {
		return enums.DistrictResidential
	}
	if onCentralAxis(c.X, size.Width) && onCentralAxis(c.Y, size.Height) {
		return enums.DistrictDAO
	}

	left := c.X < size.Width/2
	top := c.Y < size.Height/2
	switch {
	case left && top:
		return enums.DistrictGaming
	case !left && top:
		return enums.DistrictBusiness
	case left && !top:
		return enums.DistrictSocial
	default:
		return enums.DistrictDefi
	}
}

func onPerimeter(size grid.Size, c grid.Coords) bool {
	return c.X == 0 || c.Y == 0 || c.X == size.Width-1 || c.Y == size.Height-1
}

func onInnerRing(size grid.Size, c grid.Coords) bool {
	return c.X == 1 || c.Y == 1 || c.X == size.Width-2 || c.Y == size.Height-2
}

// onCentralAxis reports whether a coordinate lies on the central axis line of
// an edge: both middle lines for even dimensions, the single middle line for
// odd ones.
func onCentralAxis(v, extent int) bool {
	if extent%2 == 0 {
		return v == extent/2-1 || v == extent/2
	}
	return v == extent/2
}

func isCornerLot(size grid.Size, c grid.Coords) bool {
	return (c.X == 0 || c.X == size.Width-1) && (c.Y == 0 || c.Y == size.Height-1)
}

func isMainStreet(size grid.Size, c grid.Coords) bool {
	return onCentralAxis(c.X, size.Width) || onCentralAxis(c.Y, size.Height)
}

func maxHeight(tier enums.Tier, mainStreet bool) int {
	height := heightFrontier
	switch tier {
	case enums.TierCore:
		height = heightCore
	case enums.TierRing:
		height = heightRing
	}
	if mainStreet {
		height += heightMainStreet
	}
	return height
}

// ComputeByIndex is a convenience wrapper for callers holding a linear index.
func ComputeByIndex(size grid.Size, index, founderPlots int) (Attributes, error) {
	c, err := grid.CoordsFromIndex(size, index)
	if err != nil {
		return Attributes{}, err
	}
	attrs, err := Compute(size, c, founderPlots)
	if err != nil {
		return Attributes{}, errors.Wrap(errors.CodeInternal, err, "attributes for valid index")
	}
	return attrs, nil
}
