package grid

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/arcadialabs/landgrid-backend/pkg/errors"
)

// Size describes a region's grid dimensions in parcels.
type Size struct {
	Width  int
	Height int
}

// Coords is a parcel position within a region grid.
type Coords struct {
	X int
	Y int
}

// WorldPos is the parcel's placement in world space. Y is vertical and always
// zero at ground level; regions extend over the X/Z plane.
type WorldPos struct {
	X int64
	Y int64
	Z int64
}

// Offset is a region's placement in world space.
type Offset struct {
	X int64
	Z int64
}

func (s Size) valid() bool {
	return s.Width > 0 && s.Height > 0
}

// ParcelCount returns the number of parcels the grid addresses.
func (s Size) ParcelCount() int {
	return s.Width * s.Height
}

// CoordsFromIndex maps a linear parcel index to grid coordinates, row-major.
func CoordsFromIndex(size Size, index int) (Coords, error) {
	if !size.valid() {
		return Coords{}, errors.New(errors.CodeValidation, fmt.Sprintf("invalid grid size %dx%d", size.Width, size.Height))
	}
	if index < 0 || index >= size.ParcelCount() {
		return Coords{}, errors.New(errors.CodeOutOfRange, fmt.Sprintf("index %d outside grid of %d parcels", index, size.ParcelCount()))
	}
	return Coords{X: index % size.Width, Y: index / size.Width}, nil
}

// IndexFromCoords maps grid coordinates back to the linear parcel index.
func IndexFromCoords(size Size, c Coords) (int, error) {
	if !size.valid() {
		return 0, errors.New(errors.CodeValidation, fmt.Sprintf("invalid grid size %dx%d", size.Width, size.Height))
	}
	if c.X < 0 || c.X >= size.Width || c.Y < 0 || c.Y >= size.Height {
		return 0, errors.New(errors.CodeOutOfRange, fmt.Sprintf("coords (%d,%d) outside %dx%d grid", c.X, c.Y, size.Width, size.Height))
	}
	return c.Y*size.Width + c.X, nil
}

// WorldPosition places a parcel in world space given its region's offset and
// the global parcel edge length.
func WorldPosition(c Coords, offset Offset, parcelSize int) WorldPos {
	return WorldPos{
		X: offset.X + int64(c.X)*int64(parcelSize),
		Y: 0,
		Z: offset.Z + int64(c.Y)*int64(parcelSize),
	}
}

// FormatParcelID builds the canonical "{regionId}-{index}" identifier.
func FormatParcelID(regionID string, index int) string {
	return fmt.Sprintf("%s-%d", regionID, index)
}

// ParseParcelID splits a parcel identifier into region ID and index. Region
// IDs may themselves contain dashes, so the index is taken from the last
// dash-separated token.
func ParseParcelID(id string) (string, int, error) {
	cut := strings.LastIndex(id, "-")
	if cut <= 0 || cut == len(id)-1 {
		return "", 0, errors.New(errors.CodeValidation, fmt.Sprintf("malformed parcel id %q", id))
	}
	regionID := id[:cut]
	index, err := strconv.Atoi(id[cut+1:])
	if err != nil || index < 0 {
		return "", 0, errors.New(errors.CodeValidation, fmt.Sprintf("malformed parcel id %q", id))
	}
	return regionID, index, nil
}
