package regions

import "github.com/arcadialabs/landgrid-backend/internal/grid"

// slotOffset walks the square spiral to the given slot and scales the
// resulting cell by the world's slot pitch. Slot 0 sits at the origin; each
// later slot lands on a distinct cell, so regions never overlap as long as
// the pitch exceeds the widest region's footprint.
func slotOffset(slot int, pitch int64) grid.Offset {
	x, z := 0, 0
	dx, dz := 1, 0
	legLength, legsDone, steps := 1, 0, 0
	for i := 0; i < slot; i++ {
		x += dx
		z += dz
		steps++
		if steps == legLength {
			steps = 0
			dx, dz = -dz, dx
			legsDone++
			if legsDone%2 == 0 {
				legLength++
			}
		}
	}
	return grid.Offset{X: int64(x) * pitch, Z: int64(z) * pitch}
}
