package core

// Offset2 is a relative displacement on a 2D lattice.
type Offset2 struct {
	DX, DY int
}

// Offset3 is a relative displacement on a 3D lattice.
type Offset3 struct {
	DX, DY, DZ int
}

// VonNeumann2D returns the four orthogonal neighbours, excluding the centre.
// Order: +x, -x, +y, -y.
func VonNeumann2D() []Offset2 {
	return []Offset2{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}
}

// VonNeumann3D returns the six face neighbours, excluding the centre.
// Order: +x, -x, +y, -y, +z, -z.
func VonNeumann3D() []Offset3 {
	return []Offset3{{1, 0, 0}, {-1, 0, 0}, {0, 1, 0}, {0, -1, 0}, {0, 0, 1}, {0, 0, -1}}
}

// Disk returns every offset within Euclidean distance radius of the origin,
// scanned row by row from (-r,-r). The origin is included only when
// includeCenter is set. A radius below 1 yields at most the centre.
func Disk(radius int, includeCenter bool) []Offset2 {
	var hood []Offset2
	r2 := radius * radius
	for dx := -radius; dx <= radius; dx++ {
		for dy := -radius; dy <= radius; dy++ {
			if dx == 0 && dy == 0 {
				if includeCenter {
					hood = append(hood, Offset2{})
				}
				continue
			}
			if dx*dx+dy*dy <= r2 {
				hood = append(hood, Offset2{dx, dy})
			}
		}
	}
	return hood
}

// Ball is the 3D analogue of Disk.
func Ball(radius int, includeCenter bool) []Offset3 {
	var hood []Offset3
	r2 := radius * radius
	for dx := -radius; dx <= radius; dx++ {
		for dy := -radius; dy <= radius; dy++ {
			for dz := -radius; dz <= radius; dz++ {
				if dx == 0 && dy == 0 && dz == 0 {
					if includeCenter {
						hood = append(hood, Offset3{})
					}
					continue
				}
				if dx*dx+dy*dy+dz*dz <= r2 {
					hood = append(hood, Offset3{dx, dy, dz})
				}
			}
		}
	}
	return hood
}
