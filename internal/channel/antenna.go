package channel

// Antenna is the radio front-end attached to a reader or a tag
// (spec.md §4.D).
type Antenna struct {
	Pos            Vec3
	DirectionTheta Vec3 // unit vector defining azimuth 0
	DirectionPhi   Vec3 // unit vector defining the orthogonal tilt axis, defaults to x-hat
	GainDB         float64
	CableLossDB    float64
	Pattern        RadiationPattern
}

// NewAntenna builds an Antenna with the dipole pattern and an x-hat
// tilt axis, the defaults spec.md §4.D describes.
func NewAntenna(pos, directionTheta Vec3, gainDB, cableLossDB float64) Antenna {
	return Antenna{
		Pos:            pos,
		DirectionTheta: directionTheta.Unit(),
		DirectionPhi:   Vec3{X: 1, Y: 0, Z: 0},
		GainDB:         gainDB,
		CableLossDB:    cableLossDB,
		Pattern:        Dipole{},
	}
}
