package swarm

// FlockParams configures the boids rules.
type FlockParams struct {
	SeparationRadius float64
	AlignmentRadius  float64
	CohesionRadius   float64

	SeparationWeight float64
	AlignmentWeight  float64
	CohesionWeight   float64

	// Neighbour subsampling strides.
	SeparationStride int
	NeighborStride   int
}

// DefaultFlockParams returns the production radii, weights and strides.
func DefaultFlockParams() FlockParams {
	return FlockParams{
		SeparationRadius: 25,
		AlignmentRadius:  50,
		CohesionRadius:   50,
		SeparationWeight: 1.5,
		AlignmentWeight:  1.0,
		CohesionWeight:   1.0,
		SeparationStride: 2,
		NeighborStride:   3,
	}
}

// Flock accumulates weighted separation, alignment and cohesion into
// agents[i].
func Flock(i int, agents []Agent, p FlockParams) {
	a := &agents[i]
	sep := Separate(a, agents, p.SeparationRadius, p.SeparationStride)
	ali := Align(a, agents, p.AlignmentRadius, p.NeighborStride)
	coh := Cohere(a, agents, p.CohesionRadius, p.NeighborStride)

	a.ApplyForce(sep.Scale(p.SeparationWeight))
	a.ApplyForce(ali.Scale(p.AlignmentWeight))
	a.ApplyForce(coh.Scale(p.CohesionWeight))
}

// Separate steers away from neighbours closer than radius, weighting each
// by inverse distance. Only every stride-th agent is examined.
func Separate(a *Agent, agents []Agent, radius float64, stride int) Vec2 {
	stride = max(stride, 1)
	var steer Vec2
	count := 0
	for j := 0; j < len(agents); j += stride {
		d := a.Pos.Dist(agents[j].Pos)
		if d > 0 && d < radius {
			steer = steer.Add(a.Pos.Sub(agents[j].Pos).Normalize().Scale(1 / d))
			count++
		}
	}
	if count > 0 {
		steer = steer.Scale(1 / float64(count))
	}
	if steer.MagSq() > 0 {
		steer = a.SteerToward(steer)
	}
	return steer
}

// Align steers toward the average heading of neighbours within radius.
func Align(a *Agent, agents []Agent, radius float64, stride int) Vec2 {
	stride = max(stride, 1)
	var sum Vec2
	count := 0
	for j := 0; j < len(agents); j += stride {
		d := a.Pos.Dist(agents[j].Pos)
		if d > 0 && d < radius {
			sum = sum.Add(agents[j].Vel)
			count++
		}
	}
	if count == 0 {
		return Vec2{}
	}
	return a.SteerToward(sum.Scale(1 / float64(count)))
}

// Cohere seeks the centroid of neighbours within radius.
func Cohere(a *Agent, agents []Agent, radius float64, stride int) Vec2 {
	stride = max(stride, 1)
	var sum Vec2
	count := 0
	for j := 0; j < len(agents); j += stride {
		d := a.Pos.Dist(agents[j].Pos)
		if d > 0 && d < radius {
			sum = sum.Add(agents[j].Pos)
			count++
		}
	}
	if count == 0 {
		return Vec2{}
	}
	return a.Seek(sum.Scale(1 / float64(count)))
}
