package builder

// attachDoors wires door nodes that the line pass left unconnected to the
// nearest pathway node on each nearby segment, at most MaxDoorLinks times per
// door. It returns the number of edges added and the doors still without
// any edge.
func (nb *Builder) attachDoors() (int, []int32) {
	added := 0
	var orphans []int32

	for _, door := range nb.index.Nodes() {
		if !door.IsDoor() || nb.graph.degree[door.ID] > 0 {
			continue
		}
		p := door.Point()
		links := 0

		for _, s := range nb.segments {
			if links >= nb.opts.MaxDoorLinks {
				break
			}
			if s.Degenerate() || s.DistanceTo(p) >= nb.opts.DoorSnapDistance {
				continue
			}

			best := int32(-1)
			bestDist := nb.opts.DoorMaxLink
			for _, ol := range nb.nodesOnSegment(s, true) {
				d := nb.index.Node(ol.id).Point().Distance(p)
				if d < bestDist || (d == bestDist && best >= 0 && ol.id < best) {
					best, bestDist = ol.id, d
				}
			}
			if best < 0 {
				continue
			}
			if nb.graph.addEdge(door.ID, best, bestDist) {
				added++
				links++
			}
		}

		if links == 0 {
			orphans = append(orphans, door.ID)
		}
	}
	return added, orphans
}
