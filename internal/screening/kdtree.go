package screening

import "gonum.org/v1/gonum/spatial/kdtree"

// objectPoint is one object's position at a grid instant, tagged with its
// index into the slice of valid objects for that instant.
type objectPoint struct {
	pos [3]float64
	idx int
}

func (p objectPoint) Compare(c kdtree.Comparable, d kdtree.Dim) float64 {
	q := c.(objectPoint)
	return p.pos[d] - q.pos[d]
}

func (p objectPoint) Dims() int { return 3 }

// Distance returns the squared Euclidean distance, as the kdtree package
// requires for consistency with Compare.
func (p objectPoint) Distance(c kdtree.Comparable) float64 {
	q := c.(objectPoint)
	dx := p.pos[0] - q.pos[0]
	dy := p.pos[1] - q.pos[1]
	dz := p.pos[2] - q.pos[2]
	return dx*dx + dy*dy + dz*dz
}

// objectPoints implements kdtree.Interface over a slice of objectPoint.
type objectPoints []objectPoint

func (p objectPoints) Index(i int) kdtree.Comparable { return p[i] }
func (p objectPoints) Len() int                      { return len(p) }
func (p objectPoints) Slice(start, end int) kdtree.Interface {
	return p[start:end]
}
func (p objectPoints) Pivot(d kdtree.Dim) int {
	return objectPlane{objectPoints: p, Dim: d}.Pivot()
}

// objectPlane sorts objectPoints along one dimension for tree construction.
type objectPlane struct {
	objectPoints
	kdtree.Dim
}

func (p objectPlane) Less(i, j int) bool {
	return p.objectPoints[i].pos[p.Dim] < p.objectPoints[j].pos[p.Dim]
}
func (p objectPlane) Pivot() int {
	return kdtree.Partition(p, kdtree.MedianOfMedians(p))
}
func (p objectPlane) Slice(start, end int) kdtree.SortSlicer {
	p.objectPoints = p.objectPoints[start:end]
	return p
}
func (p objectPlane) Swap(i, j int) {
	p.objectPoints[i], p.objectPoints[j] = p.objectPoints[j], p.objectPoints[i]
}

// pairsWithin enumerates all unordered index pairs closer than thresholdKm,
// using a k-d tree range query per point. Each pair is reported once.
func pairsWithin(points objectPoints, thresholdKm float64) [][2]int {
	tree := kdtree.New(points, false)

	var pairs [][2]int
	for _, p := range points {
		keep := kdtree.NewDistKeeper(thresholdKm * thresholdKm)
		tree.NearestSet(keep, p)

		for _, cd := range keep.Heap {
			if cd.Comparable == nil {
				continue
			}
			q := cd.Comparable.(objectPoint)
			if q.idx <= p.idx {
				continue
			}
			pairs = append(pairs, [2]int{p.idx, q.idx})
		}
	}
	return pairs
}
