package classify

import (
	"math"
	"math/rand"
	"sort"
)

// Hyperparams holds the capacity parameters of the random forest. They are
// derived deterministically from the dataset size by ScaleHyperparams.
type Hyperparams struct {
	TreeCount int `json:"tree_count"`
	MaxDepth  int `json:"max_depth"`
	MinSplit  int `json:"min_split"`
	MinLeaf   int `json:"min_leaf"`
}

// ScaleHyperparams derives forest capacity from the dataset size. Tiny
// datasets get small, shallow forests; capacity grows with the sample count
// up to fixed ceilings.
func ScaleHyperparams(total int) Hyperparams {
	return Hyperparams{
		TreeCount: clamp(total*2, 10, 100),
		MaxDepth:  clamp(total/5, 3, 10),
		MinSplit:  clamp(total/10, 2, 5),
		MinLeaf:   1,
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Node is one decision node of a CART tree. Leaves carry a class probability
// distribution; internal nodes route on a feature threshold. Fields are
// exported for gob serialization.
type Node struct {
	Feature   int
	Threshold float64
	Left      *Node
	Right     *Node
	Probs     []float64 // non-nil iff leaf
}

// Forest is a random forest classifier over fixed-length feature vectors.
type Forest struct {
	Trees      []*Node
	NumClasses int
}

// forestBuilder carries the shared training state for one forest.
type forestBuilder struct {
	x       [][]float64
	y       []int
	weights []float64 // per-class weights
	hp      Hyperparams
	mtry    int
	rng     *rand.Rand
	classes int
}

// TrainForest fits a random forest on the given samples. weights holds one
// weight per class (balanced weighting counters label imbalance). All
// randomness (bootstrap resampling, feature subsampling) is drawn from rng,
// so a fixed seed makes training fully reproducible.
func TrainForest(x [][]float64, y []int, numClasses int, hp Hyperparams, weights []float64, rng *rand.Rand) *Forest {
	b := &forestBuilder{
		x:       x,
		y:       y,
		weights: weights,
		hp:      hp,
		mtry:    int(math.Sqrt(float64(len(x[0])))),
		rng:     rng,
		classes: numClasses,
	}
	if b.mtry < 1 {
		b.mtry = 1
	}

	forest := &Forest{
		Trees:      make([]*Node, 0, hp.TreeCount),
		NumClasses: numClasses,
	}

	for t := 0; t < hp.TreeCount; t++ {
		// Bootstrap sample with replacement
		indices := make([]int, len(x))
		for i := range indices {
			indices[i] = rng.Intn(len(x))
		}
		forest.Trees = append(forest.Trees, b.buildNode(indices, 0))
	}

	return forest
}

func (b *forestBuilder) buildNode(indices []int, depth int) *Node {
	counts := b.weightedCounts(indices)

	if depth >= b.hp.MaxDepth || len(indices) < b.hp.MinSplit || isPure(counts) {
		return b.leaf(counts)
	}

	feature, threshold, ok := b.bestSplit(indices, counts)
	if !ok {
		return b.leaf(counts)
	}

	var left, right []int
	for _, i := range indices {
		if b.x[i][feature] <= threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}

	return &Node{
		Feature:   feature,
		Threshold: threshold,
		Left:      b.buildNode(left, depth+1),
		Right:     b.buildNode(right, depth+1),
	}
}

// bestSplit searches a random feature subset for the threshold with the
// lowest weighted gini impurity. Splits leaving fewer than MinLeaf samples
// on either side are skipped.
func (b *forestBuilder) bestSplit(indices []int, parentCounts []float64) (int, float64, bool) {
	candidates := b.rng.Perm(len(b.x[0]))[:b.mtry]
	sort.Ints(candidates)

	bestGini := math.Inf(1)
	var bestFeature int
	var bestThreshold float64
	found := false

	sorted := make([]int, len(indices))
	for _, f := range candidates {
		copy(sorted, indices)
		sort.Slice(sorted, func(i, j int) bool {
			return b.x[sorted[i]][f] < b.x[sorted[j]][f]
		})

		leftCounts := make([]float64, b.classes)
		rightCounts := append([]float64(nil), parentCounts...)

		for i := 0; i < len(sorted)-1; i++ {
			idx := sorted[i]
			w := b.weights[b.y[idx]]
			leftCounts[b.y[idx]] += w
			rightCounts[b.y[idx]] -= w

			// Only split between distinct feature values
			if b.x[idx][f] == b.x[sorted[i+1]][f] {
				continue
			}
			if i+1 < b.hp.MinLeaf || len(sorted)-i-1 < b.hp.MinLeaf {
				continue
			}

			gini := weightedGini(leftCounts, rightCounts)
			if gini < bestGini {
				bestGini = gini
				bestFeature = f
				bestThreshold = (b.x[idx][f] + b.x[sorted[i+1]][f]) / 2
				found = true
			}
		}
	}

	return bestFeature, bestThreshold, found
}

func (b *forestBuilder) weightedCounts(indices []int) []float64 {
	counts := make([]float64, b.classes)
	for _, i := range indices {
		counts[b.y[i]] += b.weights[b.y[i]]
	}
	return counts
}

func (b *forestBuilder) leaf(counts []float64) *Node {
	probs := make([]float64, len(counts))
	var total float64
	for _, c := range counts {
		total += c
	}
	if total == 0 {
		for i := range probs {
			probs[i] = 1 / float64(len(probs))
		}
	} else {
		for i, c := range counts {
			probs[i] = c / total
		}
	}
	return &Node{Probs: probs}
}

func isPure(counts []float64) bool {
	nonzero := 0
	for _, c := range counts {
		if c > 0 {
			nonzero++
		}
	}
	return nonzero <= 1
}

// weightedGini is the impurity of a candidate split: the size-weighted sum
// of the gini impurities of both sides.
func weightedGini(left, right []float64) float64 {
	lTotal := sum(left)
	rTotal := sum(right)
	total := lTotal + rTotal
	if total == 0 {
		return 0
	}
	return lTotal/total*gini(left, lTotal) + rTotal/total*gini(right, rTotal)
}

func gini(counts []float64, total float64) float64 {
	if total == 0 {
		return 0
	}
	g := 1.0
	for _, c := range counts {
		p := c / total
		g -= p * p
	}
	return g
}

func sum(vs []float64) float64 {
	var s float64
	for _, v := range vs {
		s += v
	}
	return s
}

// Proba returns the per-class probability distribution for a feature vector,
// averaged over all trees. The result sums to 1 within float tolerance.
func (f *Forest) Proba(vec []float64) []float64 {
	probs := make([]float64, f.NumClasses)
	for _, root := range f.Trees {
		node := root
		for node.Probs == nil {
			if vec[node.Feature] <= node.Threshold {
				node = node.Left
			} else {
				node = node.Right
			}
		}
		for i, p := range node.Probs {
			probs[i] += p
		}
	}
	n := float64(len(f.Trees))
	for i := range probs {
		probs[i] /= n
	}
	return probs
}

// Predict returns the class index with the highest probability.
func (f *Forest) Predict(vec []float64) int {
	probs := f.Proba(vec)
	best := 0
	for i, p := range probs {
		if p > probs[best] {
			best = i
		}
	}
	return best
}
