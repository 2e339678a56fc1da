package forest

import (
	"math/rand"
	"sort"
)

// samples is a row-major copy of the training features.
type samples struct {
	data []float64
	p    int
	y    []int
}

func (s *samples) at(i, f int) float64 { return s.data[i*s.p+f] }

// node is a binary CART node. Leaves carry the class distribution of the
// training samples that reached them.
type node struct {
	leaf      bool
	feature   int
	threshold float64 // x <= threshold goes left
	left      *node
	right     *node
	n         int
	proba     float64 // P(y=1) at a leaf
}

type tree struct {
	maxDepth        int
	minSamplesSplit int
	maxFeatures     int
	root            *node
}

// fit grows the tree over the sample indices idx. Indices may repeat, which
// is how bootstrap samples are represented.
func (t *tree) fit(s *samples, idx []int, rnd *rand.Rand) {
	t.root = t.build(s, idx, 0, rnd)
}

func (t *tree) build(s *samples, idx []int, depth int, rnd *rand.Rand) *node {
	var counts [2]int
	for _, i := range idx {
		counts[s.y[i]]++
	}
	nd := &node{n: len(idx)}
	if counts[0] == 0 || counts[1] == 0 ||
		len(idx) < t.minSamplesSplit ||
		(t.maxDepth > 0 && depth >= t.maxDepth) {
		return leafNode(nd, counts)
	}

	feats := make([]int, s.p)
	for j := range feats {
		feats[j] = j
	}
	k := t.maxFeatures
	if k > 0 && k < s.p {
		for i := 0; i < k; i++ {
			j := i + rnd.Intn(s.p-i)
			feats[i], feats[j] = feats[j], feats[i]
		}
		feats = feats[:k]
	}

	parent := gini(counts[0], counts[1])
	best := split{feature: -1}
	for _, f := range feats {
		if c := bestSplit(s, idx, f, counts, parent); c.gain > best.gain {
			best = c
		}
	}
	if best.feature < 0 || best.gain <= 0 {
		return leafNode(nd, counts)
	}

	left := make([]int, 0, len(idx))
	right := make([]int, 0, len(idx))
	for _, i := range idx {
		if s.at(i, best.feature) <= best.threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}
	nd.feature = best.feature
	nd.threshold = best.threshold
	nd.left = t.build(s, left, depth+1, rnd)
	nd.right = t.build(s, right, depth+1, rnd)
	return nd
}

func (t *tree) predictProba(x []float64) float64 {
	nd := t.root
	for !nd.leaf {
		if x[nd.feature] <= nd.threshold {
			nd = nd.left
		} else {
			nd = nd.right
		}
	}
	return nd.proba
}

func (t *tree) depth() int { return depthOf(t.root) }

func depthOf(nd *node) int {
	if nd == nil || nd.leaf {
		return 0
	}
	return 1 + max(depthOf(nd.left), depthOf(nd.right))
}

func leafNode(nd *node, counts [2]int) *node {
	nd.leaf = true
	if total := counts[0] + counts[1]; total > 0 {
		nd.proba = float64(counts[1]) / float64(total)
	}
	return nd
}

type split struct {
	gain      float64
	feature   int
	threshold float64
}

// bestSplit scans the sorted values of feature f and returns the threshold
// with the largest gini decrease. Thresholds sit halfway between distinct
// neighbouring values.
func bestSplit(s *samples, idx []int, f int, total [2]int, parent float64) split {
	type pair struct {
		v float64
		y int
	}
	vals := make([]pair, len(idx))
	for k, i := range idx {
		vals[k] = pair{s.at(i, f), s.y[i]}
	}
	sort.SliceStable(vals, func(a, b int) bool { return vals[a].v < vals[b].v })

	res := split{feature: -1}
	n := float64(len(vals))
	var left [2]int
	for k := 1; k < len(vals); k++ {
		left[vals[k-1].y]++
		if vals[k].v == vals[k-1].v {
			continue
		}
		nl := float64(k)
		nr := n - nl
		right0, right1 := total[0]-left[0], total[1]-left[1]
		weighted := nl/n*gini(left[0], left[1]) + nr/n*gini(right0, right1)
		if gain := parent - weighted; gain > res.gain {
			res = split{gain: gain, feature: f, threshold: (vals[k-1].v + vals[k].v) / 2}
		}
	}
	return res
}

func gini(c0, c1 int) float64 {
	n := float64(c0 + c1)
	if n == 0 {
		return 0
	}
	p0, p1 := float64(c0)/n, float64(c1)/n
	return 1 - p0*p0 - p1*p1
}
