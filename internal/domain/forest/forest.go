// Package forest implements a random forest binary classifier: bagged CART
// trees with per-split feature subsampling and soft voting.
package forest

import (
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"
)

// Default hyperparameters.
const (
	DefaultTreeCount       = 100
	DefaultMaxDepth        = 5
	DefaultRandomState     = 1
	DefaultMinSamplesSplit = 2
)

// Params configures training. MaxDepth 0 grows trees until leaves are pure;
// MaxFeatures 0 samples floor(sqrt(p)) candidate features per split.
type Params struct {
	TreeCount       int
	MaxDepth        int
	RandomState     int64
	MinSamplesSplit int
	MaxFeatures     int
	Bootstrap       bool
}

// DefaultParams returns the hyperparameters the pipeline runs with.
func DefaultParams() Params {
	return Params{
		TreeCount:       DefaultTreeCount,
		MaxDepth:        DefaultMaxDepth,
		RandomState:     DefaultRandomState,
		MinSamplesSplit: DefaultMinSamplesSplit,
		Bootstrap:       true,
	}
}

// Validate checks the parameters.
func (p Params) Validate() error {
	switch {
	case p.TreeCount < 1:
		return fmt.Errorf("%w: tree count %d", ErrInvalidParams, p.TreeCount)
	case p.MaxDepth < 0:
		return fmt.Errorf("%w: max depth %d", ErrInvalidParams, p.MaxDepth)
	case p.MaxFeatures < 0:
		return fmt.Errorf("%w: max features %d", ErrInvalidParams, p.MaxFeatures)
	}
	return nil
}

// Info is the read-back of a trained forest.
type Info struct {
	TreeCount    int
	MaxDepth     int
	FeatureCount int
	RandomState  int64
}

// Forest is a trained random forest.
type Forest struct {
	params   Params
	features int
	trees    []*tree
}

// Train fits a forest on X (n x p) and binary labels y. Tree i draws its
// bootstrap sample and its split candidates from a source seeded with
// RandomState+i, so a fixed seed gives a fixed model.
func Train(X mat.Matrix, y []int, params Params) (*Forest, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	n, p := X.Dims()
	if n == 0 || p == 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrEmptyInput, n, p)
	}
	if len(y) != n {
		return nil, fmt.Errorf("%w: %d rows, %d labels", ErrShapeMismatch, n, len(y))
	}
	s := &samples{data: make([]float64, n*p), p: p, y: make([]int, n)}
	for i := 0; i < n; i++ {
		if y[i] != 0 && y[i] != 1 {
			return nil, fmt.Errorf("%w: row %d is %d", ErrInvalidLabel, i+1, y[i])
		}
		s.y[i] = y[i]
		for j := 0; j < p; j++ {
			v := X.At(i, j)
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, fmt.Errorf("%w: row %d column %d", ErrInvalidFeature, i+1, j+1)
			}
			s.data[i*p+j] = v
		}
	}

	maxFeatures := params.MaxFeatures
	if maxFeatures == 0 {
		maxFeatures = max(1, int(math.Sqrt(float64(p))))
	}
	minSplit := max(params.MinSamplesSplit, 2)

	f := &Forest{params: params, features: p, trees: make([]*tree, params.TreeCount)}
	for t := range f.trees {
		rnd := rand.New(rand.NewSource(params.RandomState + int64(t))) //nolint:gosec // reproducible model
		idx := make([]int, n)
		for i := range idx {
			if params.Bootstrap {
				idx[i] = rnd.Intn(n)
			} else {
				idx[i] = i
			}
		}
		tr := &tree{maxDepth: params.MaxDepth, minSamplesSplit: minSplit, maxFeatures: maxFeatures}
		tr.fit(s, idx, rnd)
		f.trees[t] = tr
	}
	return f, nil
}

// Info returns the hyperparameters and the fitted feature count.
func (f *Forest) Info() Info {
	return Info{
		TreeCount:    f.params.TreeCount,
		MaxDepth:     f.params.MaxDepth,
		FeatureCount: f.features,
		RandomState:  f.params.RandomState,
	}
}

// Params returns the parameters the forest was trained with.
func (f *Forest) Params() Params { return f.params }

// Depth returns the depth of the deepest tree.
func (f *Forest) Depth() int {
	d := 0
	for _, t := range f.trees {
		d = max(d, t.depth())
	}
	return d
}

// PredictProba returns P(y=1) for every row of X, averaged over the trees.
func (f *Forest) PredictProba(X mat.Matrix) ([]float64, error) {
	n, p := X.Dims()
	if p != f.features {
		return nil, fmt.Errorf("%w: model has %d features, input has %d", ErrShapeMismatch, f.features, p)
	}
	out := make([]float64, n)
	row := make([]float64, p)
	for i := 0; i < n; i++ {
		for j := 0; j < p; j++ {
			v := X.At(i, j)
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, fmt.Errorf("%w: row %d column %d", ErrInvalidFeature, i+1, j+1)
			}
			row[j] = v
		}
		sum := 0.0
		for _, t := range f.trees {
			sum += t.predictProba(row)
		}
		out[i] = sum / float64(len(f.trees))
	}
	return out, nil
}

// Predict returns the majority class for every row of X. Ties go to 0.
func (f *Forest) Predict(X mat.Matrix) ([]int, error) {
	proba, err := f.PredictProba(X)
	if err != nil {
		return nil, err
	}
	out := make([]int, len(proba))
	for i, p1 := range proba {
		if p1 > 1-p1 {
			out[i] = 1
		}
	}
	return out, nil
}
