package models

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"

	mat_ "github.com/aouyang1/go-stockforest/mat"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

const (
	DefaultNumTrees        = 100
	DefaultForestMaxDepth  = 10
	DefaultParallelization = 1
)

var (
	ErrNonPositiveNumTrees     = errors.New("number of trees must be positive")
	ErrNegativeParallelization = errors.New("negative parallelization")
	ErrOOBTrainingRowsMismatch = fmt.Errorf("training rows do not match the bootstrap size, %w", ErrInvalidInput)
)

// ForestOptions represents input options to grow a random forest
type ForestOptions struct {
	// NumTrees is the number of trees in the ensemble
	NumTrees int `json:"num_trees" yaml:"num_trees"`

	// MaxDepth is passed to every tree in the ensemble
	MaxDepth int `json:"max_depth" yaml:"max_depth"`

	// Seed is the base seed used by Fit. Each tree draws from its own stream derived from the
	// seed and its index.
	Seed uint64 `json:"seed" yaml:"seed"`

	// Parallelization sets how many trees are grown concurrently. 0 grows every tree at once.
	// The fitted forest does not depend on this setting.
	Parallelization int `json:"parallelization" yaml:"parallelization"`
}

// Validate runs basic validation on forest options and returns a copy with the
// parallelization clamped to the number of trees.
func (o *ForestOptions) Validate() (*ForestOptions, error) {
	if o == nil {
		o = NewDefaultForestOptions()
	}
	res := *o
	if res.NumTrees <= 0 {
		return nil, ErrNonPositiveNumTrees
	}
	if res.MaxDepth < 0 {
		return nil, ErrNegativeMaxDepth
	}
	if res.Parallelization < 0 {
		return nil, ErrNegativeParallelization
	}
	if res.Parallelization == 0 || res.Parallelization > res.NumTrees {
		res.Parallelization = res.NumTrees
	}
	return &res, nil
}

// NewDefaultForestOptions returns a default set of forest options
func NewDefaultForestOptions() *ForestOptions {
	return &ForestOptions{
		NumTrees:        DefaultNumTrees,
		MaxDepth:        DefaultForestMaxDepth,
		Parallelization: DefaultParallelization,
	}
}

// TreeMember is one tree of a forest along with the original column indices it was trained on
// in ascending order. Samples holds the bootstrap row indices used to train the tree and is
// only populated for members fit in this process.
type TreeMember struct {
	Tree     *RegressionTree
	Features []int
	Samples  []int
}

// Forest is a bootstrap aggregated ensemble of regression trees. Each tree sees a bootstrap
// resample of the rows projected onto a random subset of the columns and the forest predicts
// the mean of its trees.
type Forest struct {
	opt *ForestOptions

	members         []TreeMember
	nFeatures       int
	featuresPerTree int
}

// NewForest initializes an unfitted forest. If no options are provided the defaults are used.
func NewForest(opt *ForestOptions) (*Forest, error) {
	opt, err := opt.Validate()
	if err != nil {
		return nil, err
	}
	return &Forest{opt: opt}, nil
}

// Fit grows the forest using the seed from the options.
func (f *Forest) Fit(x, y mat.Matrix) error {
	var seed uint64
	if f.opt != nil {
		seed = f.opt.Seed
	}
	return f.FitWithSeed(x, y, seed)
}

// FitWithSeed grows every member of the forest from the m x n training matrix x and m x 1
// target y. The same inputs and seed always produce the same forest. Any previous fit is
// replaced, and on error the forest is left unfitted.
func (f *Forest) FitWithSeed(x, y mat.Matrix, seed uint64) error {
	f.reset()

	opt, err := f.opt.Validate()
	if err != nil {
		return fmt.Errorf("unable to validate forest options, %w", err)
	}
	f.opt = opt

	m, n, _, err := fitValidate(x, y)
	if err != nil {
		return err
	}
	xd := mat.DenseCopyOf(x)
	yd := mat.DenseCopyOf(y)
	k := FeaturesPerTree(n)

	members := make([]TreeMember, opt.NumTrees)
	errs := make([]error, opt.NumTrees)

	sem := make(chan struct{}, opt.Parallelization)
	var wg sync.WaitGroup
	for i := range members {
		sem <- struct{}{}
		wg.Add(1)

		go func(i int) {
			defer func() {
				<-sem
				wg.Done()
			}()
			members[i], errs[i] = f.fitMember(i, xd, yd, m, n, k, seed)
		}(i)
	}
	wg.Wait()

	if err := errors.Join(errs...); err != nil {
		return err
	}

	f.members = members
	f.nFeatures = n
	f.featuresPerTree = k
	slog.Info("fit random forest", "trees", len(members), "rows", m, "features", n, "features_per_tree", k, "seed", seed)
	return nil
}

func (f *Forest) fitMember(i int, x, y *mat.Dense, m, n, k int, seed uint64) (TreeMember, error) {
	r := memberRand(seed, i)
	rows := bootstrap(r, m)
	features := featureSubset(r, n, k)

	xs, err := mat_.Project(x, rows, features)
	if err != nil {
		return TreeMember{}, fmt.Errorf("unable to project training data for tree %d, %w", i, err)
	}
	ys, err := mat_.Project(y, rows, []int{0})
	if err != nil {
		return TreeMember{}, fmt.Errorf("unable to project target for tree %d, %w", i, err)
	}

	tree, err := NewRegressionTree(&TreeOptions{MaxDepth: f.opt.MaxDepth})
	if err != nil {
		return TreeMember{}, err
	}
	if err := tree.Fit(xs, ys); err != nil {
		return TreeMember{}, fmt.Errorf("unable to fit tree %d, %w", i, err)
	}
	slog.Debug("fit forest member", "tree", i, "depth", tree.Depth(), "leaves", tree.NumLeaves(), "features", features)

	return TreeMember{Tree: tree, Features: features, Samples: rows}, nil
}

func (f *Forest) reset() {
	f.members = nil
	f.nFeatures = 0
	f.featuresPerTree = 0
}

// Predict returns the mean prediction of the trees for each row of x in row order.
func (f *Forest) Predict(x mat.Matrix) ([]float64, error) {
	preds, err := f.memberPredictions(x)
	if err != nil {
		return nil, err
	}
	res := make([]float64, len(preds))
	for i, p := range preds {
		res[i] = mean(p)
	}
	return res, nil
}

// PredictSpread returns the mean prediction for each row of x along with the population
// standard deviation of the individual tree predictions around it.
func (f *Forest) PredictSpread(x mat.Matrix) ([]float64, []float64, error) {
	preds, err := f.memberPredictions(x)
	if err != nil {
		return nil, nil, err
	}
	means := make([]float64, len(preds))
	stds := make([]float64, len(preds))
	for i, p := range preds {
		means[i] = mean(p)
		stds[i] = stat.PopStdDev(p, nil)
	}
	return means, stds, nil
}

// memberPredictions returns the prediction of every member for every row, indexed by row then
// member.
func (f *Forest) memberPredictions(x mat.Matrix) ([][]float64, error) {
	if !f.Fitted() {
		return nil, ErrNotFitted
	}
	m, err := predictValidate(x, f.nFeatures)
	if err != nil {
		return nil, err
	}

	row := make([]float64, f.nFeatures)
	proj := make([]float64, f.featuresPerTree)
	preds := make([][]float64, m)
	for i := 0; i < m; i++ {
		mat.Row(row, i, x)
		preds[i] = make([]float64, len(f.members))
		for j, member := range f.members {
			for k, feat := range member.Features {
				proj[k] = row[feat]
			}
			preds[i][j] = member.Tree.predictRow(proj)
		}
	}
	return preds, nil
}

func mean(x []float64) float64 {
	var sum float64
	for _, v := range x {
		sum += v
	}
	return sum / float64(len(x))
}

// Score computes the coefficient of determination of the prediction
func (f *Forest) Score(x, y mat.Matrix) (float64, error) {
	actual, err := scoreValidate(x, y)
	if err != nil {
		return 0.0, err
	}
	res, err := f.Predict(x)
	if err != nil {
		return 0.0, err
	}
	return rSquared(res, actual), nil
}

// OOBPredictions predicts every training row using only the members whose bootstrap sample
// did not contain it. x must be the training matrix the forest was fit on. The returned slice
// has NaN for rows that every member trained on.
func (f *Forest) OOBPredictions(x mat.Matrix) ([]float64, error) {
	if !f.Fitted() {
		return nil, ErrNotFitted
	}
	m, err := predictValidate(x, f.nFeatures)
	if err != nil {
		return nil, err
	}

	inBag := make([][]bool, len(f.members))
	for j, member := range f.members {
		if member.Samples == nil {
			return nil, fmt.Errorf("tree %d has no bootstrap record, %w", j, ErrNoOOBSamples)
		}
		if len(member.Samples) != m {
			return nil, fmt.Errorf("tree %d was trained on %d rows but got %d, %w", j, len(member.Samples), m, ErrOOBTrainingRowsMismatch)
		}
		inBag[j] = make([]bool, m)
		for _, r := range member.Samples {
			inBag[j][r] = true
		}
	}

	row := make([]float64, f.nFeatures)
	proj := make([]float64, f.featuresPerTree)
	res := make([]float64, m)
	for i := 0; i < m; i++ {
		mat.Row(row, i, x)
		var sum float64
		var count int
		for j, member := range f.members {
			if inBag[j][i] {
				continue
			}
			for k, feat := range member.Features {
				proj[k] = row[feat]
			}
			sum += member.Tree.predictRow(proj)
			count++
		}
		if count == 0 {
			res[i] = math.NaN()
			continue
		}
		res[i] = sum / float64(count)
	}
	return res, nil
}

// OOBScore computes the coefficient of determination of the out of bag predictions over the
// rows that at least one member left out of its bootstrap.
func (f *Forest) OOBScore(x, y mat.Matrix) (float64, error) {
	actual, err := scoreValidate(x, y)
	if err != nil {
		return 0.0, err
	}
	res, err := f.OOBPredictions(x)
	if err != nil {
		return 0.0, err
	}

	predicted := make([]float64, 0, len(res))
	values := make([]float64, 0, len(res))
	for i, p := range res {
		if math.IsNaN(p) {
			continue
		}
		predicted = append(predicted, p)
		values = append(values, actual[i])
	}
	if len(predicted) == 0 {
		return 0.0, ErrNoOOBSamples
	}
	return rSquared(predicted, values), nil
}

// Fitted reports whether the forest has been trained.
func (f *Forest) Fitted() bool {
	return f != nil && len(f.members) > 0
}

// Members returns a copy of the forest members. The trees themselves are shared and must not
// be refit.
func (f *Forest) Members() []TreeMember {
	members := make([]TreeMember, len(f.members))
	for i, m := range f.members {
		features := make([]int, len(m.Features))
		copy(features, m.Features)
		var samples []int
		if m.Samples != nil {
			samples = make([]int, len(m.Samples))
			copy(samples, m.Samples)
		}
		members[i] = TreeMember{Tree: m.Tree, Features: features, Samples: samples}
	}
	return members
}

// NumFeatures returns the number of features the forest was trained on.
func (f *Forest) NumFeatures() int {
	return f.nFeatures
}

// FeaturesPerTree returns the number of columns each member was trained on.
func (f *Forest) FeaturesPerTree() int {
	return f.featuresPerTree
}

// Options returns a copy of the forest options.
func (f *Forest) Options() ForestOptions {
	return *f.opt
}

// FeatureImportances returns the impurity decrease attributed to each original column summed
// over every member, normalized to sum to 1.
func (f *Forest) FeatureImportances() ([]float64, error) {
	if !f.Fitted() {
		return nil, ErrNotFitted
	}
	imp := make([]float64, f.nFeatures)
	for _, m := range f.members {
		m.Tree.addImportances(imp, m.Features)
	}
	normalize(imp)
	return imp, nil
}
