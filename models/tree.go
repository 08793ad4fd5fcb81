package models

import (
	"errors"
	"fmt"

	mat_ "github.com/aouyang1/go-stockforest/mat"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

const DefaultTreeMaxDepth = 5

var ErrNegativeMaxDepth = errors.New("negative max depth")

// TreeOptions represents input options to grow a regression tree
type TreeOptions struct {
	// MaxDepth is the deepest level a split may be made at. A depth of 0 produces a single leaf
	// predicting the target mean.
	MaxDepth int `json:"max_depth" yaml:"max_depth"`
}

// Validate runs basic validation on tree options
func (o *TreeOptions) Validate() (*TreeOptions, error) {
	if o == nil {
		o = NewDefaultTreeOptions()
	}
	if o.MaxDepth < 0 {
		return nil, ErrNegativeMaxDepth
	}
	return o, nil
}

// NewDefaultTreeOptions returns a default set of tree options
func NewDefaultTreeOptions() *TreeOptions {
	return &TreeOptions{
		MaxDepth: DefaultTreeMaxDepth,
	}
}

// Node is a single node of a regression tree. Nodes live in a flat slice owned by the tree and
// reference their children by index, children always following their parent. A leaf only
// carries Value while a split carries Feature, Threshold, Left and Right.
type Node struct {
	Leaf      bool    `json:"leaf"`
	Value     float64 `json:"value"`
	Feature   int     `json:"feature,omitempty"`
	Threshold float64 `json:"threshold"`
	Left      int     `json:"left,omitempty"`
	Right     int     `json:"right,omitempty"`

	// Samples is the number of training rows that reached the node and Impurity is the
	// population variance of their targets.
	Samples  int     `json:"samples"`
	Impurity float64 `json:"impurity"`
}

// RegressionTree is a binary decision tree grown greedily by variance reduction. Rows with a
// feature value at or below a split's threshold descend left, all others descend right.
type RegressionTree struct {
	opt *TreeOptions

	nodes     []Node
	nFeatures int
}

// NewRegressionTree initializes an unfitted tree. If no options are provided the defaults are
// used.
func NewRegressionTree(opt *TreeOptions) (*RegressionTree, error) {
	opt, err := opt.Validate()
	if err != nil {
		return nil, err
	}
	return &RegressionTree{opt: opt}, nil
}

// Fit grows the tree from the m x n training matrix x and m x 1 target y, replacing any
// previously fit tree. On error the tree is left unfitted.
func (t *RegressionTree) Fit(x, y mat.Matrix) error {
	t.nodes = nil
	t.nFeatures = 0

	m, n, yArr, err := fitValidate(x, y)
	if err != nil {
		return err
	}

	rows := make([]int, m)
	for i := range rows {
		rows[i] = i
	}

	b := &treeBuilder{
		cols:     mat_.Columns(x),
		y:        yArr,
		maxDepth: t.opt.MaxDepth,
	}
	b.build(rows, 0)

	t.nodes = b.nodes
	t.nFeatures = n
	return nil
}

type treeBuilder struct {
	cols     [][]float64
	y        []float64
	maxDepth int
	nodes    []Node
}

// build appends the subtree for rows at the given depth and returns the index of its root.
func (b *treeBuilder) build(rows []int, depth int) int {
	ys := make([]float64, len(rows))
	for i, r := range rows {
		ys[i] = b.y[r]
	}
	mean, variance := stat.PopMeanVariance(ys, nil)

	idx := len(b.nodes)
	b.nodes = append(b.nodes, Node{Samples: len(rows), Impurity: variance})

	if constant(ys) {
		b.nodes[idx].Leaf = true
		b.nodes[idx].Value = ys[0]
		b.nodes[idx].Impurity = 0
		return idx
	}
	if depth >= b.maxDepth || len(rows) < 2 {
		b.nodes[idx].Leaf = true
		b.nodes[idx].Value = mean
		return idx
	}

	s, ok := bestSplit(b.cols, b.y, rows)
	if !ok {
		b.nodes[idx].Leaf = true
		b.nodes[idx].Value = mean
		return idx
	}

	left, right := partition(b.cols[s.feature], rows, s.threshold)
	l := b.build(left, depth+1)
	r := b.build(right, depth+1)

	b.nodes[idx].Feature = s.feature
	b.nodes[idx].Threshold = s.threshold
	b.nodes[idx].Left = l
	b.nodes[idx].Right = r
	return idx
}

func constant(ys []float64) bool {
	for _, v := range ys[1:] {
		if v != ys[0] {
			return false
		}
	}
	return true
}

// Predict returns one prediction per row of x in row order.
func (t *RegressionTree) Predict(x mat.Matrix) ([]float64, error) {
	if !t.Fitted() {
		return nil, ErrNotFitted
	}
	m, err := predictValidate(x, t.nFeatures)
	if err != nil {
		return nil, err
	}

	res := make([]float64, m)
	row := make([]float64, t.nFeatures)
	for i := 0; i < m; i++ {
		mat.Row(row, i, x)
		res[i] = t.predictRow(row)
	}
	return res, nil
}

// PredictRow returns the prediction for a single feature row.
func (t *RegressionTree) PredictRow(row []float64) (float64, error) {
	if !t.Fitted() {
		return 0, ErrNotFitted
	}
	if len(row) != t.nFeatures {
		return 0, fmt.Errorf("got %d features in row, but expected %d, %w", len(row), t.nFeatures, ErrFeatureLenMismatch)
	}
	return t.predictRow(row), nil
}

func (t *RegressionTree) predictRow(row []float64) float64 {
	n := &t.nodes[0]
	for !n.Leaf {
		if row[n.Feature] <= n.Threshold {
			n = &t.nodes[n.Left]
		} else {
			n = &t.nodes[n.Right]
		}
	}
	return n.Value
}

// Score computes the coefficient of determination of the prediction
func (t *RegressionTree) Score(x, y mat.Matrix) (float64, error) {
	actual, err := scoreValidate(x, y)
	if err != nil {
		return 0.0, err
	}
	res, err := t.Predict(x)
	if err != nil {
		return 0.0, err
	}
	return rSquared(res, actual), nil
}

// Fitted reports whether the tree has been trained.
func (t *RegressionTree) Fitted() bool {
	return t != nil && len(t.nodes) > 0
}

// NumFeatures returns the number of features the tree was trained on.
func (t *RegressionTree) NumFeatures() int {
	return t.nFeatures
}

// MaxDepth returns the configured maximum depth.
func (t *RegressionTree) MaxDepth() int {
	return t.opt.MaxDepth
}

// Nodes returns a copy of the tree's nodes with the root first.
func (t *RegressionTree) Nodes() []Node {
	nodes := make([]Node, len(t.nodes))
	copy(nodes, t.nodes)
	return nodes
}

// Depth returns the length of the longest root to leaf path. A lone leaf has depth 0.
func (t *RegressionTree) Depth() int {
	if !t.Fitted() {
		return 0
	}
	depths := make([]int, len(t.nodes))
	var maxDepth int
	for i, n := range t.nodes {
		if depths[i] > maxDepth {
			maxDepth = depths[i]
		}
		if !n.Leaf {
			depths[n.Left] = depths[i] + 1
			depths[n.Right] = depths[i] + 1
		}
	}
	return maxDepth
}

// NumLeaves returns the number of leaves in the tree.
func (t *RegressionTree) NumLeaves() int {
	var leaves int
	for _, n := range t.nodes {
		if n.Leaf {
			leaves++
		}
	}
	return leaves
}

// FeatureImportances returns the total weighted impurity decrease of the splits on each
// feature, normalized to sum to 1. A tree without splits returns all zeros.
func (t *RegressionTree) FeatureImportances() []float64 {
	imp := make([]float64, t.nFeatures)
	t.addImportances(imp, nil)
	normalize(imp)
	return imp
}

// addImportances accumulates the unnormalized impurity decreases into imp, translating the
// tree's feature indices through features when provided.
func (t *RegressionTree) addImportances(imp []float64, features []int) {
	for _, n := range t.nodes {
		if n.Leaf {
			continue
		}
		l, r := t.nodes[n.Left], t.nodes[n.Right]
		dec := float64(n.Samples)*n.Impurity - float64(l.Samples)*l.Impurity - float64(r.Samples)*r.Impurity
		f := n.Feature
		if features != nil {
			f = features[f]
		}
		imp[f] += dec
	}
}

func normalize(x []float64) {
	var total float64
	for _, v := range x {
		total += v
	}
	if total <= 0 {
		for i := range x {
			x[i] = 0
		}
		return
	}
	for i := range x {
		x[i] /= total
	}
}
