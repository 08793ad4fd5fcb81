package models

import (
	"bytes"
	"math"
	"testing"

	mat_ "github.com/aouyang1/go-stockforest/mat"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForestModelRoundTrip(t *testing.T) {
	x, y := generateData(120, 6, 31)
	f := newTestForest(t, &ForestOptions{NumTrees: 15, MaxDepth: 5, Seed: 77}, x, y)

	model, err := f.Model()
	require.Nil(t, err)

	data, err := json.Marshal(model)
	require.Nil(t, err)

	var loaded ForestModel
	require.Nil(t, json.Unmarshal(data, &loaded))
	assert.Equal(t, model, loaded)

	restored, err := NewForestFromModel(loaded)
	require.Nil(t, err)
	assert.True(t, restored.Fitted())
	assert.Equal(t, f.Options(), restored.Options())
	assert.Equal(t, f.NumFeatures(), restored.NumFeatures())
	assert.Equal(t, f.FeaturesPerTree(), restored.FeaturesPerTree())

	expected, err := f.Predict(x)
	require.Nil(t, err)
	res, err := restored.Predict(x)
	require.Nil(t, err)
	assert.Equal(t, expected, res)

	expImp, err := f.FeatureImportances()
	require.Nil(t, err)
	imp, err := restored.FeatureImportances()
	require.Nil(t, err)
	assert.Equal(t, expImp, imp)

	// restoring does not alias the snapshot
	loaded.Members[0].Tree.Nodes[0].Value = 1e9
	loaded.Members[0].Features[0] = 0
	res, err = restored.Predict(x)
	require.Nil(t, err)
	assert.Equal(t, expected, res)
}

func TestTreeModelRoundTrip(t *testing.T) {
	x := dense(t, [][]float64{{1}, {2}, {3}, {4}})
	y := mat_.NewColumn([]float64{1, 1, 5, 5})

	tree, err := NewRegressionTree(&TreeOptions{MaxDepth: 1})
	require.Nil(t, err)
	require.Nil(t, tree.Fit(x, y))

	model, err := tree.Model()
	require.Nil(t, err)

	data, err := json.Marshal(model)
	require.Nil(t, err)

	var loaded TreeModel
	require.Nil(t, json.Unmarshal(data, &loaded))

	restored, err := NewRegressionTreeFromModel(loaded)
	require.Nil(t, err)
	assert.Equal(t, tree.Nodes(), restored.Nodes())
	assert.Equal(t, 1, restored.MaxDepth())

	res, err := restored.Predict(dense(t, [][]float64{{1.5}, {3.5}}))
	require.Nil(t, err)
	assert.Equal(t, []float64{1, 5}, res)
}

func TestTreeModelRoundTripNegativeZero(t *testing.T) {
	negZero := math.Copysign(0, -1)
	x := dense(t, [][]float64{{1}, {2}, {3}})
	y := mat_.NewColumn([]float64{negZero, negZero, negZero})

	tree, err := NewRegressionTree(nil)
	require.Nil(t, err)
	require.Nil(t, tree.Fit(x, y))

	model, err := tree.Model()
	require.Nil(t, err)
	data, err := json.Marshal(model)
	require.Nil(t, err)

	var loaded TreeModel
	require.Nil(t, json.Unmarshal(data, &loaded))
	restored, err := NewRegressionTreeFromModel(loaded)
	require.Nil(t, err)

	res, err := restored.Predict(dense(t, [][]float64{{2}}))
	require.Nil(t, err)
	require.Len(t, res, 1)
	assert.True(t, math.Signbit(res[0]))
	assert.Equal(t, math.Float64bits(negZero), math.Float64bits(res[0]))
}

func TestNewRegressionTreeFromModelInvalid(t *testing.T) {
	leaf := Node{Leaf: true, Value: 1}
	testData := map[string]struct {
		model TreeModel
	}{
		"no nodes": {
			TreeModel{MaxDepth: 1, NumFeatures: 1},
		},
		"no features": {
			TreeModel{MaxDepth: 1, NumFeatures: 0, Nodes: []Node{leaf}},
		},
		"negative depth": {
			TreeModel{MaxDepth: -1, NumFeatures: 1, Nodes: []Node{leaf}},
		},
		"child out of range": {
			TreeModel{MaxDepth: 1, NumFeatures: 1, Nodes: []Node{{Left: 1, Right: 3}, leaf, leaf}},
		},
		"child before parent": {
			TreeModel{MaxDepth: 1, NumFeatures: 1, Nodes: []Node{{Left: 0, Right: 1}, leaf}},
		},
		"same children": {
			TreeModel{MaxDepth: 1, NumFeatures: 1, Nodes: []Node{{Left: 1, Right: 1}, leaf}},
		},
		"shared child": {
			TreeModel{MaxDepth: 2, NumFeatures: 1, Nodes: []Node{{Left: 1, Right: 2}, {Left: 2, Right: 3}, leaf, leaf}},
		},
		"orphan": {
			TreeModel{MaxDepth: 1, NumFeatures: 1, Nodes: []Node{{Left: 1, Right: 2}, leaf, leaf, leaf}},
		},
		"feature out of range": {
			TreeModel{MaxDepth: 1, NumFeatures: 2, Nodes: []Node{{Feature: 2, Left: 1, Right: 2}, leaf, leaf}},
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			_, err := NewRegressionTreeFromModel(td.model)
			assert.ErrorIs(t, err, ErrInvalidModel)
		})
	}
}

func TestNewForestFromModelInvalid(t *testing.T) {
	tree := TreeModel{MaxDepth: 1, NumFeatures: 1, Nodes: []Node{{Leaf: true, Value: 2}}}
	opt := &ForestOptions{NumTrees: 1, MaxDepth: 1, Parallelization: 1}

	testData := map[string]struct {
		model ForestModel
		err   error
	}{
		"bad options": {
			ForestModel{Options: &ForestOptions{NumTrees: 0}, NumFeatures: 2, FeaturesPerTree: 1, Members: []MemberModel{{Features: []int{0}, Tree: tree}}},
			ErrNonPositiveNumTrees,
		},
		"no members": {
			ForestModel{Options: opt, NumFeatures: 2, FeaturesPerTree: 1},
			ErrInvalidModel,
		},
		"features per tree": {
			ForestModel{Options: opt, NumFeatures: 2, FeaturesPerTree: 3, Members: []MemberModel{{Features: []int{0}, Tree: tree}}},
			ErrInvalidModel,
		},
		"member feature count": {
			ForestModel{Options: opt, NumFeatures: 2, FeaturesPerTree: 1, Members: []MemberModel{{Features: []int{0, 1}, Tree: tree}}},
			ErrInvalidModel,
		},
		"member feature range": {
			ForestModel{Options: opt, NumFeatures: 2, FeaturesPerTree: 1, Members: []MemberModel{{Features: []int{2}, Tree: tree}}},
			ErrInvalidModel,
		},
		"tree width": {
			ForestModel{Options: opt, NumFeatures: 4, FeaturesPerTree: 2, Members: []MemberModel{{Features: []int{0, 1}, Tree: tree}}},
			ErrInvalidModel,
		},
		"bad tree": {
			ForestModel{Options: opt, NumFeatures: 2, FeaturesPerTree: 1, Members: []MemberModel{{Features: []int{1}, Tree: TreeModel{NumFeatures: 1}}}},
			ErrInvalidModel,
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			_, err := NewForestFromModel(td.model)
			assert.ErrorIs(t, err, td.err)
		})
	}

	// options are copied, not validated in place
	model := ForestModel{Options: &ForestOptions{NumTrees: 2, MaxDepth: 1}, NumFeatures: 1, FeaturesPerTree: 1,
		Members: []MemberModel{{Features: []int{0}, Tree: tree}, {Features: []int{0}, Tree: tree}}}
	f, err := NewForestFromModel(model)
	require.Nil(t, err)
	assert.Equal(t, 0, model.Options.Parallelization)
	assert.Equal(t, 2, f.Options().Parallelization)

	res, err := f.Predict(dense(t, [][]float64{{5}}))
	require.Nil(t, err)
	assert.Equal(t, []float64{2}, res)
}

func TestForestModelTablePrint(t *testing.T) {
	x, y := generateData(40, 4, 6)
	f := newTestForest(t, &ForestOptions{NumTrees: 2, MaxDepth: 2, Seed: 3}, x, y)
	model, err := f.Model()
	require.Nil(t, err)

	var buf bytes.Buffer
	require.Nil(t, model.TablePrint(&buf, "", "  "))

	out := buf.String()
	assert.Contains(t, out, "Forest:\n")
	assert.Contains(t, out, "  Trees: 2    Max Depth: 2    Seed: 3\n")
	assert.Contains(t, out, "  Features: 4    Features Per Tree: 2\n")
	assert.Contains(t, out, "Members:\n")
	assert.Contains(t, out, "Leaves")
}
