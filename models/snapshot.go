package models

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
)

// TreeModel represents a serializeable format of a fitted regression tree
type TreeModel struct {
	MaxDepth    int    `json:"max_depth"`
	NumFeatures int    `json:"num_features"`
	Nodes       []Node `json:"nodes"`
}

// MemberModel represents a serializeable format of a forest member
type MemberModel struct {
	Features []int     `json:"features"`
	Tree     TreeModel `json:"tree"`
}

// ForestModel represents a serializeable format of a fitted forest storing the forest options
// and every member
type ForestModel struct {
	Options         *ForestOptions `json:"options"`
	NumFeatures     int            `json:"num_features"`
	FeaturesPerTree int            `json:"features_per_tree"`
	Members         []MemberModel  `json:"members"`
}

// Model returns a snapshot of the fitted tree.
func (t *RegressionTree) Model() (TreeModel, error) {
	if !t.Fitted() {
		return TreeModel{}, ErrNotFitted
	}
	return TreeModel{
		MaxDepth:    t.opt.MaxDepth,
		NumFeatures: t.nFeatures,
		Nodes:       t.Nodes(),
	}, nil
}

// NewRegressionTreeFromModel creates a fitted tree from a snapshot. The tree can be used for
// inference immediately and predicts exactly as the tree the snapshot was taken from.
func NewRegressionTreeFromModel(model TreeModel) (*RegressionTree, error) {
	if err := model.validate(); err != nil {
		return nil, err
	}
	nodes := make([]Node, len(model.Nodes))
	copy(nodes, model.Nodes)
	return &RegressionTree{
		opt:       &TreeOptions{MaxDepth: model.MaxDepth},
		nodes:     nodes,
		nFeatures: model.NumFeatures,
	}, nil
}

// validate checks that the nodes form a single tree rooted at index 0 where every node other
// than the root has exactly one parent that precedes it.
func (m TreeModel) validate() error {
	if m.MaxDepth < 0 {
		return fmt.Errorf("max depth %d, %w", m.MaxDepth, ErrInvalidModel)
	}
	if m.NumFeatures <= 0 {
		return fmt.Errorf("%d features, %w", m.NumFeatures, ErrInvalidModel)
	}
	if len(m.Nodes) == 0 {
		return fmt.Errorf("no nodes, %w", ErrInvalidModel)
	}

	parents := make([]int, len(m.Nodes))
	for i, n := range m.Nodes {
		if n.Leaf {
			continue
		}
		if n.Feature < 0 || n.Feature >= m.NumFeatures {
			return fmt.Errorf("node %d splits on feature %d of %d, %w", i, n.Feature, m.NumFeatures, ErrInvalidModel)
		}
		for _, c := range []int{n.Left, n.Right} {
			if c <= i || c >= len(m.Nodes) {
				return fmt.Errorf("node %d has child %d, %w", i, c, ErrInvalidModel)
			}
			parents[c]++
		}
		if n.Left == n.Right {
			return fmt.Errorf("node %d has the same left and right child, %w", i, ErrInvalidModel)
		}
	}
	for i := 1; i < len(parents); i++ {
		if parents[i] != 1 {
			return fmt.Errorf("node %d has %d parents, %w", i, parents[i], ErrInvalidModel)
		}
	}
	return nil
}

// Model returns a snapshot of the fitted forest.
func (f *Forest) Model() (ForestModel, error) {
	if !f.Fitted() {
		return ForestModel{}, ErrNotFitted
	}
	opt := *f.opt
	members := make([]MemberModel, 0, len(f.members))
	for _, m := range f.members {
		tm, err := m.Tree.Model()
		if err != nil {
			return ForestModel{}, err
		}
		features := make([]int, len(m.Features))
		copy(features, m.Features)
		members = append(members, MemberModel{Features: features, Tree: tm})
	}
	return ForestModel{
		Options:         &opt,
		NumFeatures:     f.nFeatures,
		FeaturesPerTree: f.featuresPerTree,
		Members:         members,
	}, nil
}

// NewForestFromModel creates a fitted forest from a snapshot. The forest can be used for
// inference immediately and does not need to be trained again.
func NewForestFromModel(model ForestModel) (*Forest, error) {
	var opt *ForestOptions
	if model.Options != nil {
		o := *model.Options
		opt = &o
	}
	opt, err := opt.Validate()
	if err != nil {
		return nil, fmt.Errorf("unable to load forest options, %w", err)
	}
	if len(model.Members) == 0 {
		return nil, fmt.Errorf("no members, %w", ErrInvalidModel)
	}
	if model.FeaturesPerTree <= 0 || model.FeaturesPerTree > model.NumFeatures {
		return nil, fmt.Errorf("%d features per tree of %d features, %w", model.FeaturesPerTree, model.NumFeatures, ErrInvalidModel)
	}

	members := make([]TreeMember, 0, len(model.Members))
	for i, mm := range model.Members {
		if len(mm.Features) != model.FeaturesPerTree {
			return nil, fmt.Errorf("member %d has %d features but expected %d, %w", i, len(mm.Features), model.FeaturesPerTree, ErrInvalidModel)
		}
		for _, feat := range mm.Features {
			if feat < 0 || feat >= model.NumFeatures {
				return nil, fmt.Errorf("member %d uses feature %d of %d, %w", i, feat, model.NumFeatures, ErrInvalidModel)
			}
		}
		if mm.Tree.NumFeatures != model.FeaturesPerTree {
			return nil, fmt.Errorf("member %d tree has %d features but expected %d, %w", i, mm.Tree.NumFeatures, model.FeaturesPerTree, ErrInvalidModel)
		}
		tree, err := NewRegressionTreeFromModel(mm.Tree)
		if err != nil {
			return nil, fmt.Errorf("unable to load member %d, %w", i, err)
		}
		features := make([]int, len(mm.Features))
		copy(features, mm.Features)
		members = append(members, TreeMember{Tree: tree, Features: features})
	}

	return &Forest{
		opt:             opt,
		members:         members,
		nFeatures:       model.NumFeatures,
		featuresPerTree: model.FeaturesPerTree,
	}, nil
}

// TablePrint writes a summary of the forest configuration and every member to w.
func (m ForestModel) TablePrint(w io.Writer, prefix, indent string) error {
	if _, err := fmt.Fprintf(w, "%sForest:\n", prefix); err != nil {
		return err
	}
	if m.Options != nil {
		if _, err := fmt.Fprintf(w, "%s%sTrees: %d    Max Depth: %d    Seed: %d\n",
			prefix, indentExpand(indent, 1),
			m.Options.NumTrees, m.Options.MaxDepth, m.Options.Seed); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(w, "%s%sFeatures: %d    Features Per Tree: %d\n",
		prefix, indentExpand(indent, 1), m.NumFeatures, m.FeaturesPerTree); err != nil {
		return err
	}

	if _, err := fmt.Fprintf(w, "%s%sMembers:\n", prefix, indentExpand(indent, 1)); err != nil {
		return err
	}
	tbl := tabwriter.NewWriter(w, 0, 0, 1, ' ', tabwriter.AlignRight)
	if _, err := fmt.Fprintf(tbl, "%s%sTree\tFeatures\tNodes\tLeaves\tDepth\t\n", prefix, indentExpand(indent, 2)); err != nil {
		return err
	}
	for i, mm := range m.Members {
		tree, err := NewRegressionTreeFromModel(mm.Tree)
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(tbl, "%s%s%d\t%v\t%d\t%d\t%d\t\n",
			prefix, indentExpand(indent, 2),
			i, mm.Features, len(mm.Tree.Nodes), tree.NumLeaves(), tree.Depth()); err != nil {
			return err
		}
	}
	return tbl.Flush()
}

func indentExpand(indent string, growth int) string {
	return strings.Repeat(indent, growth)
}
