package feature

import (
	"fmt"
)

// Labels maps feature names to their column in a feature matrix.
type Labels struct {
	idx    map[string]int
	labels []string
}

func NewLabels(labels []string) *Labels {
	idx := make(map[string]int)
	for i := 0; i < len(labels); i++ {
		idx[labels[i]] = i
	}
	return &Labels{
		labels: labels,
		idx:    idx,
	}
}

func (l *Labels) Len() int {
	return len(l.labels)
}

func (l *Labels) Labels() []string {
	labels := make([]string, len(l.labels))
	copy(labels, l.labels)
	return labels
}

func (l *Labels) Index(label string) (int, bool) {
	if idx, exists := l.idx[label]; exists {
		return idx, exists
	}
	return -1, false
}

// Compatible returns an error unless other names the same columns in the same order.
func (l *Labels) Compatible(other []string) error {
	if len(other) != len(l.labels) {
		return fmt.Errorf("expected %d features but got %d, %w", len(l.labels), len(other), ErrIncompatibleLabels)
	}
	for i, label := range other {
		if label != l.labels[i] {
			return fmt.Errorf("expected feature %q at column %d but got %q, %w", l.labels[i], i, label, ErrIncompatibleLabels)
		}
	}
	return nil
}
