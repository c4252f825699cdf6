package prepare

import (
	"errors"
	"math"
	"reflect"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/todmy/topic-groups/pkg/models"
)

func sampleModel() *models.TopicModel {
	return &models.TopicModel{
		Vocab: []string{"tax", "vote", "goal", "match"},
		DocumentTerm: [][]float64{
			{3, 1, 0, 0},
			{0, 0, 2, 2},
			{1, 2, 0, 0},
			{0, 0, 1, 4},
		},
		DocumentTopic: [][]float64{
			{0.9, 0.1},
			{0.2, 0.8},
			{0.7, 0.3},
			{0.1, 0.9},
		},
		TopicTerm: [][]float64{
			{0.6, 0.4, 0, 0},
			{0, 0, 0.5, 0.5},
		},
		GroupLabels: []string{"politics", "sports", "politics", "sports"},
	}
}

func TestFactorize(t *testing.T) {
	ids, names := Factorize([]string{"b", "a", "b", "c", "a"})

	if !reflect.DeepEqual(ids, []int{0, 1, 0, 2, 1}) {
		t.Errorf("expected ids [0 1 0 2 1], got %v", ids)
	}
	if !reflect.DeepEqual(names, []string{"b", "a", "c"}) {
		t.Errorf("expected first-occurrence names [b a c], got %v", names)
	}
}

func TestFactorize_Empty(t *testing.T) {
	ids, names := Factorize(nil)
	if len(ids) != 0 || len(names) != 0 {
		t.Errorf("expected empty result, got %v %v", ids, names)
	}
}

func TestGroupImportances(t *testing.T) {
	docTopic := mat.NewDense(3, 2, []float64{
		0.5, 0.5,
		1, 0,
		0.25, 0.75,
	})
	docTerm := mat.NewDense(3, 3, []float64{
		1, 0, 2,
		0, 3, 0,
		4, 0, 0,
	})

	importances, groupTerm, groupTopic, err := GroupImportances(docTopic, docTerm, []int{0, 1, 0}, 2)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if !reflect.DeepEqual(importances, []float64{2, 1}) {
		t.Errorf("expected importances [2 1], got %v", importances)
	}
	if !reflect.DeepEqual(groupTopic.RawRowView(0), []float64{0.75, 1.25}) {
		t.Errorf("unexpected topic importances for group 0: %v", groupTopic.RawRowView(0))
	}
	if !reflect.DeepEqual(groupTerm.RawRowView(0), []float64{5, 0, 2}) {
		t.Errorf("unexpected term importances for group 0: %v", groupTerm.RawRowView(0))
	}
	if !reflect.DeepEqual(groupTerm.RawRowView(1), []float64{0, 3, 0}) {
		t.Errorf("unexpected term importances for group 1: %v", groupTerm.RawRowView(1))
	}
}

func TestGroupImportances_BadLabels(t *testing.T) {
	docTopic := mat.NewDense(2, 1, []float64{1, 1})
	docTerm := mat.NewDense(2, 1, []float64{1, 1})

	if _, _, _, err := GroupImportances(docTopic, docTerm, []int{0}, 1); !errors.Is(err, ErrGroupLabels) {
		t.Errorf("expected ErrGroupLabels for short label list, got %v", err)
	}
	if _, _, _, err := GroupImportances(docTopic, docTerm, []int{0, 3}, 2); !errors.Is(err, ErrGroupLabels) {
		t.Errorf("expected ErrGroupLabels for out of range id, got %v", err)
	}
}

func TestDominantTopics(t *testing.T) {
	groupTopic := mat.NewDense(3, 3, []float64{
		0.1, 0.7, 0.2,
		0.5, 0.5, 0,
		0, 0, 1,
	})

	got := DominantTopics(groupTopic)
	if !reflect.DeepEqual(got, []int{1, 0, 2}) {
		t.Errorf("expected [1 0 2], got %v", got)
	}
}

func TestGroupPositions(t *testing.T) {
	groupTerm := mat.NewDense(3, 3, []float64{
		1, 0, 0,
		2, 0, 0,
		0, 1, 0,
	})

	points, err := GroupPositions(groupTerm)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(points) != 3 {
		t.Fatalf("expected 3 points, got %d", len(points))
	}

	for i, p := range points {
		if p.X < -1 || p.X > 1 || p.Y < -1 || p.Y > 1 {
			t.Errorf("point %d out of range: %+v", i, p)
		}
	}

	// Same term mix at a different scale lands on the same spot
	if math.Abs(points[0].X-points[1].X) > 1e-9 || math.Abs(points[0].Y-points[1].Y) > 1e-9 {
		t.Errorf("expected groups 0 and 1 to coincide, got %+v and %+v", points[0], points[1])
	}
	if math.Abs(math.Abs(points[0].X-points[2].X)-2) > 1e-9 {
		t.Errorf("expected groups 0 and 2 at opposite ends of the x axis, got %+v and %+v", points[0], points[2])
	}
}

func TestGroupPositions_SingleGroup(t *testing.T) {
	points, err := GroupPositions(mat.NewDense(1, 2, []float64{3, 4}))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(points) != 1 || points[0] != (Point{}) {
		t.Errorf("expected single point at origin, got %v", points)
	}
}

func TestTopicColors(t *testing.T) {
	got := TopicColors(4)
	want := []string{
		"rgb(12, 51, 131)",
		"rgb(10, 136, 186)",
		"rgb(242, 211, 56)",
		"rgb(242, 143, 56)",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}

	if len(TopicColors(0)) != 0 {
		t.Error("expected no colors for zero topics")
	}
}

func TestTopK(t *testing.T) {
	row := []float64{0.1, 0, 0.5, 0.1, 0.3}
	labels := []string{"a", "b", "c", "d", "e"}

	got := TopK(row, labels, 3)
	want := []Weighted{
		{Index: 2, Label: "c", Weight: 0.5},
		{Index: 4, Label: "e", Weight: 0.3},
		{Index: 0, Label: "a", Weight: 0.1},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}

	if all := TopK(row, labels, 0); len(all) != 4 {
		t.Errorf("expected zero weights to be dropped, got %d entries", len(all))
	}
}

func TestPrepare(t *testing.T) {
	groups, err := Prepare(sampleModel())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if groups.NumGroups() != 2 {
		t.Fatalf("expected 2 groups, got %d", groups.NumGroups())
	}
	if !reflect.DeepEqual(groups.Names, []string{"politics", "sports"}) {
		t.Errorf("unexpected group names %v", groups.Names)
	}
	if !reflect.DeepEqual(groups.DominantTopics, []int{0, 1}) {
		t.Errorf("expected dominant topics [0 1], got %v", groups.DominantTopics)
	}
	if len(groups.TopicColors) != 2 {
		t.Errorf("expected a color per topic, got %v", groups.TopicColors)
	}
	if !reflect.DeepEqual(groups.TopicNames, []string{"Topic 0", "Topic 1"}) {
		t.Errorf("unexpected topic names %v", groups.TopicNames)
	}
	if len(groups.Positions) != 2 {
		t.Errorf("expected 2 positions, got %d", len(groups.Positions))
	}
	for g, imp := range groups.Importances {
		if math.Abs(imp-2) > 1e-9 {
			t.Errorf("expected group %d importance 2, got %v", g, imp)
		}
	}
}

func TestPrepare_InvalidModel(t *testing.T) {
	m := sampleModel()
	m.GroupLabels = m.GroupLabels[:3]

	if _, err := Prepare(m); !errors.Is(err, models.ErrShapeMismatch) {
		t.Errorf("expected ErrShapeMismatch, got %v", err)
	}
}
