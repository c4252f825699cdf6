package groups

import (
	"fmt"

	"github.com/go-chi/chi/v5"
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"gonum.org/v1/gonum/mat"

	"github.com/todmy/topic-groups/internal/prepare"
)

const (
	groupWordcloudID = "group_wordcloud"

	DefaultWordcloudTerms = 200
)

// GroupWordcloud shows the most important terms of the selected group
type GroupWordcloud struct {
	termImportance *mat.Dense
	vocab          []string
	topTerms       int
	assetsHost     string
}

// NewGroupWordcloud creates the word cloud component. topTerms <= 0 uses
// DefaultWordcloudTerms.
func NewGroupWordcloud(termImportance *mat.Dense, vocab []string, topTerms int) *GroupWordcloud {
	if topTerms <= 0 {
		topTerms = DefaultWordcloudTerms
	}
	return &GroupWordcloud{
		termImportance: termImportance,
		vocab:          vocab,
		topTerms:       topTerms,
	}
}

// Terms returns the words shown for a group, most important first
func (c *GroupWordcloud) Terms(group int) []prepare.Weighted {
	return prepare.TopK(c.termImportance.RawRowView(group), c.vocab, c.topTerms)
}

// Panel renders the word cloud of the selected group
func (c *GroupWordcloud) Panel(selected int) (Panel, error) {
	rows, _ := c.termImportance.Dims()
	if selected < 0 || selected >= rows {
		return Panel{}, fmt.Errorf("%w: %d", ErrGroupOutOfRange, selected)
	}

	terms := c.Terms(selected)
	data := make([]opts.WordCloudData, len(terms))
	for i, t := range terms {
		data[i] = opts.WordCloudData{Name: t.Label, Value: t.Weight}
	}

	wc := charts.NewWordCloud()
	wc.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			ChartID:    groupWordcloudID,
			Width:      "640px",
			Height:     "340px",
			AssetsHost: c.assetsHost,
		}),
		charts.WithTitleOpts(opts.Title{Title: "Most relevant words"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: true}),
	)
	wc.AddSeries("terms", data)
	wc.Validate()

	return newPanel(wc.Initialization, wc.GetAssets(), wc.JSON())
}

// Script refreshes the word cloud on selection
func (c *GroupWordcloud) Script(base string) string {
	return refreshScript(base, groupWordcloudID)
}

// RegisterCallbacks exposes the word cloud option for the caller's selection
func (c *GroupWordcloud) RegisterCallbacks(router chi.Router, state *SelectionStore) {
	router.Get("/"+groupWordcloudID+"/option", optionHandler(state, c))
}
