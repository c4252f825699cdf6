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
	groupBarplotID = "group_barplot"

	DefaultBarplotTopics = 10
)

// GroupBarplot shows the topic importances of the selected group in the
// shared topic colors
type GroupBarplot struct {
	topicImportance *mat.Dense
	topicColors     []string
	topicNames      []string
	topTopics       int
	assetsHost      string
}

// NewGroupBarplot creates the bar chart component. topTopics <= 0 uses
// DefaultBarplotTopics.
func NewGroupBarplot(topicImportance *mat.Dense, topicColors, topicNames []string, topTopics int) *GroupBarplot {
	if topTopics <= 0 {
		topTopics = DefaultBarplotTopics
	}
	return &GroupBarplot{
		topicImportance: topicImportance,
		topicColors:     topicColors,
		topicNames:      topicNames,
		topTopics:       topTopics,
	}
}

// Topics returns the bars drawn for a group, most important first
func (c *GroupBarplot) Topics(group int) []prepare.Weighted {
	return prepare.TopK(c.topicImportance.RawRowView(group), c.topicNames, c.topTopics)
}

// Panel renders the topic bars of the selected group
func (c *GroupBarplot) Panel(selected int) (Panel, error) {
	rows, _ := c.topicImportance.Dims()
	if selected < 0 || selected >= rows {
		return Panel{}, fmt.Errorf("%w: %d", ErrGroupOutOfRange, selected)
	}

	topics := c.Topics(selected)
	names := make([]string, len(topics))
	data := make([]opts.BarData, len(topics))
	for i, t := range topics {
		names[i] = t.Label
		data[i] = opts.BarData{
			Name:      t.Label,
			Value:     t.Weight,
			ItemStyle: &opts.ItemStyle{Color: c.topicColors[t.Index]},
		}
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			ChartID:    groupBarplotID,
			Width:      "640px",
			Height:     "340px",
			AssetsHost: c.assetsHost,
		}),
		charts.WithTitleOpts(opts.Title{Title: "Most relevant topics"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: true}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Importance"}),
	)
	bar.SetXAxis(names).AddSeries("importance", data)
	bar.Validate()

	return newPanel(bar.Initialization, bar.GetAssets(), bar.JSON())
}

// Script refreshes the bar chart on selection
func (c *GroupBarplot) Script(base string) string {
	return refreshScript(base, groupBarplotID)
}

// RegisterCallbacks exposes the bar chart option for the caller's selection
func (c *GroupBarplot) RegisterCallbacks(router chi.Router, state *SelectionStore) {
	router.Get("/"+groupBarplotID+"/option", optionHandler(state, c))
}
