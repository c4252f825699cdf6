package groups

import (
	"encoding/json"
	"fmt"
	"math"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/todmy/topic-groups/internal/prepare"
)

const (
	groupMapID = "group_map"

	minSymbolSize = 10
	maxSymbolSize = 70
)

// GroupMap draws every group at its 2D position, sized by importance and
// colored by its dominant topic. Clicking a group selects it.
type GroupMap struct {
	positions      []prepare.Point
	importances    []float64
	names          []string
	dominantTopics []int
	topicColors    []string
	topicNames     []string
	maxImportance  float64
	assetsHost     string
}

// NewGroupMap creates the group map component
func NewGroupMap(
	positions []prepare.Point,
	importances []float64,
	names []string,
	dominantTopics []int,
	topicColors []string,
	topicNames []string,
) *GroupMap {
	maxImportance := 0.0
	for _, imp := range importances {
		maxImportance = math.Max(maxImportance, imp)
	}
	return &GroupMap{
		maxImportance:  maxImportance,
		positions:      positions,
		importances:    importances,
		names:          names,
		dominantTopics: dominantTopics,
		topicColors:    topicColors,
		topicNames:     topicNames,
	}
}

// symbolSize scales a group's marker by the square root of its share of the
// largest importance, so marker area tracks importance
func (m *GroupMap) symbolSize(g int) int {
	if m.maxImportance == 0 {
		return minSymbolSize
	}
	share := math.Sqrt(m.importances[g] / m.maxImportance)
	return minSymbolSize + int(math.Round(share*(maxSymbolSize-minSymbolSize)))
}

func (m *GroupMap) chart(selected int) *charts.Scatter {
	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			ChartID:    groupMapID,
			Width:      "900px",
			Height:     "720px",
			AssetsHost: m.assetsHost,
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    "Groups",
			Subtitle: fmt.Sprintf("Selected: %s", m.names[selected]),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: true, Formatter: "{b}"}),
		charts.WithLegendOpts(opts.Legend{Show: true, Bottom: "0"}),
		charts.WithXAxisOpts(opts.XAxis{Type: "value", Min: -1.2, Max: 1.2}),
		charts.WithYAxisOpts(opts.YAxis{Type: "value", Min: -1.2, Max: 1.2}),
	)

	// one series per dominant topic so the legend reads as a topic key
	byTopic := make(map[int][]opts.ScatterData)
	for g, p := range m.positions {
		symbol := "circle"
		if g == selected {
			symbol = "diamond"
		}
		topic := m.dominantTopics[g]
		byTopic[topic] = append(byTopic[topic], opts.ScatterData{
			Name:       m.names[g],
			Value:      []interface{}{p.X, p.Y, g},
			Symbol:     symbol,
			SymbolSize: m.symbolSize(g),
		})
	}

	for topic := range m.topicColors {
		data, ok := byTopic[topic]
		if !ok {
			continue
		}
		scatter.AddSeries(m.topicNames[topic], data,
			charts.WithItemStyleOpts(opts.ItemStyle{Color: m.topicColors[topic], Opacity: 0.85}),
			charts.WithLabelOpts(opts.Label{Show: true, Position: "top", Formatter: "{b}"}),
		)
	}

	return scatter
}

// Panel renders the map with the selected group highlighted
func (m *GroupMap) Panel(selected int) (Panel, error) {
	if selected < 0 || selected >= len(m.names) {
		return Panel{}, fmt.Errorf("%w: %d", ErrGroupOutOfRange, selected)
	}

	scatter := m.chart(selected)
	scatter.Validate()
	return newPanel(scatter.Initialization, scatter.GetAssets(), scatter.JSON())
}

// RegisterCallbacks makes the map the input of the shared selection:
// clicking a group posts it to selected_group, which then notifies every
// panel on the page.
func (m *GroupMap) RegisterCallbacks(router chi.Router, state *SelectionStore) {
	router.Post("/selected_group", func(w http.ResponseWriter, r *http.Request) {
		var req SelectionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		if err := state.Set(sessionID(w, r), req.Group); err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}

		respondJSON(w, http.StatusOK, SelectionResponse{Group: req.Group, Name: m.names[req.Group]})
	})
	router.Get("/"+groupMapID+"/option", optionHandler(state, m))
}

// Script posts clicked groups and refreshes the map on selection
func (m *GroupMap) Script(base string) string {
	return fmt.Sprintf(`goecharts_%s.on('click', function (params) {
    fetch(%q, {
        method: 'POST',
        credentials: 'same-origin',
        headers: {'Content-Type': 'application/json'},
        body: JSON.stringify({group: params.value[2]})
    })
        .then(function (resp) { return resp.json(); })
        .then(function (state) {
            document.getElementById('groups_container')
                .dispatchEvent(new CustomEvent('selected_group', {detail: state.group}));
        });
});
%s`, groupMapID, base+"/selected_group", refreshScript(base, groupMapID))
}

// SelectionRequest selects a group
type SelectionRequest struct {
	Group int `json:"group"`
}

// SelectionResponse reports the selected group
type SelectionResponse struct {
	Group int    `json:"group"`
	Name  string `json:"name"`
}
