package groups

import (
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"
	"regexp"

	"github.com/go-chi/chi/v5"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// Component is one sub-visualization of the groups panel
type Component interface {
	// Panel renders the component for the given selected group
	Panel(selected int) (Panel, error)
	// Script returns the client code that keeps the panel in sync with
	// the selection. base is the public path of the blueprint router.
	Script(base string) string
	// RegisterCallbacks attaches the component's endpoints to the
	// blueprint router
	RegisterCallbacks(r chi.Router, state *SelectionStore)
}

// Panel is a self-contained chart: its container size, echarts option and
// the script wiring it to the shared selection.
type Panel struct {
	ID     string
	Width  string
	Height string
	Option template.JS
	Script template.JS
	Assets []string
}

// go-echarts marks JS functions inside options with __f__
var funcMarkers = regexp.MustCompile(`(__f__")|("__f__)|(__f__)`)

// newPanel encodes a chart option for inline use. json.Marshal escapes <, >
// and & inside strings, so labels cannot close the surrounding script.
func newPanel(init opts.Initialization, assets opts.Assets, option map[string]interface{}) (Panel, error) {
	js := make([]string, 0, len(assets.JSAssets.Values))
	js = append(js, assets.JSAssets.Values...)

	encoded, err := json.Marshal(option)
	if err != nil {
		return Panel{}, fmt.Errorf("encode %s option: %w", init.ChartID, err)
	}

	return Panel{
		ID:     init.ChartID,
		Width:  init.Width,
		Height: init.Height,
		Option: template.JS(funcMarkers.ReplaceAll(encoded, nil)),
		Assets: js,
	}, nil
}

// refreshScript re-fetches a panel's option whenever the selection changes
func refreshScript(base, id string) string {
	return fmt.Sprintf(`document.getElementById('groups_container').addEventListener('selected_group', function () {
    fetch(%q, {credentials: 'same-origin'})
        .then(function (resp) { return resp.text(); })
        .then(function (src) { goecharts_%s.setOption((new Function('return ' + src))(), true); });
});`, base+"/"+id+"/option", id)
}

// optionHandler serves a component's echarts option for the caller's
// selected group
func optionHandler(state *SelectionStore, c Component) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		panel, err := c.Panel(state.Get(sessionID(w, r)))
		if err != nil {
			respondError(w, http.StatusInternalServerError, "failed to render panel")
			return
		}
		w.Header().Set("Content-Type", "application/javascript")
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, panel.Option)
	}
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
