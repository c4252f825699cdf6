package groups

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/todmy/topic-groups/internal/prepare"
	"github.com/todmy/topic-groups/pkg/models"
)

// Options configures a groups blueprint
type Options struct {
	// BasePath is the public path the blueprint is served under
	BasePath       string
	WordcloudTerms int
	BarplotTopics  int
	// AssetsHost overrides where echarts scripts are loaded from
	AssetsHost string
	PageTitle  string
}

// Blueprint is the composed groups panel: a group map beside a stack of the
// topic bar chart and the word cloud, sharing one selected group.
type Blueprint struct {
	groups   *prepare.Groups
	state    *SelectionStore
	groupMap *GroupMap
	barplot  *GroupBarplot
	cloud    *GroupWordcloud
	router   chi.Router
	opts     Options
}

// CreateBlueprint prepares the group aggregates of a topic model once and
// wires the three components to a shared selection, initially group 0.
func CreateBlueprint(m *models.TopicModel, o Options) (*Blueprint, error) {
	groups, err := prepare.Prepare(m)
	if err != nil {
		return nil, fmt.Errorf("prepare groups: %w", err)
	}

	o.BasePath = strings.TrimSuffix(o.BasePath, "/")
	if o.PageTitle == "" {
		o.PageTitle = "Groups"
		if m.Name != "" {
			o.PageTitle = m.Name + " - Groups"
		}
	}

	groupMap := NewGroupMap(groups.Positions, groups.Importances, groups.Names,
		groups.DominantTopics, groups.TopicColors, groups.TopicNames)
	groupMap.assetsHost = o.AssetsHost

	cloud := NewGroupWordcloud(groups.TermImportance, groups.Vocab, o.WordcloudTerms)
	cloud.assetsHost = o.AssetsHost

	barplot := NewGroupBarplot(groups.TopicImportance, groups.TopicColors, groups.TopicNames, o.BarplotTopics)
	barplot.assetsHost = o.AssetsHost

	b := &Blueprint{
		groups:   groups,
		state:    NewSelectionStore(groups.NumGroups(), 0),
		groupMap: groupMap,
		barplot:  barplot,
		cloud:    cloud,
		router:   chi.NewRouter(),
		opts:     o,
	}

	b.router.Get("/", b.handlePage)
	b.router.Get("/selected_group", b.handleSelection)
	for _, c := range b.components() {
		c.RegisterCallbacks(b.router, b.state)
	}

	return b, nil
}

func (b *Blueprint) components() []Component {
	return []Component{b.groupMap, b.cloud, b.barplot}
}

// Groups returns the prepared group aggregates
func (b *Blueprint) Groups() *prepare.Groups {
	return b.groups
}

// Selection returns the shared selection store
func (b *Blueprint) Selection() *SelectionStore {
	return b.state
}

// ServeHTTP serves the page and the component callbacks
func (b *Blueprint) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b.router.ServeHTTP(w, r)
}

// Render writes the full groups page for a selected group
func (b *Blueprint) Render(w io.Writer, selected int) error {
	page := pageData{
		Title:    b.opts.PageTitle,
		Selected: selected,
	}

	seen := make(map[string]bool)
	render := func(c Component) (Panel, error) {
		p, err := c.Panel(selected)
		if err != nil {
			return Panel{}, err
		}
		p.Script = template.JS(c.Script(b.opts.BasePath))
		for _, a := range p.Assets {
			if !seen[a] {
				seen[a] = true
				page.Assets = append(page.Assets, a)
			}
		}
		return p, nil
	}

	var err error
	if page.Map, err = render(b.groupMap); err != nil {
		return fmt.Errorf("render group map: %w", err)
	}
	if page.Barplot, err = render(b.barplot); err != nil {
		return fmt.Errorf("render group barplot: %w", err)
	}
	if page.Wordcloud, err = render(b.cloud); err != nil {
		return fmt.Errorf("render group wordcloud: %w", err)
	}

	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, page); err != nil {
		return fmt.Errorf("execute page template: %w", err)
	}
	_, err = w.Write(buf.Bytes())
	return err
}

func (b *Blueprint) handlePage(w http.ResponseWriter, r *http.Request) {
	session := sessionID(w, r)
	selected := b.state.Get(session)

	// ?group=N deep-links straight to a group
	if q := r.URL.Query().Get("group"); q != "" {
		g, err := strconv.Atoi(q)
		if err != nil {
			respondError(w, http.StatusBadRequest, "group must be an integer")
			return
		}
		if err := b.state.Set(session, g); err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		selected = g
	}

	var buf bytes.Buffer
	if err := b.Render(&buf, selected); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to render groups")
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

func (b *Blueprint) handleSelection(w http.ResponseWriter, r *http.Request) {
	g := b.state.Get(sessionID(w, r))
	respondJSON(w, http.StatusOK, SelectionResponse{Group: g, Name: b.groups.Names[g]})
}

type pageData struct {
	Title     string
	Selected  int
	Assets    []string
	Map       Panel
	Barplot   Panel
	Wordcloud Panel
}

var pageTemplate = template.Must(template.New("groups").Funcs(template.FuncMap{
	"safeJS": func(s string) template.JS { return template.JS(s) },
}).Parse(`<!DOCTYPE html>
<html>
<head>
    <meta charset="utf-8">
    <title>{{ .Title }}</title>
{{- range .Assets }}
    <script src="{{ . }}"></script>
{{- end }}
    <style>
        #groups_container .groups-row { display: flex; align-items: stretch; justify-content: space-between; gap: 12px; padding: 12px; }
        #groups_container .groups-stack { display: flex; flex-direction: column; justify-content: space-around; flex: 1; }
    </style>
</head>
<body>
<div id="groups_container" data-selected-group="{{ .Selected }}">
    <div class="groups-row">
        {{ template "panel" .Map }}
        <div class="groups-stack">
            {{ template "panel" .Barplot }}
            {{ template "panel" .Wordcloud }}
        </div>
    </div>
</div>
<script type="text/javascript">
    "use strict";
    {{ template "init" .Map }}
    {{ template "init" .Barplot }}
    {{ template "init" .Wordcloud }}
    document.getElementById('groups_container').addEventListener('selected_group', function (e) {
        this.dataset.selectedGroup = e.detail;
    });
    {{ .Map.Script }}
    {{ .Barplot.Script }}
    {{ .Wordcloud.Script }}
</script>
</body>
</html>
{{- define "panel" }}<div class="item" id="{{ .ID }}" style="width:{{ .Width }};height:{{ .Height }};"></div>{{ end }}
{{- define "init" }}
    let goecharts_{{ .ID | safeJS }} = echarts.init(document.getElementById('{{ .ID }}'), "white");
    goecharts_{{ .ID | safeJS }}.setOption({{ .Option }});
{{- end }}
`))
