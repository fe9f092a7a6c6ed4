package config

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"gopkg.in/ini.v1"

	"github.com/livetable/livetable/internal/fetch"
)

// Endpoint is a named polling target loaded from the endpoints file.
// One INI section per endpoint:
//
//	[orders]
//	url          = https://example.com/api/orders
//	interval     = 5s
//	row_key      = id
//	data_field   = data
//	reset_paging = false
//	abort_on     = timeout,cancelled
type Endpoint struct {
	Name        string
	URL         string
	Method      string
	Interval    time.Duration
	RowKey      string
	DataField   string
	ResetPaging bool
	AbortOn     fetch.CategorySet
}

// Options converts the endpoint into resolved session options.
func (e *Endpoint) Options() (Options, error) {
	return Options{
		Enabled:             true,
		Interval:            e.Interval,
		DataSourceField:     e.DataField,
		RowKeyField:         e.RowKey,
		ResetPagingOnUpdate: e.ResetPaging,
		AbortOn:             e.AbortOn,
	}.Resolve()
}

// EndpointManager holds the endpoints loaded from an INI profile file.
type EndpointManager struct {
	endpoints map[string]*Endpoint
	mx        sync.RWMutex
}

// NewEndpointManager loads the endpoints file at path. A missing file
// yields an empty manager, not an error.
func NewEndpointManager(path string) (*EndpointManager, error) {
	m := &EndpointManager{
		endpoints: make(map[string]*Endpoint),
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return m, nil
	}

	f, err := ini.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load endpoints file %q: %w", path, err)
	}

	for _, sec := range f.Sections() {
		if sec.Name() == ini.DefaultSection {
			continue
		}
		ep, err := parseEndpoint(sec)
		if err != nil {
			return nil, fmt.Errorf("endpoint %q: %w", sec.Name(), err)
		}
		m.endpoints[ep.Name] = ep
	}
	return m, nil
}

// Get returns the named endpoint.
func (m *EndpointManager) Get(name string) (*Endpoint, error) {
	m.mx.RLock()
	defer m.mx.RUnlock()

	ep, ok := m.endpoints[name]
	if !ok {
		return nil, fmt.Errorf("no endpoint named %q", name)
	}
	return ep, nil
}

// Names returns all endpoint names.
func (m *EndpointManager) Names() []string {
	m.mx.RLock()
	defer m.mx.RUnlock()

	names := make([]string, 0, len(m.endpoints))
	for name := range m.endpoints {
		names = append(names, name)
	}
	return names
}

func parseEndpoint(sec *ini.Section) (*Endpoint, error) {
	url := sec.Key("url").String()
	if url == "" {
		return nil, fmt.Errorf("missing url")
	}

	ep := &Endpoint{
		Name:      sec.Name(),
		URL:       url,
		Method:    sec.Key("method").MustString("GET"),
		Interval:  sec.Key("interval").MustDuration(DefaultInterval),
		RowKey:    sec.Key("row_key").String(),
		DataField: sec.Key("data_field").String(),
		AbortOn:   fetch.NewCategorySet(),
	}
	ep.ResetPaging = sec.Key("reset_paging").MustBool(false)

	if raw := sec.Key("abort_on").String(); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			cat, err := fetch.ParseCategory(part)
			if err != nil {
				return nil, err
			}
			ep.AbortOn[cat] = struct{}{}
		}
	}
	return ep, nil
}
