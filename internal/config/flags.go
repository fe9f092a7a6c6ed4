package config

// Flags holds CLI flag bindings. Pointer fields let the CLI detect
// whether a flag was set at all.
type Flags struct {
	RefreshRate *float32
	URL         *string
	Method      *string
	RowKey      *string
	DataField   *string
	Profile     *string
	AbortOn     *[]string
	ResetPaging *bool
	Headless    *bool
}

// NewFlags creates a new Flags instance with default values set.
func NewFlags() *Flags {
	refreshRate := float32(DefaultRefreshRate)
	url := ""
	method := "GET"
	rowKey := ""
	dataField := ""
	profile := ""
	abortOn := []string{}
	resetPaging := false
	headless := false

	return &Flags{
		RefreshRate: &refreshRate,
		URL:         &url,
		Method:      &method,
		RowKey:      &rowKey,
		DataField:   &dataField,
		Profile:     &profile,
		AbortOn:     &abortOn,
		ResetPaging: &resetPaging,
		Headless:    &headless,
	}
}

// IsBoolSet returns true if a bool pointer is non-nil and true.
func IsBoolSet(b *bool) bool {
	return b != nil && *b
}

// IsStringSet returns true if a string pointer is non-nil and non-empty.
func IsStringSet(s *string) bool {
	return s != nil && *s != ""
}
