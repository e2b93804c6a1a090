package model

// FileEvent represents a file system event
type FileEvent struct {
	Path      string
	Operation string
}

// InputMode is the text-entry mode of the live view
type InputMode int

const (
	InputNone InputMode = iota
	InputSearch
	InputModule
)

// InteractionState represents the current UI interaction state
type InteractionState struct {
	ShowHelp      bool
	InputMode     InputMode
	InputBuffer   string
	StatusMessage string
	IsLoading     bool
	LayoutStyle   int
}
