package main

type Mode int

const (
	ModeStartup Mode = iota
	ModeNormal
	ModeEditing
	ModeResize
	ModeMove
	ModeArrow
	ModeFileInput
	ModeLibrary
	ModeConfirm
)

type FileOperation int

const (
	FileOpSave FileOperation = iota
	FileOpExportPNG
	FileOpOpen
)

type ConfirmAction int

const (
	ConfirmDelete ConfirmAction = iota
	ConfirmQuit
	ConfirmNewSnap
	ConfirmCloseBuffer
	ConfirmOverwriteFile
	ConfirmLibraryDelete
)

// A terminal cell covers cellWidth x cellHeight screen pixels.
const (
	cellWidth  = 8
	cellHeight = 16
)

const (
	// defaultZoom is used until the terminal size is known.
	defaultZoom = 0.25
	zoomStep    = 1.25
	fitPadding  = 2 * cellWidth

	layersPanelWidth = 28
)
