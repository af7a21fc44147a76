package app

// Key binding constants used in handleKey.
const (
	KeyQuit         = "q"
	KeyQuitUpper    = "Q"
	KeyCtrlC        = "ctrl+c"
	KeyEsc          = "esc"
	KeySpace        = " "
	KeyEnter        = "enter"
	KeyBackspace    = "backspace"
	KeyReRecord     = "r"
	KeyReRecordUp   = "R"
	KeyNewInterview = "n"
	KeyNewUpper     = "N"
)
