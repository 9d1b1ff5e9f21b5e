package util

type Configuration struct {
	Version     string
	BuildDate   string
	Commit      string
	HistoryPath string
	ScriptPath  string
	ScriptArgs  []string
}
