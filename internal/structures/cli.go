package structures

import "net/http"

// CliFlags carries command line input. Zero values mean "keep the config file value".
type CliFlags struct {
	Command    string
	ConfigPath string
	DebugMode  bool

	Directory  string
	Questions  string
	Buckets    string
	Percent    float64
	Reviewer   string
	DecoyDir   string
	DecoyCount int
	OutPath    string
}

type Route struct {
	Url     string
	Handler http.Handler
}
