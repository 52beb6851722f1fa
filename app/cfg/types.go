package cfg

type Cfg struct {
	// Storage configuration
	DBPath   string
	MediaDir string

	// Media fetching
	BaseURL      string
	WorkerCount  int
	FetchTimeout int
	SkipMedia    bool

	// Application configuration
	OptionsFile string

	// Application metadata
	UserAgent string
	Debug     bool
	Version   string
}
