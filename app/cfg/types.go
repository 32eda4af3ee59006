package cfg

type Cfg struct {
	// Gist configuration
	GistID    string
	GistFile  string
	GistToken string
	APIBase   string

	// Application configuration
	DBPath              string
	SinksDir            string
	Port                string
	PollInterval        int
	UpdateCheckInterval int
	FetchTimeout        int
	RetentionDays       int
	BuildNumber         int
	APIAccessKey        string

	// Application metadata
	UserAgent string
	Timezone  string
	Debug     bool
	Version   string
}
