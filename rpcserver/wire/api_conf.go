package wire

type API struct {
	APIKeyList      map[string]*APIKey `yaml:"api_key_list"`
	NoLimitApiList  []string           `yaml:"no_limit_api_list"`
	NoLimitHostList []string           `yaml:"no_limit_host_list"`
}

type APIKey struct {
	UserName  string     `yaml:"user_name"`
	RateLimit *RateLimit `yaml:"rate_limit"`
}

type RateLimit struct {
	PerSecond int `yaml:"per_second"`
	PerDay    int `yaml:"per_day"`
	Max       int `yaml:"max"`
	Burst     int `yaml:"burst"`
}
