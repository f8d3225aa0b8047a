package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v2"

	"github.com/sirupsen/logrus"
)

type YamlConf struct {
	Chain      string     `yaml:"chain"`
	ShareRPC   ShareRPC   `yaml:"share_rpc"`
	Log        Log        `yaml:"log"`
	Projector  Projector  `yaml:"projector"`
	RPCService RPCService `yaml:"rpc_service"`
}

type ShareRPC struct {
	Bitcoin Bitcoin `yaml:"bitcoin"`
}

type Bitcoin struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
}

type Log struct {
	Level string `yaml:"level"`
	Path  string `yaml:"path"`
}

type Projector struct {
	// MaxBlocks is the number of upcoming blocks the engine projects.
	MaxBlocks int `yaml:"max_blocks"`
	// MaxBlockWeight is the consensus block weight ceiling.
	MaxBlockWeight int64 `yaml:"max_block_weight"`
	// PollInterval is the mempool poll period in seconds.
	PollInterval int `yaml:"poll_interval"`
	// DataSource selects the mempool collaborator: "bitcoind" or "esplora".
	DataSource string `yaml:"data_source"`
	// EsploraURL is the base url of the esplora-style REST API, used when
	// data_source is "esplora".
	EsploraURL string `yaml:"esplora_url"`
}

type RPCService struct {
	Addr    string  `yaml:"addr"`
	Proxy   string  `yaml:"proxy"`
	LogPath string  `yaml:"log_path"`
	Swagger Swagger `yaml:"swagger"`
	API     API     `yaml:"api"`
}

type Swagger struct {
	Host    string   `yaml:"host"`
	Schemes []string `yaml:"schemes"`
}

type API struct {
	APIKeyList      map[string]*APIKey `yaml:"api_key_list"`
	NoLimitApiList  []string           `yaml:"no_limit_api_list"`
	NoLimitHostList []string           `yaml:"no_limit_host_list"`
}

type APIKey struct {
	UserName  string    `yaml:"user_name"`
	RateLimit RateLimit `yaml:"rate_limit"`
}

type RateLimit struct {
	PerSecond int `yaml:"per_second"`
	PerDay    int `yaml:"per_day"`
	Max       int `yaml:"max"`
	Burst     int `yaml:"burst"`
}

func GetBaseDir() string {
	execPath, err := os.Executable()
	if err != nil {
		return "./."
	}
	return filepath.Dir(execPath)
}

func InitConfig(configFile string) *YamlConf {
	if configFile == "" {
		for i, item := range os.Args {
			if item == "-env" {
				if i < len(os.Args) {
					configFile = os.Args[i+1]
					break
				}
			}
		}
		if configFile == "" {
			configFile = "./.env"
		}
	}
	if !strings.HasPrefix(configFile, "/") {
		configFile = filepath.Join(GetBaseDir(), configFile)
	}

	fmt.Printf("config file: %s\n", configFile)

	cfg, err := LoadYamlConf(configFile)
	if err != nil {
		return nil
	}
	return cfg
}

func LoadYamlConf(cfgPath string) (*YamlConf, error) {
	confFile, err := os.Open(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open cfg: %s, error: %s", cfgPath, err)
	}
	defer confFile.Close()

	ret := &YamlConf{}
	decoder := yaml.NewDecoder(confFile)
	err = decoder.Decode(ret)
	if err != nil {
		return nil, fmt.Errorf("failed to decode cfg: %s, error: %s", cfgPath, err)
	}

	_, err = logrus.ParseLevel(ret.Log.Level)
	if err != nil {
		ret.Log.Level = "info"
	}

	if ret.Log.Path == "" {
		ret.Log.Path = "log"
	}
	ret.Log.Path = filepath.FromSlash(ret.Log.Path)
	if ret.Log.Path[len(ret.Log.Path)-1] != filepath.Separator {
		ret.Log.Path += string(filepath.Separator)
	}

	if ret.Projector.MaxBlocks <= 0 {
		ret.Projector.MaxBlocks = 8
	}
	if ret.Projector.MaxBlockWeight <= 0 {
		ret.Projector.MaxBlockWeight = 4000000
	}
	if ret.Projector.PollInterval <= 0 {
		ret.Projector.PollInterval = 5
	}
	if ret.Projector.DataSource == "" {
		ret.Projector.DataSource = "bitcoind"
	}

	rpcService := &ret.RPCService
	if rpcService.Addr == "" {
		rpcService.Addr = "0.0.0.0:80"
	}

	if rpcService.Proxy == "" {
		rpcService.Proxy = "/"
	}
	if rpcService.Proxy[0] != '/' {
		rpcService.Proxy = "/" + rpcService.Proxy
	}

	if rpcService.LogPath == "" {
		rpcService.LogPath = "log"
	}

	if rpcService.Swagger.Host == "" {
		rpcService.Swagger.Host = "127.0.0.1"
	}

	if len(rpcService.Swagger.Schemes) == 0 {
		rpcService.Swagger.Schemes = []string{"http"}
	}

	return ret, nil
}
