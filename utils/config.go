package utils

import (
	"encoding/json"
	"fmt"
	"io/ioutil"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"
)

var EtcDir = "."

type ServiceConfig struct {
	MASAddress  string   `json:"mas_address"`
	WorkerNodes []string `json:"worker_nodes"`
	// MaxWorkers caps the batch pool, 0 meaning one worker per core.
	MaxWorkers int `json:"max_workers"`
	// FailFast aborts a batch at its first failing product.
	FailFast bool `json:"fail_fast"`
	// ItemTimeout bounds a single product, in seconds.
	ItemTimeout        int    `json:"item_timeout"`
	MetricsLogDir      string `json:"metrics_log_dir"`
	MaxGrpcRecvMsgSize int    `json:"max_grpc_recv_msg_size"`
}

// Formula is a per-pixel retrieval formula over band reflectances,
// e.g. an NDWI "(B3 - B8) / (B3 + B8)".
type Formula struct {
	Name       string `json:"name"`
	Expression string `json:"expression"`
	LongName   string `json:"long_name"`
	Units      string `json:"units"`
}

// Mask describes a categorical mask layer computed from a product,
// either a boolean expression over bands or bit tests over a quality
// band.  Value is a binary string whose set bits flag a pixel;
// BitTests are (filter, value) binary string pairs, a pixel being
// flagged when value&filter == value for any pair.
type Mask struct {
	ID         string   `json:"id"`
	Expression string   `json:"expression"`
	Band       string   `json:"band"`
	Value      string   `json:"value"`
	BitTests   []string `json:"bit_tests"`
	Inclusive  bool     `json:"inclusive"`
	Version    string   `json:"version"`
	LongName   string   `json:"long_name"`
}

// Config is the struct representing the configuration of one
// extraction namespace: the worker and catalogue addresses, the
// format table override and the formulas and masks that can be
// requested.
type Config struct {
	ServiceConfig ServiceConfig `json:"service_config"`
	FormatsFile   string        `json:"formats_file"`
	Formulas      []Formula     `json:"formulas"`
	Masks         []Mask        `json:"masks"`
}

func LoadAllConfigFiles(rootDir string) (map[string]*Config, error) {
	configMap := make(map[string]*Config)
	err := filepath.Walk(rootDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if !info.IsDir() && info.Name() == "config.json" {
			relPath, _ := filepath.Rel(rootDir, filepath.Dir(path))
			log.Printf("Loading config file: %s under namespace: %s\n", path, relPath)

			config := &Config{}
			e := config.LoadConfigFile(path)
			if e != nil {
				return e
			}
			configMap[relPath] = config
		}
		return nil
	})

	if err == nil && len(configMap) == 0 {
		err = fmt.Errorf("No config file found")
	}

	return configMap, err
}

const DefaultRecvMsgSize = 64 * 1024 * 1024

// LoadConfigFile marshalls the config.json document returning an
// instance of a Config variable containing all the values
func (config *Config) LoadConfigFile(configFile string) error {
	*config = Config{}
	cfg, err := ioutil.ReadFile(configFile)
	if err != nil {
		return fmt.Errorf("Error while reading config file: %s. Error: %v", configFile, err)
	}

	err = json.Unmarshal(cfg, config)
	if err != nil {
		return fmt.Errorf("Error at JSON parsing config document: %s. Error: %v", configFile, err)
	}

	if config.ServiceConfig.MaxGrpcRecvMsgSize <= 0 {
		config.ServiceConfig.MaxGrpcRecvMsgSize = DefaultRecvMsgSize
	}
	if config.ServiceConfig.MaxWorkers < 0 || config.ServiceConfig.ItemTimeout < 0 {
		return fmt.Errorf("max_workers and item_timeout must not be negative")
	}
	if len(config.FormatsFile) > 0 && !filepath.IsAbs(config.FormatsFile) {
		config.FormatsFile = filepath.Join(filepath.Dir(configFile), config.FormatsFile)
	}

	names := make(map[string]bool)
	for _, f := range config.Formulas {
		if len(f.Name) == 0 || len(f.Expression) == 0 {
			return fmt.Errorf("Formulas need both a name and an expression: %+v", f)
		}
		if names[f.Name] {
			return fmt.Errorf("Formula %s is defined twice", f.Name)
		}
		names[f.Name] = true
	}
	for _, m := range config.Masks {
		if len(m.ID) == 0 {
			return fmt.Errorf("Masks need an id: %+v", m)
		}
		if names[m.ID] {
			return fmt.Errorf("Mask %s clashes with another formula or mask", m.ID)
		}
		names[m.ID] = true
		if len(m.Expression) == 0 {
			if len(m.Band) == 0 {
				return fmt.Errorf("Mask %s needs either an expression or a band", m.ID)
			}
			if len(m.Value) == 0 && len(m.BitTests) == 0 {
				return fmt.Errorf("Mask %s: please specify either value or bit_tests", m.ID)
			}
			if len(m.BitTests)%2 != 0 {
				return fmt.Errorf("Mask %s: the entries in bit_tests must be in pairs", m.ID)
			}
		}
	}
	return nil
}

// ItemTimeoutDuration returns the per product timeout, 0 meaning none.
func (c *ServiceConfig) ItemTimeoutDuration() time.Duration {
	return time.Duration(c.ItemTimeout) * time.Second
}

func WatchConfig(infoLog, errLog *log.Logger, configMap *map[string]*Config) {
	// Catch SIGHUP to automatically reload cache
	sighup := make(chan os.Signal, 1)
	signal.Notify(sighup, syscall.SIGHUP)
	go func() {
		for {
			select {
			case <-sighup:
				infoLog.Println("Caught SIGHUP, reloading config...")
				confMap, err := LoadAllConfigFiles(EtcDir)
				if err != nil {
					errLog.Printf("Error in loading config files: %v\n", err)
					return
				}

				for k := range *configMap {
					delete(*configMap, k)
				}

				for k := range confMap {
					(*configMap)[k] = confMap[k]
				}
			}
		}
	}()
}
