package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration parses yaml values like "600ms" or "30s".
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	dur, err := time.ParseDuration(value.Value)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", value.Value, err)
	}
	*d = Duration(dur)
	return nil
}

func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

type Logger struct {
	Level string `yaml:"level"`
}

type Global struct {
	Logger Logger `yaml:"logger"`
}

type Fetcher struct {
	BaseURL       string   `yaml:"base_url"`
	Interval      Duration `yaml:"interval"`
	Timeout       Duration `yaml:"timeout"`
	Workers       int      `yaml:"workers"`
	OnFailure     string   `yaml:"on_failure"`
	MaxRetries    int      `yaml:"max_retries"`
	FacilitiesCSV string   `yaml:"facilities_csv"`
}

type Local struct {
	Path string `yaml:"path"`
}

type S3 struct {
	Bucket         string `yaml:"bucket"`
	Region         string `yaml:"region"`
	Prefix         string `yaml:"prefix"`
	Endpoint       string `yaml:"endpoint"`
	ForcePathStyle bool   `yaml:"force_path_style"`
}

type Repository struct {
	Type  string `yaml:"type"`
	Local Local  `yaml:"local"`
	S3    S3     `yaml:"s3"`
}

type RIDB struct {
	ExportURL     string  `yaml:"export_url"`
	ZipPath       string  `yaml:"zip_path"`
	OutputCSV     string  `yaml:"output_csv"`
	DistanceMiles float64 `yaml:"distance_miles"`
	Location      string  `yaml:"location"`
}

type Campwatch struct {
	Global     Global     `yaml:"global"`
	Fetcher    Fetcher    `yaml:"fetcher"`
	Repository Repository `yaml:"repository"`
	RIDB       RIDB       `yaml:"ridb"`
}

// Default is the configuration the pipeline runs with when no config file
// is given: sequential fetch against recreation.gov, artifacts under
// ./temp, abort on first failure.
func Default() *Campwatch {
	return &Campwatch{
		Global: Global{
			Logger: Logger{Level: "info"},
		},
		Fetcher: Fetcher{
			BaseURL:       "https://www.recreation.gov",
			Interval:      Duration(600 * time.Millisecond),
			Timeout:       Duration(30 * time.Second),
			Workers:       1,
			OnFailure:     "abort",
			MaxRetries:    3,
			FacilitiesCSV: "download.csv",
		},
		Repository: Repository{
			Type:  "local",
			Local: Local{Path: "temp"},
		},
	}
}

// NewCampwatchFromFile loads a config file over the defaults. An empty
// path returns the defaults unchanged.
func NewCampwatchFromFile(fpath string) (*Campwatch, error) {
	c := Default()

	if fpath == "" {
		return c, nil
	}

	bs, err := os.ReadFile(fpath)
	if err != nil {
		return nil, err
	}

	if err := yaml.Unmarshal(bs, c); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", fpath, err)
	}

	if err := c.validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", fpath, err)
	}

	return c, nil
}

func (c *Campwatch) validate() error {
	switch c.Repository.Type {
	case "local", "s3":
	default:
		return fmt.Errorf("unknown repository type: %s", c.Repository.Type)
	}

	switch c.Fetcher.OnFailure {
	case "abort", "retry":
	default:
		return fmt.Errorf("unknown on_failure policy: %s", c.Fetcher.OnFailure)
	}

	if c.Fetcher.Interval <= 0 {
		return fmt.Errorf("fetcher interval must be positive")
	}
	if c.Fetcher.Workers < 1 {
		return fmt.Errorf("fetcher workers must be at least 1")
	}

	return nil
}
