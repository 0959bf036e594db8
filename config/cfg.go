package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"time"

	yaml "gopkg.in/yaml.v3"

	"github.com/rupor-github/gencfg"
)

//go:embed config.yaml.tmpl
var ConfigTmpl []byte

type (
	TemplateFieldName string

	IngestConfig struct {
		MaxFileSize      int64 `yaml:"max_file_size" validate:"gt=0"`
		MinWidth         int   `yaml:"min_width" validate:"gte=0"`
		MinHeight        int   `yaml:"min_height" validate:"gte=0"`
		VectorRasterSize int   `yaml:"vector_raster_size" validate:"gte=0"`
	}

	CropConfig struct {
		MinSize float64 `yaml:"min_size" validate:"gt=0"`
		MinZoom float64 `yaml:"min_zoom" validate:"gt=0"`
		MaxZoom float64 `yaml:"max_zoom" validate:"gtefield=MinZoom"`
	}

	PreviewConfig struct {
		SurfaceSize  int           `yaml:"surface_size" validate:"min=100,max=4096"`
		Format       PreviewFormat `yaml:"format"`
		JPEGQuality  int           `yaml:"jpeg_quality" validate:"min=40,max=100"`
		RenderBudget time.Duration `yaml:"render_budget" validate:"gte=0"`
		Background   string        `yaml:"background" validate:"omitempty,hexcolor"`
	}

	QualityConfig struct {
		MinDPI        float64 `yaml:"min_dpi" validate:"gte=0"`
		MinLogoWidth  int     `yaml:"min_logo_width" validate:"gte=0"`
		MinLogoHeight int     `yaml:"min_logo_height" validate:"gte=0"`
	}

	MultiProductConfig struct {
		AspectTolerance float64 `yaml:"aspect_tolerance" validate:"gte=0"`
		Concurrency     int     `yaml:"concurrency" validate:"min=1"`
	}

	BundleConfig struct {
		MinItems      int `yaml:"min_items" validate:"min=1"`
		MaxItems      int `yaml:"max_items" validate:"gtefield=MinItems"`
		MinNameLength int `yaml:"min_name_length" validate:"min=1"`
		MaxNameLength int `yaml:"max_name_length" validate:"gtefield=MinNameLength"`
		MinQuantity   int `yaml:"min_quantity" validate:"min=1"`
		MaxQuantity   int `yaml:"max_quantity" validate:"gtefield=MinQuantity"`
	}

	DownloadConfig struct {
		Size             int     `yaml:"size" validate:"min=100,max=8192"`
		WatermarkText    string  `yaml:"watermark_text"`
		WatermarkOpacity float64 `yaml:"watermark_opacity" validate:"gte=0,lte=1"`
		FontPath         string  `yaml:"font_path" sanitize:"assure_file_access"`
		FontSize         float64 `yaml:"font_size" validate:"gt=0"`
		FileNameTemplate string  `yaml:"file_name_template"`
		Transliterate    bool    `yaml:"transliterate"`
	}

	EngineConfig struct {
		Ingest       IngestConfig       `yaml:"ingest"`
		Crop         CropConfig         `yaml:"crop"`
		Preview      PreviewConfig      `yaml:"preview"`
		Quality      QualityConfig      `yaml:"quality"`
		MultiProduct MultiProductConfig `yaml:"multiproduct"`
		Bundle       BundleConfig       `yaml:"bundle"`
		Download     DownloadConfig     `yaml:"download"`
	}

	StorageConfig struct {
		Database string `yaml:"database" sanitize:"path_clean,assure_dir_exists_for_file" validate:"required,filepath"`
	}

	Config struct {
		Version   int            `yaml:"version" validate:"eq=1"`
		Engine    EngineConfig   `yaml:"engine"`
		Storage   StorageConfig  `yaml:"storage"`
		Logging   LoggingConfig  `yaml:"logging"`
		Reporting ReporterConfig `yaml:"reporting"`
	}
)

const (
	// NOTE: must match yaml field name above
	FileNameTemplateFieldName TemplateFieldName = "file_name_template"
)

var requiredOptions = append([]func(*gencfg.ProcessingOptions){},
	gencfg.WithDoNotExpandField(string(FileNameTemplateFieldName)),
)

func unmarshalConfig(data []byte, cfg *Config, process bool) (*Config, error) {
	// We want to use only fields we defined so we cannot use yaml.Unmarshal
	// directly here
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration data: %w", err)
	}
	if process {
		if err := gencfg.Sanitize(cfg); err != nil {
			return nil, err
		}
		if err := gencfg.Validate(cfg); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// LoadConfiguration reads the configuration from the file at the given path,
// superimposes its values on top of expanded configuration template to
// provide sane defaults and performs validation.
func LoadConfiguration(path string, options ...func(*gencfg.ProcessingOptions)) (*Config, error) {
	haveFile := len(path) > 0

	data, err := gencfg.Process(ConfigTmpl, append(requiredOptions, options...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration template: %w", err)
	}
	cfg, err := unmarshalConfig(data, &Config{}, !haveFile)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration template: %w", err)
	}
	if !haveFile {
		return cfg, nil
	}

	data, err = os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	cfg, err = unmarshalConfig(data, cfg, haveFile)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration file: %w", err)
	}
	return cfg, nil
}

// Prepare generates configuration file from template and returns it as a byte
// slice.
func Prepare() ([]byte, error) {
	return gencfg.Process(ConfigTmpl, requiredOptions...)
}

func Dump(cfg *Config) ([]byte, error) {
	data, err := yaml.Marshal(*cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config to yaml: %v", err)
	}
	return data, nil
}
