package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/spf13/afero"
	"github.com/spf13/viper"
	"github.com/tristendillon/tsmock/core/logger"
	"github.com/tristendillon/tsmock/core/models"
	"gopkg.in/yaml.v3"
)

const (
	FileName  = "tsmock"
	FileType  = "yaml"
	EnvPrefix = "TSMOCK"
)

type Config struct {
	Domain Domain `yaml:"domain" mapstructure:"domain"`
	Mock   Mock   `yaml:"mock" mapstructure:"mock"`
	Test   Test   `yaml:"test" mapstructure:"test"`
	Watch  Watch  `yaml:"watch" mapstructure:"watch"`
}

type Domain struct {
	Root         string   `yaml:"root" mapstructure:"root"`
	ImportPrefix string   `yaml:"import_prefix" mapstructure:"import_prefix"`
	Alias        string   `yaml:"alias" mapstructure:"alias"`
	AliasRoot    string   `yaml:"alias_root" mapstructure:"alias_root"`
	Extensions   []string `yaml:"extensions" mapstructure:"extensions"`
}

type Mock struct {
	Suffix              string `yaml:"suffix" mapstructure:"suffix"`
	Function            string `yaml:"function" mapstructure:"function"`
	PublicType          string `yaml:"public_type" mapstructure:"public_type"`
	Factory             string `yaml:"factory" mapstructure:"factory"`
	FactoryImport       string `yaml:"factory_import" mapstructure:"factory_import"`
	StreamType          string `yaml:"stream_type" mapstructure:"stream_type"`
	StreamImport        string `yaml:"stream_import" mapstructure:"stream_import"`
	OfferingBase        string `yaml:"offering_base" mapstructure:"offering_base"`
	OfferingMockImport  string `yaml:"offering_mock_import" mapstructure:"offering_mock_import"`
	OfferingTypesImport string `yaml:"offering_types_import" mapstructure:"offering_types_import"`
}

type Test struct {
	Suffix    string `yaml:"suffix" mapstructure:"suffix"`
	Directive string `yaml:"directive" mapstructure:"directive"`
}

type Watch struct {
	Exclude    []string `yaml:"exclude" mapstructure:"exclude"`
	DebounceMs int      `yaml:"debounce_ms" mapstructure:"debounce_ms"`
}

func Default() *Config {
	return &Config{
		Domain: Domain{
			Root:         "domain",
			ImportPrefix: "@sdv/domain",
			Alias:        "@sdv",
			AliasRoot:    ".",
			Extensions:   []string{".ts", ".tsx"},
		},
		Mock: Mock{
			Suffix:              ".mock",
			Function:            "jest.fn",
			PublicType:          "Public",
			Factory:             "mockFunctionWithReturnValueRecreatingOnEachTest",
			StreamType:          "ReplaySubject",
			StreamImport:        "rxjs",
			OfferingBase:        "Offering",
			OfferingMockImport:  "@sdv/commons/offering/index.mock",
			OfferingTypesImport: "@sdv/commons/offering",
		},
		Test: Test{
			Suffix:    ".test",
			Directive: "jest.useExtendedMock",
		},
		Watch: Watch{
			Exclude:    []string{".git", "node_modules", "dist", "build"},
			DebounceMs: 500,
		},
	}
}

func SetDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("domain.root", d.Domain.Root)
	v.SetDefault("domain.import_prefix", d.Domain.ImportPrefix)
	v.SetDefault("domain.alias", d.Domain.Alias)
	v.SetDefault("domain.alias_root", d.Domain.AliasRoot)
	v.SetDefault("domain.extensions", d.Domain.Extensions)

	v.SetDefault("mock.suffix", d.Mock.Suffix)
	v.SetDefault("mock.function", d.Mock.Function)
	v.SetDefault("mock.public_type", d.Mock.PublicType)
	v.SetDefault("mock.factory", d.Mock.Factory)
	v.SetDefault("mock.factory_import", d.Mock.FactoryImport)
	v.SetDefault("mock.stream_type", d.Mock.StreamType)
	v.SetDefault("mock.stream_import", d.Mock.StreamImport)
	v.SetDefault("mock.offering_base", d.Mock.OfferingBase)
	v.SetDefault("mock.offering_mock_import", d.Mock.OfferingMockImport)
	v.SetDefault("mock.offering_types_import", d.Mock.OfferingTypesImport)

	v.SetDefault("test.suffix", d.Test.Suffix)
	v.SetDefault("test.directive", d.Test.Directive)

	v.SetDefault("watch.exclude", d.Watch.Exclude)
	v.SetDefault("watch.debounce_ms", d.Watch.DebounceMs)
}

// Load reads tsmock.yaml from the working directory, falling back to defaults.
func Load() (*Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, errors.Wrap(err, "cannot determine working dir")
	}
	return LoadFrom(afero.NewOsFs(), wd, "")
}

// LoadFrom reads configuration from file if set, otherwise searches dir, then
// the project root above dir. Environment variables override file values.
func LoadFrom(fs afero.Fs, dir, file string) (*Config, error) {
	v := viper.New()
	v.SetFs(fs)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	SetDefaults(v)

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName(FileName)
		v.SetConfigType(FileType)
		v.AddConfigPath(dir)
		if root, ok := FindProjectRoot(fs, dir, Default().Domain.Root); ok && root != dir {
			v.AddConfigPath(root)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return nil, errors.Wrapf(err, "failed to read config file")
		}
		logger.Debug("No config file found, using default config")
	} else {
		logger.Debug("Config file found: %s", v.ConfigFileUsed())
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logger.Debug("Config: %+v", cfg)

	return &cfg, nil
}

func (c *Config) Validate() error {
	var problems []string
	if c.Domain.Root == "" {
		problems = append(problems, "domain.root is empty")
	}
	if c.Domain.Alias == "" {
		problems = append(problems, "domain.alias is empty")
	}
	if len(c.Domain.Extensions) == 0 {
		problems = append(problems, "domain.extensions is empty")
	}
	if c.Mock.Suffix == "" || c.Test.Suffix == "" {
		problems = append(problems, "companion suffixes must be set")
	}
	if len(problems) == 0 {
		return nil
	}
	return errors.WithHint(
		errors.Wrapf(models.ErrConfig, "%s", strings.Join(problems, "; ")),
		"run `tsmock init` to write a config with every key populated",
	)
}

func (c *Config) Marshal() ([]byte, error) {
	out, err := yaml.Marshal(c)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal config")
	}
	return out, nil
}

// FindProjectRoot returns the directory holding the marker directory. A start
// inside the marker tree anchors on the first occurrence of marker in its
// path, so nested directories that happen to share the marker's name are not
// mistaken for the root. Otherwise the nearest ancestor containing marker
// wins.
func FindProjectRoot(fs afero.Fs, start, marker string) (string, bool) {
	dir := filepath.Clean(start)
	if root, ok := anchorOnMarker(fs, dir, marker); ok {
		return root, true
	}
	for {
		if ok, _ := afero.DirExists(fs, filepath.Join(dir, marker)); ok {
			return dir, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

func anchorOnMarker(fs afero.Fs, dir, marker string) (string, bool) {
	parts := strings.Split(filepath.ToSlash(dir), "/")
	want := strings.Split(strings.Trim(filepath.ToSlash(filepath.Clean(marker)), "/"), "/")
	for i := 0; i+len(want) <= len(parts); i++ {
		if !segmentsEqual(parts[i:i+len(want)], want) {
			continue
		}
		root := strings.Join(parts[:i], "/")
		if root == "" {
			root = "/"
		}
		root = filepath.FromSlash(root)
		if ok, _ := afero.DirExists(fs, filepath.Join(root, marker)); ok {
			return root, true
		}
	}
	return "", false
}

func segmentsEqual(a, b []string) bool {
	for i := range b {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
