package config

import (
	"bytes"
	"os"
	"strings"
	"sync"
	"time"

	"emperror.dev/errors"
	"github.com/creasty/defaults"
	"gopkg.in/yaml.v2"
)

// DefaultLocation is set dynamically based on the platform
var DefaultLocation = GetDefaultConfigLocation()

var (
	mu            sync.RWMutex
	_config       *Configuration
	_debugViaFlag bool
)

// Locker specific to writing the configuration to the disk, this happens
// in areas that might already be locked, so we don't want to crash the process.
var _writeLock sync.Mutex

// ApiConfiguration defines the configuration for the management API.
type ApiConfiguration struct {
	// The interface that the webserver should bind to.
	Host string `default:"0.0.0.0" yaml:"host"`

	// The port that the webserver should bind to.
	Port int `default:"8080" yaml:"port"`

	// Docs controls whether the Swagger/OpenAPI documentation is served.
	Docs DocsConfiguration `yaml:"docs"`

	// SSL configuration for the webserver.
	Ssl struct {
		Enabled         bool   `json:"enabled" yaml:"enabled"`
		CertificateFile string `json:"cert" yaml:"cert"`
		KeyFile         string `json:"key" yaml:"key"`
	}

	// A list of IP address of proxies that may send a X-Forwarded-For header to set the true clients IP
	TrustedProxies []string `json:"trusted_proxies" yaml:"trusted_proxies"`
}

type DocsConfiguration struct {
	Enabled bool `default:"true" yaml:"enabled"`
}

// SystemConfiguration defines where the daemon keeps its files.
type SystemConfiguration struct {
	// The root directory where all of the data is stored, including the
	// module database.
	RootDirectory string `yaml:"root_directory"`

	// Directory where logs for the daemon are stored.
	LogDirectory string `yaml:"log_directory"`
}

// GeneratorConfiguration defines how module code is requested from the chat
// completion service.
type GeneratorConfiguration struct {
	// The chat completion endpoint.
	Endpoint string `default:"https://api.openai.com/v1/chat/completions" yaml:"endpoint"`

	// The API key sent as a bearer token. Supports environment variables and
	// the file:// prefix.
	ApiKey string `json:"-" yaml:"api_key"`

	// The model used for completions.
	Model string `default:"gpt-4o-2024-08-06" yaml:"model"`

	// The amount of time in seconds a single generation may take, including
	// retries. A generation that takes longer turns its module invalid.
	Timeout int `default:"300" yaml:"timeout"`

	// The number of times a failed request is retried.
	MaxRetries uint64 `default:"3" yaml:"max_retries"`

	// Limits the number of requests sent per second. Zero means no limit.
	RequestsPerSecond float64 `default:"0" yaml:"requests_per_second"`
}

// ModulesConfiguration defines how modules are managed.
type ModulesConfiguration struct {
	// The number of consecutive automatic fix attempts made on an invalid
	// module.
	MaxFixAttempts int `default:"2" yaml:"max_fix_attempts"`

	// The interval in seconds between automatic fix passes. Zero disables
	// automatic fixing.
	AutoFixInterval int `default:"0" yaml:"auto_fix_interval"`

	// The number of modules regenerated at the same time when a change
	// cascades. Zero means all of them.
	CascadeLimit int `default:"0" yaml:"cascade_limit"`

	// The number of workers used to build modules when they are loaded.
	LoadWorkers int `default:"4" yaml:"load_workers"`

	// The number of output lines kept for every module.
	OutputLines int `default:"200" yaml:"output_lines"`
}

type Configuration struct {
	// The location from which this configuration instance was instantiated.
	path string

	// Determines if the daemon should be running in debug mode. This value is
	// ignored if the debug flag is passed through the command line arguments.
	Debug bool

	AppName string `default:"Pub" json:"app_name" yaml:"app_name"`

	// The token used to authorize requests to the API. Supports environment
	// variables and the file:// prefix.
	AuthenticationToken string `json:"-" yaml:"token"`

	Api       ApiConfiguration       `json:"api" yaml:"api"`
	System    SystemConfiguration    `json:"system" yaml:"system"`
	Generator GeneratorConfiguration `json:"generator" yaml:"generator"`
	Modules   ModulesConfiguration   `json:"modules" yaml:"modules"`

	// AllowedOrigins is a list of allowed request origins.
	AllowedOrigins []string `json:"allowed_origins" yaml:"allowed_origins"`
}

// NewAtPath creates a new struct and set the path where it should be stored.
// This function does not modify the currently stored global configuration.
func NewAtPath(path string) (*Configuration, error) {
	var c Configuration
	// Configures the default values for many of the configuration options present
	// in the structs. Values set in the configuration file take priority over the
	// default values.
	if err := defaults.Set(&c); err != nil {
		return nil, err
	}
	applyPlatformDefaults(&c)
	c.path = path
	return &c, nil
}

func applyPlatformDefaults(c *Configuration) {
	if c.System.RootDirectory == "" {
		c.System.RootDirectory = GetDefaultRootDirectory()
	}
	if c.System.LogDirectory == "" {
		c.System.LogDirectory = GetDefaultLogDirectory()
	}
}

// Set the global configuration instance. This is a blocking operation such that
// anything trying to set a different configuration value, or read the configuration
// will be paused until it is complete.
func Set(c *Configuration) {
	mu.Lock()
	defer mu.Unlock()
	_config = c
}

// SetDebugViaFlag tracks if the application is running in debug mode because of
// a command line flag argument. If so we do not want to store that configuration
// change to the disk.
func SetDebugViaFlag(d bool) {
	mu.Lock()
	defer mu.Unlock()
	_config.Debug = d
	_debugViaFlag = d
}

// Get returns the global configuration instance. This is a thread-safe operation
// that will block if the configuration is presently being modified.
//
// Be aware that you CANNOT make modifications to the currently stored configuration
// by modifying the struct returned by this function. The only way to make
// modifications is by using the Update() function and passing data through in
// the callback.
func Get() *Configuration {
	mu.RLock()
	// Create a copy of the struct so that all modifications made beyond this
	// point are immutable.
	//goland:noinspection GoVetCopyLock
	c := *_config
	mu.RUnlock()
	return &c
}

// Update performs an in-situ update of the global configuration object using
// a thread-safe mutex lock. This is the correct way to make modifications to
// the global configuration.
func Update(callback func(c *Configuration)) {
	mu.Lock()
	defer mu.Unlock()
	callback(_config)
}

// Path returns the file path where this configuration is stored.
func (c *Configuration) Path() string {
	return c.path
}

// GenerationTimeout returns the generator timeout as a duration.
func (c *GeneratorConfiguration) GenerationTimeout() time.Duration {
	return time.Duration(c.Timeout) * time.Second
}

// FixInterval returns the automatic fix interval as a duration.
func (c *ModulesConfiguration) FixInterval() time.Duration {
	return time.Duration(c.AutoFixInterval) * time.Second
}

// WriteToDisk writes the configuration to the disk. This is a thread safe operation
// and will only allow one write at a time. Additional calls while writing are
// queued up.
func WriteToDisk(c *Configuration) error {
	_writeLock.Lock()
	defer _writeLock.Unlock()

	//goland:noinspection GoVetCopyLock
	ccopy := *c
	// If debugging is set with the flag, don't save that to the configuration file,
	// otherwise you'll always end up in debug mode.
	if _debugViaFlag {
		ccopy.Debug = false
	}
	if c.path == "" {
		return errors.New("cannot write configuration, no path defined in struct")
	}
	b, err := yaml.Marshal(&ccopy)
	if err != nil {
		return err
	}
	if err := os.WriteFile(c.path, b, 0o600); err != nil {
		return err
	}
	return nil
}

// Load reads the configuration from the provided file without touching the
// global configuration. Secrets are expanded.
func Load(path string) (*Configuration, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	c, err := NewAtPath(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, errors.Wrap(err, "config: failed to parse configuration file")
	}

	if token := os.Getenv("PUB_TOKEN"); token != "" {
		c.AuthenticationToken = token
	}
	if key := os.Getenv("PUB_API_KEY"); key != "" {
		c.Generator.ApiKey = key
	}
	if c.AuthenticationToken, err = Expand(c.AuthenticationToken); err != nil {
		return nil, err
	}
	if c.Generator.ApiKey, err = Expand(c.Generator.ApiKey); err != nil {
		return nil, err
	}
	return c, nil
}

// FromFile reads the configuration from the provided file and stores it in the
// global singleton for this instance.
func FromFile(path string) error {
	c, err := Load(path)
	if err != nil {
		return err
	}
	// Store this configuration in the global state.
	Set(c)
	return nil
}

// ConfigureDirectories ensures that the system directories exist. They are
// created so that only the owner can read the data.
func ConfigureDirectories() error {
	c := Get()
	for _, dir := range []string{c.System.RootDirectory, c.System.LogDirectory} {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return errors.Wrapf(err, "config: failed to create directory %s", dir)
		}
	}
	return nil
}

// Expand expands an input string by calling [os.ExpandEnv] to expand all
// environment variables, then checks if the value is prefixed with `file://`
// to support reading the value from a file.
//
// NOTE: the order of expanding environment variables first then checking if
// the value references a file is important. This behaviour allows a user to
// pass a value like `file://${CREDENTIALS_DIRECTORY}/token` to allow us to
// work with credentials loaded by systemd's `LoadCredential` (or `LoadCredentialEncrypted`)
// options without the user needing to assume the path of `CREDENTIALS_DIRECTORY`
// or use a preStart script to read the files for us.
func Expand(v string) (string, error) {
	v = os.ExpandEnv(v)

	// Handle files.
	const filePrefix = "file://"
	if strings.HasPrefix(v, filePrefix) {
		p := v[len(filePrefix):]

		b, err := os.ReadFile(p)
		if err != nil {
			return "", errors.Wrap(err, "config: failed to read secret file")
		}
		v = string(bytes.TrimRight(bytes.TrimRight(b, "\r"), "\n"))
	}

	return v, nil
}
