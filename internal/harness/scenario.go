package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Defaults applied to optional scenario fields.
const (
	DefaultHost        = "localhost"
	DefaultRepetitions = 5
	DefaultThreshold   = 0.1
	DefaultSettleDelay = 2 * time.Second
	DefaultTimeout     = 2 * time.Minute
)

// DefaultPorts are the two transport ports used when a scenario does not
// pick its own. Concurrent flows always use distinct ports.
var DefaultPorts = [2]int{12345, 12346}

// Duration wraps time.Duration so scenario YAML can say "2s" or "1m30s".
type Duration time.Duration

// UnmarshalYAML parses a Go duration string.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	if parsed < 0 {
		return fmt.Errorf("duration must not be negative: %q", raw)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML renders the duration back as a string.
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// SUTConfig names the sender and receiver command lines of the system under
// test. Each is a free-form command prefix (parsed with shlex, so wrappers
// like "valgrind ./sender" work); the harness appends the positional
// arguments the SUT contract defines.
type SUTConfig struct {
	// Sender is the sender command line. Positional args appended at spawn:
	// <host> <port> <fixture> <sizeBytes>.
	Sender string `yaml:"sender"`

	// Receiver is the receiver command line. Positional args appended at
	// spawn: <port> <outputPath> and, for handshake probes, an initial
	// offset of "0".
	Receiver string `yaml:"receiver"`
}

// Scenario describes one conformance/performance test case: a read-only
// fixture file and the parameters governing how trials against it run.
// Scenarios are immutable once loaded.
type Scenario struct {
	// Name uniquely identifies this scenario.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Fixture is the path of the input file the sender transmits.
	// Relative paths are resolved against the scenario file's directory.
	Fixture string `yaml:"fixture"`

	// SUT holds the sender/receiver command lines.
	SUT SUTConfig `yaml:"sut"`

	// Host the sender connects to. Defaults to localhost.
	Host string `yaml:"host,omitempty"`

	// Ports are the two transport ports used for trials. Single-flow checks
	// use Ports[0]; concurrent fairness flows use both.
	Ports []int `yaml:"ports,omitempty"`

	// Repetitions is how many independent concurrent-pair trials the
	// fairness check runs. Each repetition is judged on its own.
	Repetitions int `yaml:"repetitions,omitempty"`

	// Threshold is the convergence threshold θ: every fairness ratio must
	// satisfy 1-θ <= ratio <= 1+θ.
	Threshold float64 `yaml:"threshold,omitempty"`

	// SettleDelay is the wait between starting the first and second endpoint
	// when probing startup-order independence.
	SettleDelay Duration `yaml:"settle_delay,omitempty"`

	// Timeout bounds one trial's wall clock. When it expires both SUT
	// processes are killed and the trial fails with a timeout error.
	Timeout Duration `yaml:"timeout,omitempty"`

	// ArtifactDir is where receive artifacts are created. Defaults to the
	// OS temp directory. Every trial gets a uniquely named artifact so
	// concurrent trials never share an output path.
	ArtifactDir string `yaml:"artifact_dir,omitempty"`
}

// FixtureSize returns the fixture's byte length. The size is also passed to
// the sender as its declared-size positional argument.
func (s *Scenario) FixtureSize() (int64, error) {
	info, err := os.Stat(s.Fixture)
	if err != nil {
		return 0, fmt.Errorf("stat fixture: %w", err)
	}
	return info.Size(), nil
}

// LoadScenario reads, schema-checks, and parses a scenario YAML file.
// Relative fixture and artifact paths are resolved against the scenario
// file's directory.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// CUE schema first: structural errors with positions beat yaml's.
	if err := validateSchema(path, data); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	// Strict decoding still runs; KnownFields catches drift between the CUE
	// schema and the struct tags.
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	base := filepath.Dir(path)
	if scenario.Fixture != "" && !filepath.IsAbs(scenario.Fixture) {
		scenario.Fixture = filepath.Join(base, scenario.Fixture)
	}
	if scenario.ArtifactDir != "" && !filepath.IsAbs(scenario.ArtifactDir) {
		scenario.ArtifactDir = filepath.Join(base, scenario.ArtifactDir)
	}

	scenario.applyDefaults()

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// applyDefaults fills optional fields with reference values.
func (s *Scenario) applyDefaults() {
	if s.Host == "" {
		s.Host = DefaultHost
	}
	if len(s.Ports) == 0 {
		s.Ports = []int{DefaultPorts[0], DefaultPorts[1]}
	}
	if s.Repetitions == 0 {
		s.Repetitions = DefaultRepetitions
	}
	if s.Threshold == 0 {
		s.Threshold = DefaultThreshold
	}
	if s.SettleDelay == 0 {
		s.SettleDelay = Duration(DefaultSettleDelay)
	}
	if s.Timeout == 0 {
		s.Timeout = Duration(DefaultTimeout)
	}
	if s.ArtifactDir == "" {
		s.ArtifactDir = os.TempDir()
	}
}

// validateScenario checks semantic constraints the schema cannot express.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if s.Fixture == "" {
		return fmt.Errorf("fixture is required")
	}
	if _, err := os.Stat(s.Fixture); os.IsNotExist(err) {
		return fmt.Errorf("fixture file not found: %s", s.Fixture)
	}
	if s.SUT.Sender == "" {
		return fmt.Errorf("sut.sender is required")
	}
	if s.SUT.Receiver == "" {
		return fmt.Errorf("sut.receiver is required")
	}
	if len(s.Ports) != 2 {
		return fmt.Errorf("ports must list exactly two ports, got %d", len(s.Ports))
	}
	if s.Ports[0] == s.Ports[1] {
		return fmt.Errorf("ports must be distinct: concurrent flows may never share a port")
	}
	for i, p := range s.Ports {
		if p < 1 || p > 65535 {
			return fmt.Errorf("ports[%d]: %d is out of range", i, p)
		}
	}
	if s.Repetitions < 1 {
		return fmt.Errorf("repetitions must be at least 1")
	}
	if s.Threshold <= 0 || s.Threshold >= 1 {
		return fmt.Errorf("threshold must be in (0, 1), got %g", s.Threshold)
	}
	return nil
}
