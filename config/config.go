package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"downlink/packet"
)

// DefaultPath is where the commands look for configuration.
const DefaultPath = "config.toml"

// Config holds all application configuration
type Config struct {
	Station   StationConfig   `toml:"station"`
	Packet    PacketConfig    `toml:"packet"`
	Input     InputConfig     `toml:"input"`
	Interface InterfaceConfig `toml:"interface"`
	Map       MapConfig       `toml:"map"`
	Track     TrackConfig     `toml:"track"`
	Store     StoreConfig     `toml:"store"`
	IGate     IGateConfig     `toml:"igate"`
	Metrics   MetricsConfig   `toml:"metrics"`
	Logging   LoggingConfig   `toml:"logging"`
}

// StationConfig holds settings specific to the user's station
type StationConfig struct {
	Callsign   string `toml:"callsign"`
	GridSquare string `toml:"gridsquare"` // initial map centre for the monitor
}

// PacketConfig controls the packets the encoder builds.
type PacketConfig struct {
	Version          uint8  `toml:"version"`
	Source           string `toml:"source"`
	Destination      string `toml:"destination"`
	FirstSeq         uint16 `toml:"first_seq"`
	ConservativeFill bool   `toml:"conservative_fill"`
}

// InputConfig selects where sensor records come from. Path "-" is stdin.
type InputConfig struct {
	Path string   `toml:"path"`
	Wait Duration `toml:"wait"`
}

// InterfaceConfig describes the radio link.
type InterfaceConfig struct {
	Type        string   `toml:"type"`   // "kiss" or "stdout"
	Device      string   `toml:"device"` // host:port for TCP, else a serial device
	Baud        int      `toml:"baud"`
	ReadTimeout Duration `toml:"read_timeout"`
	Port        uint8    `toml:"port"` // KISS port nibble

	AX25     bool     `toml:"ax25"`      // wrap packets in AX.25 UI frames
	AX25Dest string   `toml:"ax25_dest"` // e.g. "APZ001"
	AX25Path []string `toml:"ax25_path"`
}

// MapConfig holds map-specific settings
type MapConfig struct {
	DefaultZoom float64 `toml:"defaultzoom"`
	Shapefile   string  `toml:"shapefile"` // base layer, optional
}

// TrackConfig enables GNSS track export when Path is set.
type TrackConfig struct {
	Path string `toml:"path"`
}

// StoreConfig enables the received-packet log when Path is set.
type StoreConfig struct {
	Path string `toml:"path"`
}

// IGateConfig uploads heard GNSS fixes and status text to APRS-IS when
// Enabled. The station callsign is the login.
type IGateConfig struct {
	Enabled  bool     `toml:"enabled"`
	Server   string   `toml:"server"`
	Passcode int      `toml:"passcode"`
	Interval Duration `toml:"interval"` // minimum time between positions per callsign
	Comment  string   `toml:"comment"`
}

// MetricsConfig serves Prometheus metrics when Listen is set.
type MetricsConfig struct {
	Listen string `toml:"listen"`
}

type LoggingConfig struct {
	Debug bool   `toml:"debug"`
	File  string `toml:"file"`
}

// Duration reads TOML strings such as "250ms".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Default returns the configuration used for keys a file leaves out.
func Default() Config {
	return Config{
		Packet: PacketConfig{
			Version:     1,
			Source:      "rocket",
			Destination: "multicast",
		},
		Input: InputConfig{
			Path: "-",
			Wait: Duration{time.Second},
		},
		Interface: InterfaceConfig{
			Type:        "kiss",
			Baud:        9600,
			ReadTimeout: Duration{time.Second},
			AX25Dest:    "APZ001",
		},
		Map: MapConfig{DefaultZoom: 1},
		IGate: IGateConfig{
			Server:   "rotate.aprs.net:14580",
			Interval: Duration{30 * time.Second},
		},
	}
}

// Load reads the configuration at path over the defaults and validates it.
// Unknown keys are an error so that typos do not go unnoticed.
func Load(path string) (Config, error) {
	conf := Default()
	meta, err := toml.DecodeFile(path, &conf)
	if err != nil {
		return conf, fmt.Errorf("read %s: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return conf, fmt.Errorf("%s: unknown keys %s", path, strings.Join(keys, ", "))
	}
	if err := conf.Validate(); err != nil {
		return conf, fmt.Errorf("%s: %w", path, err)
	}
	return conf, nil
}

// Validate checks values that would otherwise fail deep inside the
// encoder or the link.
func (c *Config) Validate() error {
	var errs []error
	if n := len(c.Station.Callsign); n == 0 || n > packet.CallsignSize {
		errs = append(errs, fmt.Errorf("station.callsign %q must be 1 to %d characters", c.Station.Callsign, packet.CallsignSize))
	}
	if c.Packet.Version > packet.MaxVersion {
		errs = append(errs, fmt.Errorf("packet.version %d is above %d", c.Packet.Version, packet.MaxVersion))
	}
	if c.Packet.FirstSeq > packet.MaxSeq {
		errs = append(errs, fmt.Errorf("packet.first_seq %d is above %d", c.Packet.FirstSeq, packet.MaxSeq))
	}
	if _, _, err := c.Packet.Addresses(); err != nil {
		errs = append(errs, err)
	}
	switch strings.ToLower(c.Interface.Type) {
	case "kiss":
		if c.Interface.Device == "" {
			errs = append(errs, errors.New("interface.device is required for kiss"))
		}
		if c.Interface.Baud <= 0 {
			errs = append(errs, fmt.Errorf("interface.baud %d must be positive", c.Interface.Baud))
		}
		if c.Interface.Port > 0x0F {
			errs = append(errs, fmt.Errorf("interface.port %d is above 15", c.Interface.Port))
		}
	case "stdout":
	default:
		errs = append(errs, fmt.Errorf("unknown interface.type %q", c.Interface.Type))
	}
	if c.IGate.Enabled && c.IGate.Server == "" {
		errs = append(errs, errors.New("igate.server is required when the igate is enabled"))
	}
	if c.Input.Wait.Duration <= 0 {
		errs = append(errs, fmt.Errorf("input.wait %s must be positive", c.Input.Wait.Duration))
	}
	return errors.Join(errs...)
}

// Addresses resolves the configured source and destination names.
func (p PacketConfig) Addresses() (src, dest packet.Address, err error) {
	if src, err = packet.ParseAddress(p.Source); err != nil {
		return 0, 0, fmt.Errorf("packet.source: %w", err)
	}
	if dest, err = packet.ParseAddress(p.Destination); err != nil {
		return 0, 0, fmt.Errorf("packet.destination: %w", err)
	}
	return src, dest, nil
}
