package packet

import "fmt"

// Address identifies a logical endpoint on the link. It is used as the
// packet source and as the block destination.
type Address uint8

const (
	GroundStation Address = 0x0
	Rocket        Address = 0x1
	Multicast     Address = 0xF // any listener
)

var addressNames = map[Address]string{
	GroundStation: "groundstation",
	Rocket:        "rocket",
	Multicast:     "multicast",
}

func (a Address) Valid() bool {
	_, ok := addressNames[a]
	return ok
}

func (a Address) String() string {
	if name, ok := addressNames[a]; ok {
		return name
	}
	return fmt.Sprintf("address(0x%X)", uint8(a))
}

// ParseAddress maps a configuration name back to an Address.
func ParseAddress(name string) (Address, error) {
	for a, n := range addressNames {
		if n == name {
			return a, nil
		}
	}
	return 0, fmt.Errorf("unknown device address %q", name)
}

// BlockType is the first level of block classification.
type BlockType uint8

const (
	TypeControl BlockType = 0x0
	TypeCommand BlockType = 0x1
	TypeData    BlockType = 0x2
)

func (t BlockType) String() string {
	switch t {
	case TypeControl:
		return "control"
	case TypeCommand:
		return "command"
	case TypeData:
		return "data"
	default:
		return fmt.Sprintf("type(0x%X)", uint8(t))
	}
}

// Subtype is interpreted relative to the enclosing BlockType. The same
// numeric value means different things under different types.
type Subtype uint8

// Control subtypes.
const (
	CtrlSignalReport   Subtype = 0x0
	CtrlCommandAck     Subtype = 0x1
	CtrlNonceRequest   Subtype = 0x2
	CtrlNonce          Subtype = 0x3
	CtrlBeacon         Subtype = 0x4
	CtrlBeaconResponse Subtype = 0x5
)

// Command subtypes.
const (
	CmdResetAvionics    Subtype = 0x0
	CmdTelemetryRequest Subtype = 0x1
	CmdDeployChute      Subtype = 0x2
	CmdTareSensors      Subtype = 0x3
)

// Data subtypes.
const (
	DataDebugMessage    Subtype = 0x0
	DataStatus          Subtype = 0x1
	DataStartupMessage  Subtype = 0x2
	DataAltitude        Subtype = 0x3
	DataAcceleration    Subtype = 0x4
	DataAngularVelocity Subtype = 0x5
	DataGNSSLocation    Subtype = 0x6
	DataGNSSMetadata    Subtype = 0x7
	DataPowerInfo       Subtype = 0x8
	DataTemperature     Subtype = 0x9
	DataMPU9250IMU      Subtype = 0xA
	DataKX134Accel      Subtype = 0xB
	DataPressure        Subtype = 0xC
	DataHumidity        Subtype = 0xD
	DataAltitudeSea     Subtype = 0xE
)

var subtypeNames = map[BlockType]map[Subtype]string{
	TypeControl: {
		CtrlSignalReport:   "signal_report",
		CtrlCommandAck:     "command_ack",
		CtrlNonceRequest:   "nonce_request",
		CtrlNonce:          "nonce",
		CtrlBeacon:         "beacon",
		CtrlBeaconResponse: "beacon_response",
	},
	TypeCommand: {
		CmdResetAvionics:    "reset_avionics",
		CmdTelemetryRequest: "telemetry_request",
		CmdDeployChute:      "deploy_chute",
		CmdTareSensors:      "tare_sensors",
	},
	TypeData: {
		DataDebugMessage:    "debug_message",
		DataStatus:          "status",
		DataStartupMessage:  "startup_message",
		DataAltitude:        "altitude",
		DataAcceleration:    "acceleration",
		DataAngularVelocity: "angular_velocity",
		DataGNSSLocation:    "gnss_location",
		DataGNSSMetadata:    "gnss_metadata",
		DataPowerInfo:       "power_info",
		DataTemperature:     "temperature",
		DataMPU9250IMU:      "mpu9250_imu",
		DataKX134Accel:      "kx134_accel",
		DataPressure:        "pressure",
		DataHumidity:        "humidity",
		DataAltitudeSea:     "altitude_sea",
	},
}

// ValidSubtype reports whether s is defined within the namespace of t.
func ValidSubtype(t BlockType, s Subtype) bool {
	names, ok := subtypeNames[t]
	if !ok {
		return false
	}
	_, ok = names[s]
	return ok
}

// SubtypeName renders a subtype in the namespace of its type.
func SubtypeName(t BlockType, s Subtype) string {
	if name, ok := subtypeNames[t][s]; ok {
		return name
	}
	return fmt.Sprintf("subtype(0x%X)", uint8(s))
}
