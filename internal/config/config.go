package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// PIDConfig holds the controller gains and loop timing.
type PIDConfig struct {
	Kp            float64 `yaml:"kp"`
	Ki            float64 `yaml:"ki"`
	Kd            float64 `yaml:"kd"`
	IntegralLimit float64 `yaml:"integral_limit"`
	IntervalMs    int     `yaml:"interval_ms"` // control period (e.g. 20 = 50Hz)
	// ErrorSign flips the sign of the angle error fed to the controller.
	// The correct sign depends on motor orientation and is a calibration
	// parameter (+1 or -1), not an invariant.
	ErrorSign int `yaml:"error_sign"`
}

// MotorConfig describes the throttle range and ESC wiring.
type MotorConfig struct {
	BaseThrottle  int   `yaml:"base_throttle"`
	ThrottleMin   int   `yaml:"throttle_min"`
	ThrottleMax   int   `yaml:"throttle_max"`
	Pins          []int `yaml:"pins"`            // one PWM pin per channel
	ArmCount      int   `yaml:"arm_count"`       // zero-throttle commands in the arm burst
	ArmIntervalMs int   `yaml:"arm_interval_ms"` // spacing of the arm burst
}

// EncoderConfig holds the AS5600 settings.
// AxisCenter is the calibrated mechanical zero in encoder steps; recapture
// after any mechanical change.
type EncoderConfig struct {
	AxisCenter int `yaml:"axis_center"`
	I2CAddr    int `yaml:"i2c_addr"` // 0 = driver default (0x36)
}

// IMUConfig enables encoder+IMU fusion.
type IMUConfig struct {
	Enabled  bool `yaml:"enabled"`
	ReportHz int  `yaml:"report_hz"` // fused report rate; 2x the PID rate keeps data fresh
}

// PredictionConfig configures the IMU-lag corrector.
type PredictionConfig struct {
	LeadTimeMs int `yaml:"lead_time_ms"` // fusion filter group delay to cancel
}

// TelemetryConfig selects the sink and decimation.
type TelemetryConfig struct {
	SampleEvery int    `yaml:"sample_every"` // 1=every cycle, N=every Nth
	Sink        string `yaml:"sink"`         // "console", "sd" or "serial"
	RootDir     string `yaml:"root_dir"`     // run directories root for the sd sink
	SerialPort  string `yaml:"serial_port"`
	SerialBaud  int    `yaml:"serial_baud"`
}

// PanelConfig assigns the operator button and LED pins (BCM numbering).
type PanelConfig struct {
	ButtonA  int `yaml:"button_a"` // go
	ButtonB  int `yaml:"button_b"` // arm/disarm combo half
	ButtonY  int `yaml:"button_y"` // arm/disarm combo half
	LEDRed   int `yaml:"led_red"`
	LEDGreen int `yaml:"led_green"`
	LEDBlue  int `yaml:"led_blue"`
}

// DefaultsConfig contains generic parameters.
type DefaultsConfig struct {
	DebugLevel int    `yaml:"debug_level"` // debug level 0-4 (0=off, 1=info, 2=live, 3=verbose, 4=trace)
	MockHW     bool   `yaml:"mock_hw"`     // use mock hardware (true=dev/test, false=real rig)
	I2CBus     string `yaml:"i2c_bus"`     // host I2C bus name, "" = first available
}

// Config aggregates all application configuration.
type Config struct {
	PID        PIDConfig        `yaml:"pid"`
	Motor      MotorConfig      `yaml:"motor"`
	Encoder    EncoderConfig    `yaml:"encoder"`
	IMU        IMUConfig        `yaml:"imu"`
	Prediction PredictionConfig `yaml:"prediction"`
	Telemetry  TelemetryConfig  `yaml:"telemetry"`
	Panel      PanelConfig      `yaml:"panel"`
	Defaults   DefaultsConfig   `yaml:"defaults"`
}

// Load reads a YAML file and returns the configuration.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal yaml: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks ranges and fills defaults in place.
func (c *Config) Validate() error {
	if c.PID.IntervalMs <= 0 {
		c.PID.IntervalMs = 20 // 50 Hz
	}
	if c.PID.IntegralLimit < 0 {
		return fmt.Errorf("pid.integral_limit must be >= 0, got %g", c.PID.IntegralLimit)
	}
	switch c.PID.ErrorSign {
	case 0:
		c.PID.ErrorSign = 1
	case 1, -1:
	default:
		return fmt.Errorf("pid.error_sign must be 1 or -1, got %d", c.PID.ErrorSign)
	}

	if c.Motor.ThrottleMin >= c.Motor.ThrottleMax {
		return fmt.Errorf("motor.throttle_min (%d) must be < throttle_max (%d)",
			c.Motor.ThrottleMin, c.Motor.ThrottleMax)
	}
	if c.Motor.BaseThrottle < c.Motor.ThrottleMin || c.Motor.BaseThrottle > c.Motor.ThrottleMax {
		return fmt.Errorf("motor.base_throttle (%d) must be within [%d, %d]",
			c.Motor.BaseThrottle, c.Motor.ThrottleMin, c.Motor.ThrottleMax)
	}
	if c.Motor.ArmCount <= 0 {
		c.Motor.ArmCount = 10
	}
	if c.Motor.ArmIntervalMs <= 0 {
		c.Motor.ArmIntervalMs = 20
	}

	if c.Encoder.AxisCenter < 0 || c.Encoder.AxisCenter > 4095 {
		return fmt.Errorf("encoder.axis_center must be in [0, 4095], got %d", c.Encoder.AxisCenter)
	}

	if c.IMU.ReportHz <= 0 {
		c.IMU.ReportHz = 100
	}
	if c.Prediction.LeadTimeMs < 0 {
		return fmt.Errorf("prediction.lead_time_ms must be >= 0, got %d", c.Prediction.LeadTimeMs)
	}
	if c.Prediction.LeadTimeMs == 0 {
		c.Prediction.LeadTimeMs = 60 // BNO08x fusion filter group delay
	}

	if c.Telemetry.SampleEvery <= 0 {
		c.Telemetry.SampleEvery = 10
	}
	switch c.Telemetry.Sink {
	case "":
		c.Telemetry.Sink = "console"
	case "console", "sd", "serial":
	default:
		return fmt.Errorf("telemetry.sink must be console, sd or serial, got %q", c.Telemetry.Sink)
	}
	if c.Telemetry.Sink == "sd" && c.Telemetry.RootDir == "" {
		c.Telemetry.RootDir = "blackbox"
	}
	if c.Telemetry.Sink == "serial" {
		if c.Telemetry.SerialPort == "" {
			return fmt.Errorf("telemetry.serial_port is required for the serial sink")
		}
		if c.Telemetry.SerialBaud <= 0 {
			c.Telemetry.SerialBaud = 115200
		}
	}

	return nil
}

// Interval returns the control loop period.
func (c *Config) Interval() time.Duration {
	return time.Duration(c.PID.IntervalMs) * time.Millisecond
}

// LeadTime returns the predictive correction lead time.
func (c *Config) LeadTime() time.Duration {
	return time.Duration(c.Prediction.LeadTimeMs) * time.Millisecond
}

// ArmInterval returns the spacing of the zero-throttle arm burst.
func (c *Config) ArmInterval() time.Duration {
	return time.Duration(c.Motor.ArmIntervalMs) * time.Millisecond
}

// SessionText renders the control-relevant configuration as YAML for
// persistence at the head of each telemetry session.
func (c *Config) SessionText() (string, error) {
	snapshot := struct {
		PID        PIDConfig        `yaml:"pid"`
		Motor      MotorConfig      `yaml:"motor"`
		Encoder    EncoderConfig    `yaml:"encoder"`
		IMU        IMUConfig        `yaml:"imu"`
		Prediction PredictionConfig `yaml:"prediction"`
		Telemetry  TelemetryConfig  `yaml:"telemetry"`
	}{c.PID, c.Motor, c.Encoder, c.IMU, c.Prediction, c.Telemetry}

	data, err := yaml.Marshal(snapshot)
	if err != nil {
		return "", fmt.Errorf("marshal session config: %w", err)
	}
	return "# BenchyGo run configuration\n" + string(data), nil
}
