package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"

	"github.com/cjeanneret/BenchyGo/internal/clock"
	"github.com/cjeanneret/BenchyGo/internal/config"
	"github.com/cjeanneret/BenchyGo/internal/debug"
	"github.com/cjeanneret/BenchyGo/internal/hw/encoder"
	"github.com/cjeanneret/BenchyGo/internal/hw/gpio"
	"github.com/cjeanneret/BenchyGo/internal/hw/i2c"
	"github.com/cjeanneret/BenchyGo/internal/hw/imu"
	"github.com/cjeanneret/BenchyGo/internal/hw/motor"
	"github.com/cjeanneret/BenchyGo/internal/hw/panel"
	"github.com/cjeanneret/BenchyGo/internal/hw/rtc"
	"github.com/cjeanneret/BenchyGo/internal/logic/flight"
	"github.com/cjeanneret/BenchyGo/internal/logic/mixer"
	"github.com/cjeanneret/BenchyGo/internal/logic/pid"
	"github.com/cjeanneret/BenchyGo/internal/logic/predict"
	"github.com/cjeanneret/BenchyGo/internal/telemetry"
	"github.com/cjeanneret/BenchyGo/internal/web"
)

func main() {
	// CLI flags
	webPort := &webPortFlag{defaultPort: 8080}
	flag.Var(webPort, "web", "start web monitor on port; -web= for default 8080, -web 8980 for custom port")
	cfgPath := flag.String("config", filepath.Join("configs", "default.yaml"), "path to config file")
	mockHW := flag.Bool("mock", false, "force mock hardware regardless of config")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Load configuration
	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("load config failed: %v", err)
	}
	if *mockHW {
		cfg.Defaults.MockHW = true
	}

	// Initialize debug system
	debug.Init(cfg.Defaults.DebugLevel)
	debug.Section("Initialization")
	debug.Value("Config path", *cfgPath)
	debug.Value("Debug level", cfg.Defaults.DebugLevel)
	debug.Value("Mock hardware", cfg.Defaults.MockHW)

	// Initialize GPIO driver
	debug.Step(1, "Initializing GPIO driver")
	gpioDriver, err := gpio.NewDriver(cfg.Defaults.MockHW)
	if err != nil {
		log.Fatalf("init GPIO failed: %v", err)
	}
	defer func() {
		if err := gpioDriver.Close(); err != nil {
			log.Printf("closing GPIO driver failed: %v", err)
		}
	}()

	// Initialize I2C bus and sensors
	debug.Step(2, "Initializing I2C sensors")
	bus, err := i2c.NewBus(cfg.Defaults.MockHW, cfg.Defaults.I2CBus)
	if err != nil {
		log.Fatalf("init I2C failed: %v", err)
	}
	defer func() {
		if err := bus.Close(); err != nil {
			log.Printf("closing I2C bus failed: %v", err)
		}
	}()

	encAddr := byte(cfg.Encoder.I2CAddr)
	if mb, ok := bus.(*i2c.MockBus); ok {
		seedMockSensors(mb, encAddr, cfg.Encoder.AxisCenter)
	}

	enc := encoder.New(bus, encAddr)
	if st, err := enc.ReadStatus(); err != nil {
		log.Fatalf("encoder status read failed: %v", err)
	} else if !st.MagnetDetected {
		log.Fatalf("encoder magnet not detected (AGC=%d, magnitude=%d)", st.AGC, st.Magnitude)
	}

	var imuDev imu.IMU
	var corrector *predict.Corrector
	if cfg.IMU.Enabled {
		if cfg.Defaults.MockHW {
			imuDev = &imu.Replay{}
		} else {
			imuDev = imu.NewBNO08x(bus, 0)
		}
		corrector = predict.New(cfg.LeadTime())
		debug.Value("IMU report rate", cfg.IMU.ReportHz)
		debug.Value("Prediction lead (ms)", cfg.Prediction.LeadTimeMs)
	}

	// Initialize motor transport
	debug.Step(3, "Initializing motor transport")
	motors, err := motor.NewGroup(cfg.Defaults.MockHW, cfg.Motor.Pins,
		cfg.Motor.ThrottleMin, cfg.Motor.ThrottleMax)
	if err != nil {
		log.Fatalf("init motors failed: %v", err)
	}
	debug.PrintStruct("Motor config", cfg.Motor)

	// Initialize operator panel
	debug.Step(4, "Initializing operator panel")
	port, err := panel.NewGPIOPanel(gpioDriver, panel.Pins{
		ButtonA:  cfg.Panel.ButtonA,
		ButtonB:  cfg.Panel.ButtonB,
		ButtonY:  cfg.Panel.ButtonY,
		LEDRed:   cfg.Panel.LEDRed,
		LEDGreen: cfg.Panel.LEDGreen,
		LEDBlue:  cfg.Panel.LEDBlue,
	})
	if err != nil {
		log.Fatalf("init panel failed: %v", err)
	}

	// Build the control core
	debug.Step(5, "Building control core")
	controller := pid.New(cfg.PID.Kp, cfg.PID.Ki, cfg.PID.Kd, cfg.PID.IntegralLimit)
	mix := mixer.New(cfg.Motor.BaseThrottle, cfg.Motor.ThrottleMin, cfg.Motor.ThrottleMax)
	debug.PrintStruct("PID config", cfg.PID)

	sessionText, err := cfg.SessionText()
	if err != nil {
		log.Fatalf("render session config failed: %v", err)
	}

	var broadcaster *web.Broadcaster
	if webPort.port() > 0 {
		broadcaster = web.NewBroadcaster()
		debug.SetOutput(io.MultiWriter(os.Stdout, web.BroadcastWriter(broadcaster)))
	}

	newSession, err := sessionFactory(cfg, bus, broadcaster)
	if err != nil {
		log.Fatalf("configure telemetry failed: %v", err)
	}

	machine := flight.New(
		flight.Params{
			Interval:      cfg.Interval(),
			AxisCenter:    cfg.Encoder.AxisCenter,
			ErrorSign:     cfg.PID.ErrorSign,
			ThrottleMin:   cfg.Motor.ThrottleMin,
			ArmCount:      cfg.Motor.ArmCount,
			ArmInterval:   cfg.ArmInterval(),
			IMUReportHz:   cfg.IMU.ReportHz,
			SessionConfig: sessionText,
		},
		port, motors, enc, imuDev, controller, mix, corrector,
		clock.NewMonotonic(), newSession,
	)

	if broadcaster != nil {
		srv := web.NewServer(fmt.Sprintf(":%d", webPort.port()), broadcaster,
			func() string { return machine.State().String() },
			web.RigInfo{
				IMUEnabled:  cfg.IMU.Enabled,
				IntervalMs:  cfg.PID.IntervalMs,
				SampleEvery: cfg.Telemetry.SampleEvery,
				Kp:          cfg.PID.Kp, Ki: cfg.PID.Ki, Kd: cfg.PID.Kd,
			})
		go func() {
			if err := srv.Run(ctx); err != nil {
				log.Printf("web server: %v", err)
			}
		}()
	}

	debug.Section("Flight Sessions")
	if err := machine.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("flight aborted: %v", err)
	}
	debug.Section("Shutdown")
}

// sessionFactory builds the telemetry session constructor for the configured
// sink. Each call opens a fresh sink so sd sessions land in their own
// directory and serial ports reopen cleanly after a fault.
func sessionFactory(cfg *config.Config, bus i2c.Bus, broadcaster *web.Broadcaster) (flight.SessionFactory, error) {
	schema := telemetry.SchemaEncoder
	if cfg.IMU.Enabled {
		schema = telemetry.SchemaFused
	}

	var open func() (telemetry.Sink, error)
	switch cfg.Telemetry.Sink {
	case "console":
		open = func() (telemetry.Sink, error) {
			return &telemetry.ConsoleSink{W: os.Stdout}, nil
		}
	case "sd":
		var clk rtc.Clock = rtc.System{}
		if !cfg.Defaults.MockHW {
			clk = rtc.New(bus, 0)
		}
		root := cfg.Telemetry.RootDir
		open = func() (telemetry.Sink, error) {
			return telemetry.NewSessionSink(root, clk, nil)
		}
	case "serial":
		open = func() (telemetry.Sink, error) {
			return telemetry.NewSerialSink(cfg.Telemetry.SerialPort, cfg.Telemetry.SerialBaud)
		}
	default:
		return nil, fmt.Errorf("unsupported telemetry sink: %s", cfg.Telemetry.Sink)
	}

	sampleEvery := cfg.Telemetry.SampleEvery
	return func() (*telemetry.Recorder, error) {
		sink, err := open()
		if err != nil {
			return nil, err
		}
		if broadcaster != nil {
			sink = &telemetry.MultiSink{Sinks: []telemetry.Sink{sink, &web.Sink{B: broadcaster}}}
		}
		return telemetry.NewRecorder(sampleEvery, sink, schema), nil
	}, nil
}

// seedMockSensors programs the mock I2C bus so a development run starts with
// the lever level and the magnet reported healthy.
func seedMockSensors(mb *i2c.MockBus, encAddr byte, axisCenter int) {
	if encAddr == 0 {
		encAddr = encoder.DefaultAddr
	}
	mb.SetReg16(encAddr, 0x0C, uint16(axisCenter)) // RAW ANGLE
	mb.SetReg(encAddr, 0x0B, 1<<5)                 // STATUS: magnet detected
	mb.SetReg(encAddr, 0x1A, 64)                   // AGC mid-range
}

// webPortFlag implements flag.Value for -web: 0 = disabled, -web= or -web 8080 → 8080, -web 8980 → 8980.
type webPortFlag struct {
	val         int
	defaultPort int
}

func (w *webPortFlag) String() string {
	if w.val == 0 {
		return "0"
	}
	return strconv.Itoa(w.val)
}

func (w *webPortFlag) Set(s string) error {
	if s == "" {
		w.val = w.defaultPort
		return nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return err
	}
	if v <= 0 || v > 65535 {
		return fmt.Errorf("port must be 1-65535, got %d", v)
	}
	w.val = v
	return nil
}

func (w *webPortFlag) port() int { return w.val }
