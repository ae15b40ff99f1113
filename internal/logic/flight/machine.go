package flight

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/cjeanneret/BenchyGo/internal/clock"
	"github.com/cjeanneret/BenchyGo/internal/debug"
	"github.com/cjeanneret/BenchyGo/internal/hw/imu"
	"github.com/cjeanneret/BenchyGo/internal/hw/motor"
	"github.com/cjeanneret/BenchyGo/internal/hw/panel"
	"github.com/cjeanneret/BenchyGo/internal/logic/angle"
	"github.com/cjeanneret/BenchyGo/internal/logic/mixer"
	"github.com/cjeanneret/BenchyGo/internal/logic/pid"
	"github.com/cjeanneret/BenchyGo/internal/logic/predict"
	"github.com/cjeanneret/BenchyGo/internal/telemetry"
)

// State is the safety state of the rig. Exactly one is active at a time.
type State int

const (
	Disarmed State = iota
	Arming
	ReadyCheck
	Stabilizing
)

func (s State) String() string {
	switch s {
	case Disarmed:
		return "Disarmed"
	case Arming:
		return "Arming"
	case ReadyCheck:
		return "ReadyCheck"
	case Stabilizing:
		return "Stabilizing"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// The lever carries exactly two motors.
const numChannels = 2

// AngleSource reads the raw lever angle in encoder steps [0, 4095].
type AngleSource interface {
	ReadRawAngle() (int, error)
}

// SessionFactory opens a fresh telemetry session sink and recorder. Called on
// every entry to Stabilizing; each session owns its recorder exclusively.
type SessionFactory func() (*telemetry.Recorder, error)

// Params are the tuning knobs of the state machine.
type Params struct {
	Interval    time.Duration // control loop period (e.g. 20ms = 50Hz)
	AxisCenter  int           // calibrated encoder zero, in steps
	ErrorSign   int           // +1 or -1, calibration parameter
	ThrottleMin int           // idle throttle commanded after arming
	ArmCount    int           // zero-throttle commands in the arm burst
	ArmInterval time.Duration // spacing of the arm burst
	IMUReportHz int           // fused report rate requested when arming

	// HoldPolls is how many consecutive positive polls the arm/disarm combo
	// must survive before it counts as held (debounce).
	HoldPolls int
	// DisarmedPoll and ReadyPoll are the reduced polling rates outside the
	// control loop.
	DisarmedPoll time.Duration
	ReadyPoll    time.Duration

	// SessionConfig is persisted at the head of every telemetry session.
	SessionConfig string
}

// Machine orchestrates Disarmed -> Arming -> ReadyCheck -> Stabilizing and
// back, owning when sensors are sampled, when the PID and mixer run, and when
// telemetry sessions open and close. All hardware arrives through interfaces
// so the machine runs unchanged against mocks.
type Machine struct {
	params Params

	panel      panel.Port
	motors     motor.ThrottleGroup
	enc        AngleSource
	imu        imu.IMU // nil on encoder-only rigs
	pid        *pid.PID
	mixer      *mixer.Mixer
	corrector  *predict.Corrector
	ticks      clock.Ticks
	newSession SessionFactory

	// state is read concurrently by the web status endpoint.
	state   atomic.Int32
	stopped bool
}

// New wires a state machine. imuDev and corrector may be nil for encoder-only
// rigs; they must be both set or both nil.
func New(
	params Params,
	port panel.Port,
	motors motor.ThrottleGroup,
	enc AngleSource,
	imuDev imu.IMU,
	controller *pid.PID,
	mix *mixer.Mixer,
	corrector *predict.Corrector,
	ticks clock.Ticks,
	newSession SessionFactory,
) *Machine {
	if params.HoldPolls <= 0 {
		params.HoldPolls = 4
	}
	if params.DisarmedPoll <= 0 {
		params.DisarmedPoll = 50 * time.Millisecond
	}
	if params.ReadyPoll <= 0 {
		params.ReadyPoll = 100 * time.Millisecond
	}
	if params.ErrorSign == 0 {
		params.ErrorSign = 1
	}
	return &Machine{
		params:     params,
		panel:      port,
		motors:     motors,
		enc:        enc,
		imu:        imuDev,
		pid:        controller,
		mixer:      mix,
		corrector:  corrector,
		ticks:      ticks,
		newSession: newSession,
	}
}

// State returns the current flight state. Safe to call from other goroutines.
func (m *Machine) State() State {
	return State(m.state.Load())
}

// Run executes flight sessions until the context is cancelled. Each pass goes
// Disarmed -> Arming -> ReadyCheck -> Stabilizing -> Disarmed; a fault ends
// the run entirely (recovery is operator-driven from a fresh start).
func (m *Machine) Run(ctx context.Context) error {
	for {
		if err := m.RunOnce(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
}

// RunOnce executes a single flight session. The motor transport is stopped on
// every exit path, success or failure; on failure the red LED is lit and the
// fault returned, never swallowed.
func (m *Machine) RunOnce(ctx context.Context) (err error) {
	m.stopped = false
	defer func() {
		if stopErr := m.forceStop(); stopErr != nil && err == nil {
			err = stopErr
		}
		if err != nil && ctx.Err() == nil {
			debug.Error(err)
			_ = m.panel.SetLED(panel.LEDRed)
		}
	}()

	if err := m.waitForArm(ctx); err != nil {
		return err
	}
	if err := m.armMotors(); err != nil {
		return err
	}
	if err := m.waitForGo(ctx); err != nil {
		return err
	}
	if err := m.stabilize(ctx); err != nil {
		return err
	}
	return m.disarm()
}

// forceStop halts the motor transport exactly once per session, the one
// action guaranteed on all exit paths.
func (m *Machine) forceStop() error {
	if m.stopped {
		return nil
	}
	m.stopped = true
	return m.motors.Stop()
}

// waitForArm is the Disarmed state: blue LED, zero throttle commanded on
// every poll, blocks until the B+Y combo has been released and then held for
// HoldPolls consecutive polls.
func (m *Machine) waitForArm(ctx context.Context) error {
	m.setState(Disarmed)
	if err := m.panel.SetLED(panel.LEDBlue); err != nil {
		return err
	}

	zeros := make([]int, numChannels)
	held := 0
	releaseSeen := false
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		// Defensive: never trust the ESCs to idle on their own.
		if err := m.motors.SetAllThrottles(zeros); err != nil {
			return err
		}

		combo, err := m.panel.ArmComboHeld()
		if err != nil {
			return err
		}
		switch {
		case !combo:
			releaseSeen = true
			held = 0
		case releaseSeen:
			held++
			if held >= m.params.HoldPolls {
				return nil
			}
		}
		m.ticks.SleepMS(int(m.params.DisarmedPoll.Milliseconds()))
	}
}

// armMotors is the Arming state: start the transport, run the ESC arming
// burst (a fixed count of zero-throttle commands at a fixed interval), then
// idle both channels at minimum throttle. There is no failure detection for
// the ESC protocol itself; always proceeds to ReadyCheck.
func (m *Machine) armMotors() error {
	m.setState(Arming)
	if err := m.panel.SetLED(panel.LEDGreen); err != nil {
		return err
	}
	if m.imu != nil {
		if err := m.imu.EnableRotation(m.params.IMUReportHz); err != nil {
			return fmt.Errorf("enable imu rotation report: %w", err)
		}
	}

	if err := m.motors.Start(); err != nil {
		return err
	}
	if err := m.motors.Arm(); err != nil {
		return err
	}

	zeros := make([]int, numChannels)
	for i := 0; i < m.params.ArmCount; i++ {
		if err := m.motors.SetAllThrottles(zeros); err != nil {
			return err
		}
		m.ticks.SleepMS(int(m.params.ArmInterval.Milliseconds()))
	}

	idle := make([]int, numChannels)
	for i := range idle {
		idle[i] = m.params.ThrottleMin
	}
	return m.motors.SetAllThrottles(idle)
}

// waitForGo is the ReadyCheck state: poll the go button at reduced rate. No
// control output is applied; the current angle is logged for the operator.
func (m *Machine) waitForGo(ctx context.Context) error {
	m.setState(ReadyCheck)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		pressed, err := m.panel.GoPressed()
		if err != nil {
			return err
		}
		if pressed {
			return nil
		}

		if debug.IsEnabled(debug.LevelLive) {
			if raw, err := m.enc.ReadRawAngle(); err == nil {
				debug.Live("Ready: angle %.2f°", angle.ToDegrees(raw, m.params.AxisCenter))
			}
		}
		m.ticks.SleepMS(int(m.params.ReadyPoll.Milliseconds()))
	}
}

// stabilize is the Stabilizing state: reset the PID, open a telemetry
// session, and run the fixed-rate control loop until the disarm combo.
func (m *Machine) stabilize(ctx context.Context) (err error) {
	m.setState(Stabilizing)
	m.pid.Reset()

	rec, err := m.newSession()
	if err != nil {
		return fmt.Errorf("open telemetry session: %w", err)
	}
	sessionOpen := true
	defer func() {
		// The fault path still tries to end the session so the storage is
		// released, but never masks the original error.
		if sessionOpen {
			if endErr := rec.EndSession(); endErr != nil && err == nil {
				err = endErr
			}
		}
	}()
	if err := rec.BeginSession(m.params.SessionConfig); err != nil {
		return err
	}

	if m.imu != nil {
		// Seed the corrector so the first cycle has a rate reference.
		if _, err := m.imu.UpdateSensors(); err != nil {
			return fmt.Errorf("imu seed read: %w", err)
		}
		qr, qi, _, _ := m.imu.Quaternion()
		m.corrector.Seed(angle.RollDegrees(qr, qi))
	}

	intervalMS := int32(m.params.Interval.Milliseconds())
	prevMS := m.ticks.NowMS()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		// Disarm is checked once per cycle, at the top: worst-case latency to
		// honor it is one control period.
		combo, err := m.panel.ArmComboHeld()
		if err != nil {
			return err
		}
		if combo {
			break
		}

		nowMS := m.ticks.NowMS()
		dtMS := clock.TicksDiff(nowMS, prevMS)
		if dtMS < intervalMS {
			m.ticks.SleepMS(int(intervalMS - dtMS))
			nowMS = m.ticks.NowMS()
			dtMS = clock.TicksDiff(nowMS, prevMS)
		}
		prevMS = nowMS
		dt := float64(dtMS) / 1000.0

		if err := m.cycle(nowMS, dt, rec); err != nil {
			return err
		}
	}

	sessionOpen = false
	return rec.EndSession()
}

// cycle runs one control iteration: sense, normalize, predict, compute, mix,
// actuate, record.
func (m *Machine) cycle(nowMS uint32, dt float64, rec *telemetry.Recorder) error {
	raw, err := m.enc.ReadRawAngle()
	if err != nil {
		return fmt.Errorf("read encoder: %w", err)
	}
	encDeg := angle.ToDegrees(raw, m.params.AxisCenter)

	var row telemetry.Row
	var errDeg float64

	if m.imu != nil {
		if _, err := m.imu.UpdateSensors(); err != nil {
			return fmt.Errorf("read imu: %w", err)
		}
		iqr, iqi, iqj, iqk := m.imu.Quaternion()
		imuRoll := angle.RollDegrees(iqr, iqi)

		// The fused estimate lags the mechanical angle by the filter group
		// delay; the corrector extrapolates to where the lever is now.
		predicted := m.corrector.Predict(imuRoll, dt)
		errDeg = float64(m.params.ErrorSign) * predicted

		eqr, eqi, eqj, eqk := angle.ToQuat(encDeg)
		out := m.pid.Compute(errDeg, dt)
		m1, m2 := m.mixer.Compute(out)
		if err := m.actuate(m1, m2); err != nil {
			return err
		}
		debug.Cycle(nowMS, errDeg, out, m1, m2)
		row = telemetry.FusedRow{
			TMS:  nowMS,
			EncQ: [4]float64{eqr, eqi, eqj, eqk},
			IMUQ: [4]float64{iqr, iqi, iqj, iqk},
			Err:  errDeg,
			P:    m.pid.LastP, I: m.pid.LastI, D: m.pid.LastD,
			Out: out, M1: m1, M2: m2,
		}
		return rec.Record(row)
	}

	errDeg = float64(m.params.ErrorSign) * encDeg
	out := m.pid.Compute(errDeg, dt)
	m1, m2 := m.mixer.Compute(out)
	if err := m.actuate(m1, m2); err != nil {
		return err
	}
	debug.Cycle(nowMS, errDeg, out, m1, m2)
	row = telemetry.EncoderRow{
		TMS:    nowMS,
		EncDeg: encDeg,
		Err:    errDeg,
		P:      m.pid.LastP, I: m.pid.LastI, D: m.pid.LastD,
		Out: out, M1: m1, M2: m2,
	}
	return rec.Record(row)
}

func (m *Machine) actuate(m1, m2 int) error {
	if err := m.motors.SetThrottle(0, m1); err != nil {
		return fmt.Errorf("set throttle m1: %w", err)
	}
	if err := m.motors.SetThrottle(1, m2); err != nil {
		return fmt.Errorf("set throttle m2: %w", err)
	}
	return nil
}

// disarm ends the session: disarm and stop the transport, back to blue.
func (m *Machine) disarm() error {
	if err := m.motors.Disarm(); err != nil {
		return err
	}
	if err := m.forceStop(); err != nil {
		return err
	}
	m.setState(Disarmed)
	return m.panel.SetLED(panel.LEDBlue)
}

func (m *Machine) setState(s State) {
	if prev := State(m.state.Load()); prev != s {
		debug.State(prev.String(), s.String())
	}
	m.state.Store(int32(s))
}
