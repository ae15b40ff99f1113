package imu

// IMU is the abstract interface to an inertial measurement unit running an
// on-chip fusion filter (BNO08x class). The concrete transport is an external
// collaborator; the control core only consumes this contract.
type IMU interface {
	// EnableRotation starts the fused rotation-vector report at the given
	// rate. Call once, when arming.
	EnableRotation(hertz int) error
	// UpdateSensors polls the device. It returns true when a new report
	// arrived since the previous call.
	UpdateSensors() (bool, error)
	// Quaternion returns the latest fused orientation.
	Quaternion() (qr, qi, qj, qk float64)
}

// Replay is a scripted IMU used in tests and mock mode. Each UpdateSensors
// call advances through Frames; the last frame repeats once exhausted.
type Replay struct {
	Frames [][4]float64
	// Err, when set, is returned by the next UpdateSensors call (fault
	// injection in state-machine tests).
	Err error

	idx     int
	current [4]float64
	enabled bool
}

func (r *Replay) EnableRotation(hertz int) error {
	r.enabled = true
	return nil
}

func (r *Replay) UpdateSensors() (bool, error) {
	if r.Err != nil {
		return false, r.Err
	}
	if len(r.Frames) == 0 {
		// identity orientation: lever level
		r.current = [4]float64{1, 0, 0, 0}
		return true, nil
	}
	r.current = r.Frames[r.idx]
	if r.idx < len(r.Frames)-1 {
		r.idx++
	}
	return true, nil
}

func (r *Replay) Quaternion() (qr, qi, qj, qk float64) {
	return r.current[0], r.current[1], r.current[2], r.current[3]
}
