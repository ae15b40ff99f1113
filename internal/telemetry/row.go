package telemetry

import "fmt"

// Schema selects the telemetry row shape. A session uses exactly one schema;
// the recorder rejects rows of the other shape rather than mixing them.
type Schema int

const (
	// SchemaEncoder is the degree-based shape for encoder-only rigs.
	SchemaEncoder Schema = iota
	// SchemaFused is the quaternion-based shape for encoder+IMU rigs.
	SchemaFused
)

// Header returns the fixed CSV header for the schema.
func (s Schema) Header() string {
	switch s {
	case SchemaFused:
		return "T_MS,ENC_QR,ENC_QI,ENC_QJ,ENC_QK,IMU_QR,IMU_QI,IMU_QJ,IMU_QK,ERR,P,I,D,PID_OUT,M1,M2"
	default:
		return "T_MS,ENC_DEG,IMU_DEG,ERR,P,I,D,PID_OUT,M1,M2"
	}
}

// Row is one immutable control-cycle snapshot, formattable as a CSV line.
type Row interface {
	Schema() Schema
	Format() string
}

// EncoderRow is the encoder-only snapshot. IMUDeg is optional: HasIMU false
// leaves the IMU_DEG column empty.
type EncoderRow struct {
	TMS    uint32
	EncDeg float64
	IMUDeg float64
	HasIMU bool
	Err    float64
	P      float64
	I      float64
	D      float64
	Out    float64
	M1     int
	M2     int
}

func (r EncoderRow) Schema() Schema { return SchemaEncoder }

func (r EncoderRow) Format() string {
	imu := ""
	if r.HasIMU {
		imu = fmt.Sprintf("%.2f", r.IMUDeg)
	}
	return fmt.Sprintf("%d,%.2f,%s,%.2f,%.2f,%.2f,%.2f,%.2f,%d,%d",
		r.TMS, r.EncDeg, imu, r.Err, r.P, r.I, r.D, r.Out, r.M1, r.M2)
}

// FusedRow is the quaternion snapshot: the encoder angle lifted to a
// quaternion as ground truth next to the IMU's fused orientation, for offline
// lag and consistency analysis.
type FusedRow struct {
	TMS  uint32
	EncQ [4]float64
	IMUQ [4]float64
	Err  float64
	P    float64
	I    float64
	D    float64
	Out  float64
	M1   int
	M2   int
}

func (r FusedRow) Schema() Schema { return SchemaFused }

func (r FusedRow) Format() string {
	return fmt.Sprintf("%d,%.4f,%.4f,%.4f,%.4f,%.4f,%.4f,%.4f,%.4f,%.2f,%.2f,%.2f,%.2f,%.2f,%d,%d",
		r.TMS,
		r.EncQ[0], r.EncQ[1], r.EncQ[2], r.EncQ[3],
		r.IMUQ[0], r.IMUQ[1], r.IMUQ[2], r.IMUQ[3],
		r.Err, r.P, r.I, r.D, r.Out, r.M1, r.M2)
}
