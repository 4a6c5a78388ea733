package audio

// Levels is the current microphone level measurement for the UI meter.
type Levels struct {
	// RMS is the rolling RMS level in dB.
	RMS float64 `json:"rms"`
	// Peak is the held peak level in dB.
	Peak float64 `json:"peak"`
	// Clip is how many samples clipped in the last measurement window.
	Clip int `json:"clip,omitzero"`
}

// Device represents an available audio input device.
type Device struct {
	// ID is the device identifier.
	ID string `json:"id"`
	// Name is the device display name.
	Name string `json:"name"`
}
