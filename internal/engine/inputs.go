package engine

import (
	"errors"
	"fmt"
	"math"
)

// Names of the model graph's input and output nodes.
const (
	InputTokenIDs = "token_ids"
	InputStyle    = "style"
	InputSpeed    = "speed"

	OutputWaveform = "waveform"
)

// StyleDim is the expected style vector width.
const StyleDim = 256

// Speed bounds accepted by the model.
const (
	MinSpeed = 0.5
	MaxSpeed = 2.0
)

// ErrInvalidArgument is returned by BuildInputs for malformed inputs. These
// are caller contract violations, not runtime conditions.
var ErrInvalidArgument = errors.New("invalid inference input")

// BuildInputs assembles the three fixed-shape tensors one inference call
// expects: token_ids int64[1,N], style float32[1,256], speed float32[1].
//
// The token ids are stored as int64 because that is the graph's declared
// input type; valid ids fit in 32 bits but the runtime checks the declared
// width. Speed must already be clamped to [MinSpeed, MaxSpeed] by the caller;
// BuildInputs validates but never coerces.
func BuildInputs(tokens []int64, style []float32, speed float32) (map[string]*Tensor, error) {
	if len(tokens) == 0 {
		return nil, fmt.Errorf("%w: empty token sequence", ErrInvalidArgument)
	}

	if len(style) != StyleDim {
		return nil, fmt.Errorf("%w: style vector has %d floats, want %d", ErrInvalidArgument, len(style), StyleDim)
	}

	// NaN compares false against both bounds, so it must be caught before
	// the range check or it would reach the engine as a NaN tensor value.
	if math.IsNaN(float64(speed)) {
		return nil, fmt.Errorf("%w: speed is NaN", ErrInvalidArgument)
	}
	if speed < MinSpeed || speed > MaxSpeed {
		return nil, fmt.Errorf("%w: speed %v outside [%v, %v]", ErrInvalidArgument, speed, MinSpeed, MaxSpeed)
	}

	tokenTensor, err := NewTensor(tokens, []int64{1, int64(len(tokens))})
	if err != nil {
		return nil, fmt.Errorf("%w: token tensor: %v", ErrInvalidArgument, err)
	}

	styleTensor, err := NewTensor(style, []int64{1, StyleDim})
	if err != nil {
		return nil, fmt.Errorf("%w: style tensor: %v", ErrInvalidArgument, err)
	}

	speedTensor, err := NewTensor([]float32{speed}, []int64{1})
	if err != nil {
		return nil, fmt.Errorf("%w: speed tensor: %v", ErrInvalidArgument, err)
	}

	return map[string]*Tensor{
		InputTokenIDs: tokenTensor,
		InputStyle:    styleTensor,
		InputSpeed:    speedTensor,
	}, nil
}

// ExtractWaveform pulls the waveform output out of an inference response.
// A missing output tensor or an empty payload is an inference failure.
func ExtractWaveform(outputs map[string]*Tensor) ([]float32, error) {
	out, ok := outputs[OutputWaveform]
	if !ok {
		return nil, fmt.Errorf("%w: response has no %q output", ErrInference, OutputWaveform)
	}

	samples, err := ExtractFloat32(out)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInference, err)
	}

	if len(samples) == 0 {
		return nil, fmt.Errorf("%w: empty waveform payload", ErrInference)
	}

	return samples, nil
}
