package panel

import "errors"

// FakeReader is a test double that returns scripted lever positions.
type FakeReader struct {
	// Samples contains scripted lever positions to return.
	// Each call to Read() consumes the next sample.
	Samples []Lever

	// index tracks current position in Samples
	index int

	// Closed tracks if Close was called
	Closed bool

	// ReadError, if set, will be returned by Read()
	ReadError error
}

// NewFakeReader creates a FakeReader with the given samples.
func NewFakeReader(samples []Lever) *FakeReader {
	return &FakeReader{Samples: samples}
}

// Read returns the next scripted sample.
// If samples are exhausted, returns the last sample repeatedly.
func (f *FakeReader) Read() (Lever, error) {
	if f.ReadError != nil {
		return LeverUp, f.ReadError
	}

	if len(f.Samples) == 0 {
		return LeverUp, errors.New("no samples configured")
	}

	sample := f.Samples[f.index]
	if f.index < len(f.Samples)-1 {
		f.index++
	}

	return sample, nil
}

// Close marks the reader as closed.
func (f *FakeReader) Close() error {
	f.Closed = true
	return nil
}

// Reset resets the reader to the beginning of samples.
func (f *FakeReader) Reset() {
	f.index = 0
	f.Closed = false
}

// LampState records one Set call on FakeLamps.
type LampState struct {
	DownLocked bool
	Warn       bool
}

// FakeLamps records lamp commands for test assertions.
type FakeLamps struct {
	// History contains every Set call in order.
	History []LampState

	// Closed tracks if Close was called.
	Closed bool

	// SetError, if set, will be returned by Set.
	SetError error
}

// NewFakeLamps creates a FakeLamps for testing.
func NewFakeLamps() *FakeLamps {
	return &FakeLamps{}
}

// Set records the lamp command.
func (f *FakeLamps) Set(downLocked, warn bool) error {
	if f.SetError != nil {
		return f.SetError
	}
	f.History = append(f.History, LampState{DownLocked: downLocked, Warn: warn})
	return nil
}

// Last returns the most recent lamp state, or both-off if none was set.
func (f *FakeLamps) Last() LampState {
	if len(f.History) == 0 {
		return LampState{}
	}
	return f.History[len(f.History)-1]
}

// Close marks the lamps as closed.
func (f *FakeLamps) Close() error {
	f.Closed = true
	return nil
}
