//go:build !linux

package gamepad

type joyDevice struct{}

func (j *Joydev) Init() error { return ErrUnsupported }

func (j *Joydev) Shutdown() {}

func (j *Joydev) RunCallbacks() {}
