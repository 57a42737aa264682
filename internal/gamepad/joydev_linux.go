//go:build linux

package gamepad

import (
	"errors"
	"fmt"
	"log"
	"unsafe"

	"golang.org/x/sys/unix"
)

// jsiocgname is JSIOCGNAME(len): _IOC(_IOC_READ, 'j', 0x13, len).
func jsiocgname(size int) uintptr {
	return uintptr(0x80006a13 + (size << 16))
}

type joyDevice struct {
	fd   int
	open bool
}

// Init opens the device non-blocking and reads its name.
func (j *Joydev) Init() error {
	fd, err := unix.Open(j.path, unix.O_RDONLY|unix.O_NONBLOCK|unix.O_CLOEXEC, 0)
	if err != nil {
		return fmt.Errorf("open %s: %w", j.path, err)
	}
	j.dev = joyDevice{fd: fd, open: true}

	name := make([]byte, 128)
	if _, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(fd), jsiocgname(len(name)), uintptr(unsafe.Pointer(&name[0]))); errno != 0 {
		j.name = j.path
	} else {
		j.name = unix.ByteSliceToString(name)
	}
	log.Printf("Joystick device opened: %s (%s)", j.name, j.path)
	return nil
}

// Shutdown closes the device.
func (j *Joydev) Shutdown() {
	if !j.dev.open {
		return
	}
	_ = unix.Close(j.dev.fd)
	j.dev.open = false
}

// RunCallbacks reads every pending event without blocking. A device that
// disappears releases all held actions and is not reopened.
func (j *Joydev) RunCallbacks() {
	if !j.dev.open {
		return
	}
	for {
		n, err := unix.Read(j.dev.fd, j.buf)
		if n > 0 {
			j.feed(j.buf[:n])
		}
		if err == nil && n > 0 {
			continue
		}
		if err != nil && !errors.Is(err, unix.EAGAIN) && !errors.Is(err, unix.EINTR) {
			log.Printf("Joystick device %s lost: %v", j.path, err)
			j.tracker.Release()
			j.Shutdown()
		}
		return
	}
}
