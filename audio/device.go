package audio

import (
	"fmt"
	"os"

	"golang.org/x/term"
)

type pickerKey int

const (
	keyNone pickerKey = iota
	keyUp
	keyDown
	keyEnter
	keyInterrupt
)

// SelectDevice prompts on the terminal for a capture device. With zero
// devices it errors; with exactly one it returns it without prompting.
// Bluetooth headsets are flagged because their handsfree codec degrades
// the capture the quality gate scores.
func SelectDevice(ctx Context) (*DeviceInfo, error) {
	devices, err := ctx.Devices()
	if err != nil {
		return nil, fmt.Errorf("enumerating devices: %w", err)
	}
	if len(devices) == 0 {
		return nil, fmt.Errorf("no capture devices found")
	}
	if len(devices) == 1 {
		return &devices[0], nil
	}

	fd := int(os.Stdin.Fd())
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return nil, fmt.Errorf("setting raw mode: %w", err)
	}
	defer term.Restore(fd, oldState)

	cursor := 0
	renderPicker(devices, cursor, true)
	for {
		key, err := readPickerKey()
		if err != nil {
			return nil, fmt.Errorf("reading input: %w", err)
		}
		switch key {
		case keyEnter:
			fmt.Print("\r\n")
			term.Restore(fd, oldState)
			return &devices[cursor], nil
		case keyInterrupt:
			fmt.Print("\r\n")
			term.Restore(fd, oldState)
			os.Exit(130)
		case keyUp:
			if cursor > 0 {
				cursor--
			}
		case keyDown:
			if cursor < len(devices)-1 {
				cursor++
			}
		}
		renderPicker(devices, cursor, false)
	}
}

func renderPicker(devices []DeviceInfo, cursor int, first bool) {
	if !first {
		fmt.Printf("\x1b[%dA", len(devices)+2)
	}
	fmt.Print("\r\x1b[J")
	fmt.Print("Choose a microphone (arrows or j/k, Enter to confirm):\r\n\r\n")
	for i, d := range devices {
		label := d.Name
		if IsBluetooth(d.Name) {
			label += " \x1b[33m(bluetooth: reduced capture quality)\x1b[0m"
		}
		if i == cursor {
			fmt.Printf("  \x1b[1;36m> %s\x1b[0m\r\n", label)
		} else {
			fmt.Printf("    %s\r\n", label)
		}
	}
}

func readPickerKey() (pickerKey, error) {
	buf := make([]byte, 3)
	n, err := os.Stdin.Read(buf)
	if err != nil {
		return keyNone, err
	}
	switch {
	case n == 1 && buf[0] == '\r':
		return keyEnter, nil
	case n == 1 && buf[0] == 3:
		return keyInterrupt, nil
	case n == 1 && buf[0] == 'k':
		return keyUp, nil
	case n == 1 && buf[0] == 'j':
		return keyDown, nil
	case n == 3 && buf[0] == 0x1b && buf[1] == '[' && buf[2] == 'A':
		return keyUp, nil
	case n == 3 && buf[0] == 0x1b && buf[1] == '[' && buf[2] == 'B':
		return keyDown, nil
	}
	return keyNone, nil
}
