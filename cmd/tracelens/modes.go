package main

import (
	"fmt"
	"os"
	"strings"
)

// triState is the value of an auto|on|off flag.
type triState string

const (
	modeAuto triState = "auto"
	modeOn   triState = "on"
	modeOff  triState = "off"
)

func readTriState(flag, value string) (triState, error) {
	switch strings.TrimSpace(strings.ToLower(value)) {
	case "", "auto":
		return modeAuto, nil
	case "on":
		return modeOn, nil
	case "off":
		return modeOff, nil
	default:
		return "", fmt.Errorf("invalid --%s value %q (expected auto|on|off)", flag, value)
	}
}

// enabled resolves auto by checking whether f is a terminal.
func (m triState) enabled(f *os.File) bool {
	switch m {
	case modeOn:
		return true
	case modeOff:
		return false
	default:
		return isTerminal(f)
	}
}
