package config

import "fmt"

// ParseOutputFormat validates a format name from the command line.
func ParseOutputFormat(name string) (OutputFormat, error) {
	format := OutputFormat(name)
	if name == "" {
		return FormatText, nil
	}
	if !format.IsValid() {
		return "", fmt.Errorf("unknown output format %q (want text, json or yaml)", name)
	}
	return format, nil
}

// ParseColorMode validates a color mode from the command line.
func ParseColorMode(name string) (ColorMode, error) {
	mode := ColorMode(name)
	if name == "" {
		return ColorAuto, nil
	}
	if !mode.IsValid() {
		return "", fmt.Errorf("unknown color mode %q (want auto, always or never)", name)
	}
	return mode, nil
}
