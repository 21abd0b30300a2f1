package audio

import (
	"log/slog"
	"os"
	"os/exec"
	"strings"
)

// IsWSL checks if the current environment is Windows Subsystem for Linux
func IsWSL() bool {
	return detectWSLFromData(readProcVersion(), os.Getenv("WSL_DISTRO_NAME"))
}

// detectWSLFromData checks the WSL indicators in procVersion and wslEnv
func detectWSLFromData(procVersion, wslEnv string) bool {
	if wslEnv != "" {
		slog.Debug("WSL detected via environment variable", "distro", wslEnv)
		return true
	}

	procLower := strings.ToLower(procVersion)
	if strings.Contains(procLower, "microsoft") || strings.Contains(procLower, "wsl") {
		slog.Debug("WSL detected via /proc/version")
		return true
	}
	return false
}

func readProcVersion() string {
	content, err := os.ReadFile("/proc/version")
	if err != nil {
		slog.Debug("failed to read /proc/version", "error", err)
		return ""
	}
	return string(content)
}

// CommandExists checks if a command is available in PATH
func CommandExists(command string) bool {
	if command == "" {
		return false
	}
	_, err := exec.LookPath(command)
	return err == nil
}

// DetectOptimalBackend determines the best audio backend for the current system,
// or "" when nothing can produce sound
func DetectOptimalBackend() string {
	return detectOptimalBackendWithChecker(IsWSL(), cgoEnabled, CommandExists)
}

// detectOptimalBackendWithChecker prefers a raw-PCM player under WSL, where
// miniaudio is prone to crackling, and malgo everywhere else. Without cgo the
// system commands are the only real output.
func detectOptimalBackendWithChecker(isWSL, cgo bool, commandChecker func(string) bool) string {
	slog.Debug("detecting optimal audio backend", "is_wsl", isWSL, "cgo", cgo)

	hasCommand := getPreferredSystemCommandWithChecker(commandChecker) != ""

	switch {
	case isWSL && hasCommand:
		return BackendSystemCommand
	case cgo:
		if isWSL {
			slog.Warn("no system audio commands found in WSL, falling back to malgo (may have crackling)")
		}
		return BackendMalgo
	case hasCommand:
		return BackendSystemCommand
	default:
		return ""
	}
}

// rawPCMPlayers lists the commands that can play raw PCM from stdin, in
// order of preference
var rawPCMPlayers = []string{
	"paplay", // PulseAudio / PipeWire
	"ffplay",
	"aplay", // ALSA
}

func getPreferredSystemCommandWithChecker(commandChecker func(string) bool) string {
	for _, cmd := range rawPCMPlayers {
		if commandChecker(cmd) {
			slog.Debug("preferred system command found", "command", cmd)
			return cmd
		}
	}
	return ""
}
