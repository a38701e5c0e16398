package util

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	ps "github.com/mitchellh/go-ps"
)

// PidFile keeps two copies of a long-running worker from using the
// same signer at once, which would make them race for sequence
// numbers.
type PidFile struct {
	Path string
}

func NewPidFile(path string) *PidFile {
	return &PidFile{Path: path}
}

// Read returns the pid in the file, or zero if there is no readable pid.
func (p *PidFile) Read() int {
	data, err := os.ReadFile(p.Path)
	if err != nil {
		return 0
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0
	}
	return pid
}

// HeldByOtherProcess returns true if the file names a live process
// other than this one. A file left behind by a dead process doesn't
// count.
func (p *PidFile) HeldByOtherProcess() bool {
	pid := p.Read()
	return pid != 0 && pid != os.Getpid() && ProcessIsRunning(pid)
}

// Acquire writes our pid to the file, unless another live process
// already holds it.
func (p *PidFile) Acquire() error {
	if p.HeldByOtherProcess() {
		return fmt.Errorf("pid file %s is held by running process %d", p.Path, p.Read())
	}
	return os.WriteFile(p.Path, []byte(strconv.Itoa(os.Getpid())), 0664)
}

// Release deletes the file if we hold it.
func (p *PidFile) Release() error {
	if p.Read() != os.Getpid() {
		return fmt.Errorf("pid file %s is not ours", p.Path)
	}
	return os.Remove(p.Path)
}

// ProcessIsRunning returns true if the process with pid is running.
// This uses go-ps internally because golang's os.FindProcess always
// returns a process on *nix, even when no process with that pid is
// running.
func ProcessIsRunning(pid int) bool {
	proc, _ := ps.FindProcess(pid)
	return proc != nil
}
