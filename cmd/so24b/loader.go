package main

import (
	"fmt"
	"os"
	"path/filepath"
)

// fileLoader loads program images as raw bytes off disk from a single
// directory. The load address is fixed per well-known name (the trampoline
// stub and the init program), and allocated from a bump pointer for
// anything else SO_CRIA_PROC asks for — there is no linker in this
// repository, so every other program is assumed position-independent
// enough to run wherever it lands.
type fileLoader struct {
	dir      string
	bumpNext int
}

const (
	trampolineProgramName = "trata_int.maq"
	initProgramName       = "init.maq"

	trampolineLoadAddress = 0
	initLoadAddress       = 100
	bumpLoadStart         = 1000
)

func newFileLoader(dir string) *fileLoader {
	return &fileLoader{dir: dir, bumpNext: bumpLoadStart}
}

func (l *fileLoader) Load(name string) (int, []byte, error) {
	payload, err := os.ReadFile(filepath.Join(l.dir, name))
	if err != nil {
		return 0, nil, fmt.Errorf("fileLoader: %w", err)
	}

	switch name {
	case trampolineProgramName:
		return trampolineLoadAddress, payload, nil
	case initProgramName:
		return initLoadAddress, payload, nil
	default:
		addr := l.bumpNext
		l.bumpNext += len(payload)
		return addr, payload, nil
	}
}
