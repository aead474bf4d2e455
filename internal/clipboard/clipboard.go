package clipboard

import (
	"fmt"
	"sync"

	"golang.design/x/clipboard"
)

var (
	initOnce sync.Once
	initErr  error
	writeMu  sync.Mutex
)

// Init prepares the system clipboard. It fails on headless machines.
func Init() error {
	initOnce.Do(func() {
		if err := clipboard.Init(); err != nil {
			initErr = fmt.Errorf("initializing clipboard: %w", err)
		}
	})
	return initErr
}

// Write copies text to the clipboard.
func Write(text string) error {
	if err := Init(); err != nil {
		return err
	}
	writeMu.Lock()
	defer writeMu.Unlock()
	clipboard.Write(clipboard.FmtText, []byte(text))
	return nil
}
