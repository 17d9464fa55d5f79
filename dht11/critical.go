// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package dht11

import (
	"runtime"
	"runtime/debug"
	"sync"
)

// criticalMu allows a single timing critical section per process, since the
// GC setting is process wide.
var criticalMu sync.Mutex

// enterCritical pins the calling goroutine to its thread and stops the
// garbage collector. The returned function undoes both.
func enterCritical() func() {
	criticalMu.Lock()
	runtime.LockOSThread()
	gc := debug.SetGCPercent(-1)
	return func() {
		debug.SetGCPercent(gc)
		runtime.UnlockOSThread()
		criticalMu.Unlock()
	}
}
