// Copyright 2018 The ACH Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

// Package admin serves operator endpoints (metrics, profiling and
// maintenance routes) on a port separate from the public API.
package admin

import (
	"fmt"
	"os"
	"runtime"
	"strconv"

	"github.com/go-kit/kit/log"
)

// runtimeRate reads a positive sampling rate from env, or 1 when unset.
func runtimeRate(env string) (int, error) {
	v := os.Getenv(env)
	if v == "" {
		return 1, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%s=%q: must be a positive integer", env, v)
	}
	return n, nil
}

// Init turns on block and mutex sampling for the profiles we serve.
// PPROF_BLOCK_RATE and PPROF_MUTEX_FRACTION tune the sampling.
func Init(logger log.Logger) error {
	if pprofProfileEnabled("block", true) {
		rate, err := runtimeRate("PPROF_BLOCK_RATE")
		if err != nil {
			return err
		}
		runtime.SetBlockProfileRate(rate)
		logger.Log("admin", fmt.Sprintf("block profile rate=%d", rate))
	}
	if pprofProfileEnabled("mutex", true) {
		fraction, err := runtimeRate("PPROF_MUTEX_FRACTION")
		if err != nil {
			return err
		}
		runtime.SetMutexProfileFraction(fraction)
		logger.Log("admin", fmt.Sprintf("mutex profile fraction=%d", fraction))
	}
	return nil
}
