package main

import (
	"os"
	"testing"
	"time"
)

func TestDefaultEnv(t *testing.T) {
	t.Parallel()

	env := DefaultEnv()

	t.Run("Now returns real time", func(t *testing.T) {
		before := time.Now()
		got := env.Now()
		after := time.Now()

		if got.Before(before) || got.After(after) {
			t.Errorf("Now() = %v, should be between %v and %v", got, before, after)
		}
	})

	t.Run("standard streams", func(t *testing.T) {
		if env.Stdout != os.Stdout {
			t.Error("Stdout should be os.Stdout")
		}
		if env.Stderr != os.Stderr {
			t.Error("Stderr should be os.Stderr")
		}
	})

	t.Run("process environment", func(t *testing.T) {
		if env.LookupEnv == nil || env.Environ == nil {
			t.Fatal("LookupEnv and Environ must be set")
		}
		if _, ok := env.LookupEnv("DOCPIPE_SURELY_UNSET_FOR_TESTS"); ok {
			t.Error("LookupEnv reported an unset variable")
		}
	})
}
