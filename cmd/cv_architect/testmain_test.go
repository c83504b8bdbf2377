package main

import (
	"os"
	"testing"

	"github.com/jonathan/cv-architect/internal/logger"
)

// TestMain installs a silent logger so commands run in-process stay quiet.
func TestMain(m *testing.M) {
	log = logger.Discard()
	os.Exit(m.Run())
}
