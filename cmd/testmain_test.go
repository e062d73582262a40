package cmd

import (
	"os"
	"testing"

	"github.com/kastheco/orchestra/log"
)

func TestMain(m *testing.M) {
	log.Initialize(false)
	defer log.Close()
	os.Exit(m.Run())
}
